//go:build !linux && !darwin && !windows

package platform

// Notify drops the notification; there is no notification service known
// for this platform.
func Notify(_, _ string, _ Options) error { return nil }
