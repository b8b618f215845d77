//go:build darwin

package platform

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func appleScriptString(s string) string {
	return `"` + appleScriptEscaper.Replace(s) + `"`
}

// Notify posts to Notification Center through osascript. Icons and
// timeouts are decided by the system there.
func Notify(title, body string, _ Options) error {
	script := "display notification " + appleScriptString(body) +
		" with title " + appleScriptString(title) +
		" subtitle " + appleScriptString(AppName)
	if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, bytes.TrimSpace(out))
	}
	return nil
}
