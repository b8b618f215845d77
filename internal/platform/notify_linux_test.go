//go:build linux

package platform

import (
	"testing"
	"time"
)

func TestNotifyHints(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantImage string
	}{
		{"no icon", Options{}, ""},
		{"icon", Options{IconPath: "/tmp/meme.png"}, "/tmp/meme.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hints := notifyHints(tt.opts)
			if got := hints["desktop-entry"].Value(); got != AppName {
				t.Fatalf("desktop-entry %v", got)
			}
			img, ok := hints["image-path"]
			if tt.wantImage == "" {
				if ok {
					t.Fatalf("unexpected image-path %v", img)
				}
				return
			}
			if !ok || img.Value() != tt.wantImage {
				t.Fatalf("image-path %v", img)
			}
		})
	}
}

func TestTimeoutDefault(t *testing.T) {
	if got := (Options{}).timeout(); got != DefaultTimeout {
		t.Fatalf("timeout %v, want %v", got, DefaultTimeout)
	}
	if got := (Options{Timeout: time.Second}).timeout(); got != time.Second {
		t.Fatalf("timeout %v", got)
	}
}
