package export

import "sync"

const (
	// LabelIdle is shown while the trigger can start an export.
	LabelIdle = "Save Meme"
	// LabelBusy is shown while an export is rasterizing.
	LabelBusy = "Saving Meme ..."
)

// Trigger is the save control: a label plus an enabled flag. It is safe for
// concurrent use.
type Trigger struct {
	mu       sync.Mutex
	label    string
	disabled bool
	onChange []func(label string, disabled bool)
}

// NewTrigger returns an enabled trigger labelled LabelIdle.
func NewTrigger() *Trigger {
	return &Trigger{label: LabelIdle}
}

// State returns the current label and whether the trigger is disabled.
func (t *Trigger) State() (label string, disabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.label, t.disabled
}

// Label returns the current label.
func (t *Trigger) Label() string {
	l, _ := t.State()
	return l
}

// Disabled reports whether the trigger is disabled.
func (t *Trigger) Disabled() bool {
	_, d := t.State()
	return d
}

// OnChange registers fn to run after every state change. fn runs on the
// goroutine that changed the trigger.
func (t *Trigger) OnChange(fn func(label string, disabled bool)) {
	t.mu.Lock()
	t.onChange = append(t.onChange, fn)
	t.mu.Unlock()
}

// acquire disables the trigger if it is enabled and reports whether it did.
func (t *Trigger) acquire() bool {
	t.mu.Lock()
	if t.disabled {
		t.mu.Unlock()
		return false
	}
	t.label, t.disabled = LabelBusy, true
	fns := append([]func(string, bool){}, t.onChange...)
	t.mu.Unlock()
	for _, fn := range fns {
		fn(LabelBusy, true)
	}
	return true
}

func (t *Trigger) release() {
	t.mu.Lock()
	t.label, t.disabled = LabelIdle, false
	fns := append([]func(string, bool){}, t.onChange...)
	t.mu.Unlock()
	for _, fn := range fns {
		fn(LabelIdle, false)
	}
}
