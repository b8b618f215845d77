package panel

// FieldKind tells front-ends how to edit a field.
type FieldKind int

const (
	TextField FieldKind = iota
	ColorField
)

// Field names used by SetField.
const (
	FieldTopText         = "topText"
	FieldTopTextColor    = "topTextColor"
	FieldBottomText      = "bottomText"
	FieldBottomTextColor = "bottomTextColor"
)

// Field is one input of the form area.
type Field struct {
	Name  string
	Label string
	Kind  FieldKind
	Value string
}

// Controls is the form area as front-ends render it.
type Controls struct {
	Fields []Field
	// ImageURL and ImageTitle describe the current selection.
	ImageURL   string
	ImageTitle string
	SaveLabel  string
	SaveBusy   bool
	// Degraded is set when edits are not being persisted.
	Degraded bool
	// Status carries the last derivation or export message.
	Status string
}

// Controls returns the current form area model.
func (p *Panel) Controls() Controls {
	s := p.form.Settings()
	sel := p.provider.Selected()
	label, busy := p.exporter.Trigger().State()
	return Controls{
		Fields: []Field{
			{Name: FieldTopText, Label: "Top Text", Kind: TextField, Value: s.TopText},
			{Name: FieldTopTextColor, Label: "Top Text Color", Kind: ColorField, Value: s.TopTextColor},
			{Name: FieldBottomText, Label: "Bottom Text", Kind: TextField, Value: s.BottomText},
			{Name: FieldBottomTextColor, Label: "Bottom Text Color", Kind: ColorField, Value: s.BottomTextColor},
		},
		ImageURL:   sel.URL,
		ImageTitle: sel.Title,
		SaveLabel:  label,
		SaveBusy:   busy,
		Degraded:   p.form.Degraded(),
		Status:     p.Status(),
	}
}

// SetField routes an edit by field name. It reports whether the value was
// accepted.
func (p *Panel) SetField(name, value string) bool {
	switch name {
	case FieldTopText:
		return p.SetTopText(value)
	case FieldTopTextColor:
		return p.SetTopTextColor(value)
	case FieldBottomText:
		return p.SetBottomText(value)
	case FieldBottomTextColor:
		return p.SetBottomTextColor(value)
	}
	return false
}
