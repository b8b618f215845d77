package theme

import (
	"image/color"
)

// Theme defines the color palette of the editor window.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window background around the preview
	Foreground color.RGBA // Labels and general text

	// Form bar
	ToolbarBackground     color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA
	ButtonDisabled        color.RGBA // Save button while an export runs
	ButtonTextDisabled    color.RGBA

	// Text and color inputs
	FieldBackground      color.RGBA
	FieldBackgroundFocus color.RGBA
	FieldText            color.RGBA
	FieldBorder          color.RGBA
	FieldBorderFocus     color.RGBA

	// Preview
	CanvasBackground color.RGBA // Shown until the base image is decoded
	ResizeIndicator  color.RGBA
	StatusText       color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ToolbarBackground:     color.RGBA{220, 220, 220, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonBackgroundPress: color.RGBA{150, 150, 150, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		ButtonDisabled:        color.RGBA{230, 230, 230, 255},
		ButtonTextDisabled:    color.RGBA{127, 127, 127, 255},
		FieldBackground:       color.RGBA{255, 255, 255, 255},
		FieldBackgroundFocus:  color.RGBA{255, 251, 230, 255},
		FieldText:             color.RGBA{0, 0, 0, 255},
		FieldBorder:           color.RGBA{128, 128, 128, 255},
		FieldBorderFocus:      color.RGBA{0x4c, 0x8a, 0xde, 255},
		CanvasBackground:      color.RGBA{192, 192, 192, 255},
		ResizeIndicator:       color.RGBA{0x4c, 0x8a, 0xde, 255},
		StatusText:            color.RGBA{48, 48, 48, 255},
	}
}
