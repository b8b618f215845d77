// Package memestate holds the durable part of the editor: caption text,
// caption colors and the encoded base image.
package memestate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// StorageKey is the key the form state is persisted under.
const StorageKey = "memeSettings"

const (
	DefaultTopText    = "TOP TEXT"
	DefaultBottomText = "BOTTOM TEXT"
	DefaultColor      = "#ffffff"
)

// Settings is the persisted record. Every field is a string so the record
// always survives a JSON round trip.
type Settings struct {
	TopText         string `json:"topText"`
	TopTextColor    string `json:"topTextColor"`
	BottomText      string `json:"bottomText"`
	BottomTextColor string `json:"bottomTextColor"`
	BaseImage       string `json:"baseImage"`
}

// Defaults returns the record used when nothing was stored.
func Defaults() Settings {
	return Settings{
		TopText:         DefaultTopText,
		TopTextColor:    DefaultColor,
		BottomText:      DefaultBottomText,
		BottomTextColor: DefaultColor,
	}
}

// Encode serialises s.
func Encode(s Settings) ([]byte, error) {
	return json.Marshal(s)
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NormalizeColor validates a #rgb or #rrggbb color and returns it in
// lower-case #rrggbb form.
func NormalizeColor(c string) (string, bool) {
	c = strings.TrimSpace(c)
	if !hexColor.MatchString(c) {
		return "", false
	}
	c = strings.ToLower(c)
	if len(c) == 4 {
		c = "#" + strings.Repeat(c[1:2], 2) + strings.Repeat(c[2:3], 2) + strings.Repeat(c[3:4], 2)
	}
	return c, true
}

// Decode validates data field by field. Fields that are missing, of the wrong
// type or fail validation take their value from base. Malformed JSON yields
// base unchanged together with an error.
func Decode(data []byte, base Settings) (Settings, error) {
	out := base
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return base, fmt.Errorf("decode %s: %w", StorageKey, err)
	}
	str := func(key string) (string, bool) {
		msg, ok := raw[key]
		if !ok {
			return "", false
		}
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return "", false
		}
		return s, true
	}
	if v, ok := str("topText"); ok {
		out.TopText = v
	}
	if v, ok := str("bottomText"); ok {
		out.BottomText = v
	}
	if v, ok := str("topTextColor"); ok {
		if c, valid := NormalizeColor(v); valid {
			out.TopTextColor = c
		}
	}
	if v, ok := str("bottomTextColor"); ok {
		if c, valid := NormalizeColor(v); valid {
			out.BottomTextColor = c
		}
	}
	if v, ok := str("baseImage"); ok {
		if v == "" || strings.HasPrefix(v, "data:image/") {
			out.BaseImage = v
		}
	}
	return out, nil
}
