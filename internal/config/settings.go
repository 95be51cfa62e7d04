package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultHistorySize bounds the command history when the setting is missing or invalid.
const DefaultHistorySize = 1000

// DefaultFontSize replaces a missing or non-positive fontSize.
const DefaultFontSize = 14

// Settings holds the user-facing terminal options stored under the "settings" key.
// Keys the shell does not recognise are kept and written back untouched.
type Settings struct {
	DefaultDirectory   string
	FontSize           int
	FontFamily         string
	BackgroundColor    string
	TextColor          string
	ClearOnClose       bool
	SaveHistory        *bool
	SaveCommandHistory *bool
	HistorySize        int

	extra map[string]json.RawMessage
}

// DefaultSettings returns the settings used when nothing has been saved yet.
func DefaultSettings() *Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	enabled := true
	return &Settings{
		DefaultDirectory: home,
		FontSize:         DefaultFontSize,
		FontFamily:       "Consolas",
		BackgroundColor:  "#1e1e1e",
		TextColor:        "#ffffff",
		SaveHistory:      &enabled,
		HistorySize:      DefaultHistorySize,
	}
}

// HistoryEnabled reports whether history should be written to the store.
// saveCommandHistory is honoured only when saveHistory was never set.
func (s *Settings) HistoryEnabled() bool {
	if s.SaveHistory != nil {
		return *s.SaveHistory
	}
	if s.SaveCommandHistory != nil {
		return *s.SaveCommandHistory
	}
	return true
}

// HistoryLimit returns the configured history bound, falling back to the default.
func (s *Settings) HistoryLimit() int {
	if s.HistorySize <= 0 {
		return DefaultHistorySize
	}
	return s.HistorySize
}

// Extra returns the raw value of an unrecognised key.
func (s *Settings) Extra(key string) (json.RawMessage, bool) {
	v, ok := s.extra[key]
	return v, ok
}

var knownKeys = map[string]bool{
	"defaultDirectory":   true,
	"fontSize":           true,
	"fontFamily":         true,
	"backgroundColor":    true,
	"textColor":          true,
	"clearOnClose":       true,
	"saveHistory":        true,
	"saveCommandHistory": true,
	"historySize":        true,
}

// UnmarshalJSON overlays the decoded keys on the receiver, so decoding into
// DefaultSettings() leaves defaults in place for missing keys.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := map[string]interface{}{
		"defaultDirectory": &s.DefaultDirectory,
		"fontSize":         &s.FontSize,
		"fontFamily":       &s.FontFamily,
		"backgroundColor":  &s.BackgroundColor,
		"textColor":        &s.TextColor,
		"clearOnClose":     &s.ClearOnClose,
		"historySize":      &s.HistorySize,
	}
	for key, value := range raw {
		if !knownKeys[key] {
			if s.extra == nil {
				s.extra = make(map[string]json.RawMessage)
			}
			s.extra[key] = value
			continue
		}
		switch key {
		case "saveHistory":
			var b bool
			if err := json.Unmarshal(value, &b); err != nil {
				return fmt.Errorf("settings %s: %w", key, err)
			}
			s.SaveHistory = &b
		case "saveCommandHistory":
			var b bool
			if err := json.Unmarshal(value, &b); err != nil {
				return fmt.Errorf("settings %s: %w", key, err)
			}
			s.SaveCommandHistory = &b
		default:
			if err := json.Unmarshal(value, fields[key]); err != nil {
				return fmt.Errorf("settings %s: %w", key, err)
			}
		}
	}
	if s.FontSize <= 0 {
		s.FontSize = DefaultFontSize
	}
	return nil
}

// MarshalJSON writes the recognised keys followed by any preserved unknown keys.
func (s *Settings) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(knownKeys)+len(s.extra))
	for key, value := range s.extra {
		out[key] = value
	}
	out["defaultDirectory"] = s.DefaultDirectory
	out["fontSize"] = s.FontSize
	out["fontFamily"] = s.FontFamily
	out["backgroundColor"] = s.BackgroundColor
	out["textColor"] = s.TextColor
	out["clearOnClose"] = s.ClearOnClose
	out["historySize"] = s.HistorySize
	if s.SaveHistory != nil {
		out["saveHistory"] = *s.SaveHistory
	}
	if s.SaveCommandHistory != nil {
		out["saveCommandHistory"] = *s.SaveCommandHistory
	}
	return json.Marshal(out)
}
