// Package theme maps named themes to bundles of per-level styles, icons,
// a message template and a date format.
//
// Definitions are loaded from the embedded themes.yaml and may be
// extended from user files. They are abstract: Render turns them into
// concrete escape codes for one palette.
package theme

import (
	"github.com/arthur-debert/lumen/pkg/level"
)

// Kind selects the formatter a theme is meant for.
type Kind string

const (
	KindStyled Kind = "styled"
	KindPlain  Kind = "plain"
	KindJSON   Kind = "json"
)

// Theme is a rendered theme. For KindJSON, Template is the
// comma-separated field list.
type Theme struct {
	Name       string
	Kind       Kind
	Style      map[string]string
	Icons      map[string]string
	Template   string
	DateFormat string
}

// StyleFor returns the style code for a level name, empty if unstyled.
func (t *Theme) StyleFor(levelName string) string {
	if t == nil {
		return ""
	}
	return t.Style[levelName]
}

// IconFor returns the icon for a level name, empty if none.
func (t *Theme) IconFor(levelName string) string {
	if t == nil {
		return ""
	}
	return t.Icons[levelName]
}

// Clone returns a deep copy so callers can replace maps without touching
// a shared registry entry.
func (t *Theme) Clone() *Theme {
	if t == nil {
		return nil
	}
	c := *t
	c.Style = copyMap(t.Style)
	c.Icons = copyMap(t.Icons)
	return &c
}

// Complete fills every canonical level name missing from m with "".
func Complete(m map[string]string) map[string]string {
	if m == nil {
		m = make(map[string]string, len(level.CanonicalNames()))
	}
	for _, name := range level.CanonicalNames() {
		if _, ok := m[name]; !ok {
			m[name] = ""
		}
	}
	return m
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
