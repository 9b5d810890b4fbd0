package render

import (
	"fmt"
	"os"

	"github.com/arthur-debert/lumen/pkg/theme"
)

// Snapshot is a printable summary of a renderer's configuration.
type Snapshot struct {
	Level           string `toml:"level" json:"level"`
	DefaultLevel    string `toml:"default_level" json:"default_level"`
	Theme           string `toml:"theme" json:"theme"`
	Formatter       string `toml:"formatter" json:"formatter"`
	Style           string `toml:"style" json:"style"`
	Icons           string `toml:"icons" json:"icons"`
	MsgFormat       string `toml:"msgfmt" json:"msgfmt"`
	DateFormat      string `toml:"datefmt" json:"datefmt"`
	Syntax          string `toml:"syntax" json:"syntax"`
	Highlight       bool   `toml:"highlight" json:"highlight"`
	HighlightActive bool   `toml:"highlight_active" json:"highlight_active"`
	Language        string `toml:"language" json:"language"`
	Destination     string `toml:"destination" json:"destination"`
	Tier            string `toml:"tier" json:"tier"`
	Interactive     bool   `toml:"interactive" json:"interactive"`
}

// Snapshot describes the active configuration.
func (r *Renderer) Snapshot() Snapshot {
	st := r.active.Load()
	s := st.settings

	themeName := st.theme.Name
	if s.themeVal != nil {
		themeName = "custom:" + themeName
	} else if s.themeName == theme.Auto {
		themeName = "auto (" + themeName + ")"
	}
	tmpl := s.msgfmt
	if tmpl == "" {
		tmpl = st.theme.Template
	}
	datefmt := s.datefmt
	if datefmt == "" {
		datefmt = st.theme.DateFormat
	}

	return Snapshot{
		Level:           r.levels.Name(r.Level()),
		DefaultLevel:    r.levels.Name(r.DefaultLevel()),
		Theme:           themeName,
		Formatter:       string(st.theme.Kind),
		Style:           s.style.describe(),
		Icons:           s.icons.describe(),
		MsgFormat:       tmpl,
		DateFormat:      datefmt,
		Syntax:          s.syntax.String(),
		Highlight:       s.highlight,
		HighlightActive: st.highlighter.Active(),
		Language:        s.language,
		Destination:     describeWriter(s.dest),
		Tier:            s.cap.Tier.String(),
		Interactive:     s.cap.Interactive,
	}
}

func (s selection) describe() string {
	switch {
	case !s.set():
		return "theme"
	case s.name != "":
		return s.name
	default:
		return "custom"
	}
}

func describeWriter(w any) string {
	if f, ok := w.(*os.File); ok {
		return f.Name()
	}
	return fmt.Sprintf("%T", w)
}
