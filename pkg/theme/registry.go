package theme

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"sync"

	"github.com/arthur-debert/lumen/pkg/errors"
	"github.com/arthur-debert/lumen/pkg/palette"
	"github.com/arthur-debert/lumen/pkg/terminal"
	"gopkg.in/yaml.v3"
)

// Auto is the theme name resolved from the destination's capability.
const Auto = "auto"

// none selects an empty style table or icon set.
const none = "none"

const (
	defaultStyle = "norm"
	defaultIcons = "rounded"
)

//go:embed themes.yaml
var embeddedThemes []byte

// Def is an abstract theme definition as written in YAML.
type Def struct {
	Base        string `yaml:"base,omitempty"`
	Kind        Kind   `yaml:"kind,omitempty"`
	Style       string `yaml:"style,omitempty"`
	FbtermStyle string `yaml:"fbterm_style,omitempty"`
	Icons       string `yaml:"icons,omitempty"`
	Template    string `yaml:"template,omitempty"`
	DateFormat  string `yaml:"datefmt,omitempty"`
}

// Definitions is the complete set of icon sets, style tables and themes.
type Definitions struct {
	Icons  map[string]map[string]string `yaml:"icons"`
	Styles map[string]map[string]string `yaml:"styles"`
	Themes map[string]Def               `yaml:"themes"`
}

var (
	defaultOnce sync.Once
	defaultDefs *Definitions
	defaultErr  error
)

// Default returns the built-in definitions.
func Default() *Definitions {
	defaultOnce.Do(func() {
		defaultDefs, defaultErr = LoadFromData(embeddedThemes)
	})
	if defaultErr != nil {
		// The embedded file is part of the build; failing here is a bug.
		panic(fmt.Sprintf("theme: embedded themes.yaml: %v", defaultErr))
	}
	return defaultDefs
}

// LoadFromData parses theme definitions from YAML bytes.
func LoadFromData(data []byte) (*Definitions, error) {
	var defs Definitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse theme definitions")
	}
	if defs.Icons == nil {
		defs.Icons = map[string]map[string]string{}
	}
	if defs.Styles == nil {
		defs.Styles = map[string]map[string]string{}
	}
	if defs.Themes == nil {
		defs.Themes = map[string]Def{}
	}
	return &defs, nil
}

// LoadFile reads a YAML file of definitions and merges it over the
// built-in ones. Entries in the file win.
func LoadFile(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read themes file %s", path)
	}
	user, err := LoadFromData(data)
	if err != nil {
		return nil, err
	}
	return Default().Merge(user), nil
}

// Merge returns a new Definitions with other's entries layered over d's.
func (d *Definitions) Merge(other *Definitions) *Definitions {
	out := &Definitions{
		Icons:  make(map[string]map[string]string, len(d.Icons)),
		Styles: make(map[string]map[string]string, len(d.Styles)),
		Themes: make(map[string]Def, len(d.Themes)),
	}
	for _, src := range []*Definitions{d, other} {
		if src == nil {
			continue
		}
		for k, v := range src.Icons {
			out.Icons[k] = copyMap(v)
		}
		for k, v := range src.Styles {
			out.Styles[k] = copyMap(v)
		}
		for k, v := range src.Themes {
			out.Themes[k] = v
		}
	}
	return out
}

// Names returns the theme names in sorted order.
func (d *Definitions) Names() []string {
	names := make([]string, 0, len(d.Themes))
	for name := range d.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IconSetNames returns the icon set names in sorted order.
func (d *Definitions) IconSetNames() []string {
	names := make([]string, 0, len(d.Icons))
	for name := range d.Icons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IconSet returns a completed copy of the named icon set.
func (d *Definitions) IconSet(name string) (map[string]string, error) {
	if name == none {
		return Complete(nil), nil
	}
	set, ok := d.Icons[name]
	if !ok {
		return nil, errors.Newf(errors.ErrUnknownIcons, "unknown icon set: %s", name)
	}
	return Complete(copyMap(set)), nil
}

// RenderStyle renders the named style table against p.
func (d *Definitions) RenderStyle(name string, p *palette.Palette) (map[string]string, error) {
	if name == none {
		return Complete(nil), nil
	}
	table, ok := d.Styles[name]
	if !ok {
		return nil, errors.Newf(errors.ErrUnknownStyle, "unknown style: %s", name)
	}
	out := make(map[string]string, len(table))
	for lvl, expr := range table {
		code, err := p.Compose(expr)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidValue, "style %s, level %s", name, lvl)
		}
		out[lvl] = code
	}
	return Complete(out), nil
}

// RenderStyles renders every style table against p.
func (d *Definitions) RenderStyles(p *palette.Palette) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string, len(d.Styles))
	for name := range d.Styles {
		table, err := d.RenderStyle(name, p)
		if err != nil {
			return nil, err
		}
		out[name] = table
	}
	return out, nil
}

// Lookup renders a single named theme for the capability. "auto" is
// resolved first.
func (d *Definitions) Lookup(name string, c terminal.Capability) (*Theme, error) {
	if name == Auto {
		name = d.AutoName(c)
	}
	def, err := d.flatten(name)
	if err != nil {
		return nil, err
	}
	return d.render(name, def, palette.Render(c.Tier), c)
}

// Render produces every theme for the capability.
func (d *Definitions) Render(c terminal.Capability) (map[string]*Theme, error) {
	p := palette.Render(c.Tier)
	out := make(map[string]*Theme, len(d.Themes))
	for name := range d.Themes {
		def, err := d.flatten(name)
		if err != nil {
			return nil, err
		}
		t, err := d.render(name, def, p, c)
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}

// AutoName picks interactive or production for the capability and
// applies the environment variant prefix when that variant exists.
func (d *Definitions) AutoName(c terminal.Capability) string {
	name := "production"
	if c.Interactive {
		name = "interactive"
	}
	if prefixed := c.Variant.Prefix() + name; prefixed != name {
		if _, ok := d.Themes[prefixed]; ok {
			return prefixed
		}
	}
	return name
}

// flatten resolves base inheritance into a single definition.
func (d *Definitions) flatten(name string) (Def, error) {
	def, ok := d.Themes[name]
	if !ok {
		return Def{}, errors.Newf(errors.ErrUnknownTheme, "unknown theme: %s", name)
	}
	seen := map[string]bool{name: true}
	for def.Base != "" {
		if seen[def.Base] {
			return Def{}, errors.Newf(errors.ErrInvalidValue, "theme %s: inheritance cycle through %s", name, def.Base)
		}
		seen[def.Base] = true
		parent, ok := d.Themes[def.Base]
		if !ok {
			return Def{}, errors.Newf(errors.ErrUnknownTheme, "theme %s: unknown base %s", name, def.Base)
		}
		def = inherit(def, parent)
	}
	return def, nil
}

func inherit(child, parent Def) Def {
	out := parent
	out.Base = parent.Base
	if child.Kind != "" {
		out.Kind = child.Kind
	}
	if child.Style != "" {
		out.Style = child.Style
	}
	if child.FbtermStyle != "" {
		out.FbtermStyle = child.FbtermStyle
	}
	if child.Icons != "" {
		out.Icons = child.Icons
	}
	if child.Template != "" {
		out.Template = child.Template
	}
	if child.DateFormat != "" {
		out.DateFormat = child.DateFormat
	}
	return out
}

var codeRef = regexp.MustCompile(`\$\{([^}]*)\}`)

func (d *Definitions) render(name string, def Def, p *palette.Palette, c terminal.Capability) (*Theme, error) {
	kind := def.Kind
	if kind == "" {
		kind = KindStyled
	}

	styleName := def.Style
	if c.Framebuffer && def.FbtermStyle != "" {
		styleName = def.FbtermStyle
	}
	if styleName == "" {
		styleName = defaultStyle
	}
	iconsName := def.Icons
	if iconsName == "" {
		iconsName = defaultIcons
	}

	style, err := d.RenderStyle(styleName, p)
	if err != nil {
		return nil, err
	}
	icons, err := d.IconSet(iconsName)
	if err != nil {
		return nil, err
	}

	var renderErr error
	tmpl := codeRef.ReplaceAllStringFunc(def.Template, func(ref string) string {
		code, err := p.Compose(codeRef.FindStringSubmatch(ref)[1])
		if err != nil && renderErr == nil {
			renderErr = err
		}
		return code
	})
	if renderErr != nil {
		return nil, errors.Wrapf(renderErr, errors.ErrInvalidValue, "theme %s template", name)
	}

	return &Theme{
		Name:       name,
		Kind:       kind,
		Style:      style,
		Icons:      icons,
		Template:   tmpl,
		DateFormat: def.DateFormat,
	}, nil
}

// Themes renders the built-in themes for a capability.
func Themes(c terminal.Capability) (map[string]*Theme, error) {
	return Default().Render(c)
}

// Resolve looks up one built-in theme by name, including "auto".
func Resolve(name string, c terminal.Capability) (*Theme, error) {
	return Default().Lookup(name, c)
}
