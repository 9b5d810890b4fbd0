package terminal

import (
	"fmt"
	"strings"
)

// Tier is an ordered classification of how much color and effect
// richness an output destination supports.
type Tier int

const (
	// TierNone supports no escape sequences at all.
	TierNone Tier = iota
	// TierMonochrome supports effects (bold, dim, reverse) but no color.
	TierMonochrome
	// TierBasic supports the 16 ANSI colors.
	TierBasic
	// TierExtended supports the 256-color palette.
	TierExtended
	// TierTrueColor supports 24-bit color.
	TierTrueColor
)

// String returns the string representation of the tier
func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierMonochrome:
		return "monochrome"
	case TierBasic:
		return "basic"
	case TierExtended:
		return "extended"
	case TierTrueColor:
		return "truecolor"
	default:
		return "unknown"
	}
}

// ParseTier parses a string into a Tier value
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return TierNone, nil
	case "monochrome", "mono":
		return TierMonochrome, nil
	case "basic", "ansi", "16":
		return TierBasic, nil
	case "extended", "256":
		return TierExtended, nil
	case "truecolor", "direct", "24bit":
		return TierTrueColor, nil
	default:
		return TierNone, fmt.Errorf("unknown tier: %s", s)
	}
}

// Variant names an environment that needs conservative theme choices.
type Variant int

const (
	VariantDefault Variant = iota
	// VariantLimitedPalette is the Linux virtual console or fbterm.
	VariantLimitedPalette
	// VariantAltConsole is the Windows console.
	VariantAltConsole
)

// Prefix returns the theme name prefix used for the variant.
func (v Variant) Prefix() string {
	switch v {
	case VariantLimitedPalette:
		return "linux_"
	case VariantAltConsole:
		return "windows_"
	default:
		return ""
	}
}

// Capability is the result of inspecting one destination.
type Capability struct {
	Tier        Tier
	Interactive bool
	Variant     Variant
	// Framebuffer is set under fbterm, whose escape handling breaks
	// highlighted output.
	Framebuffer bool
	Term        string
}

// CanHighlight reports whether syntax highlighting is worth enabling.
func (c Capability) CanHighlight() bool {
	return c.Tier > TierMonochrome && !c.Framebuffer
}
