// Package level defines lumen's severity levels.
//
// The standard set is fixed. Custom severities are added through a
// Registry, which validates that every numeric value stays unique.
package level

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/arthur-debert/lumen/pkg/errors"
)

// Level is a numeric severity. Higher values are more severe.
type Level int

// Standard severities. Odd values for TRACE, NOTE and EXCEPT keep clear of
// levels commonly configured by other frameworks.
const (
	NotSet   Level = 0
	Trace    Level = 7
	Debug    Level = 10
	Info     Level = 20
	Note     Level = 27
	Warning  Level = 30
	Error    Level = 40
	Except   Level = 43
	Critical Level = 50
	Fatal          = Critical
)

// Canonical level names.
const (
	NameNotSet   = "NOTSET"
	NameTrace    = "TRACE"
	NameDebug    = "DEBUG"
	NameInfo     = "INFO"
	NameNote     = "NOTE"
	NameWarning  = "WARNING"
	NameError    = "ERROR"
	NameExcept   = "EXCEPT"
	NameCritical = "CRITICAL"
	NameFatal    = "FATAL"
)

var canonical = []string{
	NameNotSet, NameTrace, NameDebug, NameInfo, NameNote,
	NameWarning, NameError, NameExcept, NameCritical, NameFatal,
}

// CanonicalNames returns the fixed enumeration of level names in severity
// order. CRITICAL and FATAL share a severity.
func CanonicalNames() []string {
	out := make([]string, len(canonical))
	copy(out, canonical)
	return out
}

// DisplayName returns the label a formatter shows for name.
// CRITICAL is always displayed as FATAL.
func DisplayName(name string) string {
	if name == NameCritical {
		return NameFatal
	}
	return name
}

var aliases = map[string]string{
	"warn":      NameWarning,
	"err":       NameError,
	"crit":      NameCritical,
	"fatal":     NameCritical,
	"exc":       NameExcept,
	"exception": NameExcept,
}

// Handle identifies a registered level.
type Handle struct {
	Name  string
	Level Level
}

// Registry maps level names to values and back.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Level
	byValue map[Level]string
}

// NewRegistry returns a registry holding the standard levels.
func NewRegistry() *Registry {
	r := &Registry{
		byName:  make(map[string]Level),
		byValue: make(map[Level]string),
	}
	for _, h := range []Handle{
		{NameNotSet, NotSet},
		{NameTrace, Trace},
		{NameDebug, Debug},
		{NameInfo, Info},
		{NameNote, Note},
		{NameWarning, Warning},
		{NameError, Error},
		{NameExcept, Except},
		{NameCritical, Critical},
	} {
		r.byName[h.Name] = h.Level
		r.byValue[h.Level] = h.Name
	}
	r.byName[NameFatal] = Fatal
	return r
}

// Register adds a custom level. The value must not already be in use and
// the name must not already be bound to a different value.
func (r *Registry) Register(name string, value Level) (Handle, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return Handle{}, errors.New(errors.ErrInvalidValue, "level name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byValue[value]; ok {
		return Handle{}, errors.Newf(errors.ErrLevelCollision,
			"level value %d already registered as %s", value, existing).
			WithDetail("value", int(value)).
			WithDetail("existing", existing)
	}
	if existing, ok := r.byName[name]; ok {
		return Handle{}, errors.Newf(errors.ErrLevelCollision,
			"level name %s already registered with value %d", name, existing).
			WithDetail("name", name)
	}

	r.byName[name] = value
	r.byValue[value] = name
	return Handle{Name: name, Level: value}, nil
}

// Name returns the registered name for l, or "Level N" when unregistered.
func (r *Registry) Name(l Level) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.byValue[l]; ok {
		return name
	}
	return fmt.Sprintf("Level %d", l)
}

// Lookup returns the value bound to name.
func (r *Registry) Lookup(name string) (Level, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byName[strings.ToUpper(name)]
	return l, ok
}

// Parse resolves a level from a name, an alias or a decimal number.
func (r *Registry) Parse(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Level(n), nil
	}
	if canon, ok := aliases[strings.ToLower(s)]; ok {
		s = canon
	}
	if l, ok := r.Lookup(s); ok {
		return l, nil
	}
	return NotSet, errors.Newf(errors.ErrUnknownLevel, "unknown level: %s", s)
}

// Handles returns every registered level ordered by value.
func (r *Registry) Handles() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Handle, 0, len(r.byValue))
	for v, name := range r.byValue {
		out = append(out, Handle{Name: name, Level: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}
