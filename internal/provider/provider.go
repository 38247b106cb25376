// Package provider turns vendor tracker payloads into domain positions.
//
// Each vendor is described by a table of candidate field names per logical
// attribute. Candidates are tried in order and the first one that coerces to
// a usable value wins, which absorbs the naming drift between firmware
// versions of the same tracker.
package provider

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"lejio/tracking/internal/domain"
)

const GenericName = "generic"

// DefaultMaxClockSkew is how far past receipt a device timestamp may lie
// before it is ignored.
const DefaultMaxClockSkew = 15 * time.Minute

type Parser interface {
	Name() string
	Parse(raw json.RawMessage, receivedAt time.Time) (*domain.Position, error)
}

// Registry dispatches by provider name. Unknown names go to the fallback.
type Registry struct {
	mu       sync.RWMutex
	parsers  map[string]Parser
	fallback Parser
}

func NewRegistry(fallback Parser, parsers ...Parser) *Registry {
	r := &Registry{
		parsers:  make(map[string]Parser, len(parsers)+1),
		fallback: fallback,
	}
	r.Register(fallback)
	for _, p := range parsers {
		r.Register(p)
	}
	return r
}

// DefaultRegistry knows every bundled vendor, with the generic parser as fallback.
func DefaultRegistry() *Registry {
	return NewRegistry(Generic(), Teltonika(), Ruptela(), AutoPi())
}

func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[normalizeName(p.Name())] = p
}

// SetMaxClockSkew bounds device timestamps of every registered table-driven
// parser. Timestamps later than receipt plus d fall back to receipt time.
func (r *Registry) SetMaxClockSkew(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parsers {
		if s, ok := p.(interface{ setMaxClockSkew(time.Duration) }); ok {
			s.setMaxClockSkew(d)
		}
	}
}

func (r *Registry) Lookup(name string) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.parsers[normalizeName(name)]; ok {
		return p
	}
	return r.fallback
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	return names
}

func (r *Registry) Parse(provider string, raw json.RawMessage, receivedAt time.Time) (*domain.Position, error) {
	return r.Lookup(provider).Parse(raw, receivedAt)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
