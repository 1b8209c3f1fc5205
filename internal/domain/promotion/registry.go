package promotion

import (
	"slices"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-pricing/internal/domain/order"
)

// BestName is the reserved name that selects the best-of promotion.
const BestName = "best"

var (
	// ErrDuplicatePromotion is returned when a name is registered twice.
	ErrDuplicatePromotion = errors.New("promotion already registered")
	// ErrInvalidName is returned for an empty or reserved name.
	ErrInvalidName = errors.New("invalid promotion name")
)

// Registry holds promotions in registration order. It is built once at
// startup and read-only afterwards.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds p under name.
func (r *Registry) Register(name string, p order.Promotion) error {
	if name == "" || name == BestName {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	if p == nil {
		return errors.Errorf("register %s: nil promotion", name)
	}
	if _, ok := r.index[name]; ok {
		return errors.Wrapf(ErrDuplicatePromotion, "%s", name)
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, Entry{Name: name, Promotion: p})
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, p order.Promotion) {
	if err := r.Register(name, p); err != nil {
		panic(err)
	}
}

// Lookup returns the promotion registered under name. BestName resolves to
// a Best over every registered entry.
func (r *Registry) Lookup(name string) (order.Promotion, bool) {
	if name == BestName {
		return r.Best(), true
	}
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.entries[i].Promotion, true
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the registered entries.
func (r *Registry) Entries() []Entry {
	return slices.Clone(r.entries)
}

// Len returns the number of registered promotions.
func (r *Registry) Len() int { return len(r.entries) }

// Best returns a best-of promotion over the current entries.
func (r *Registry) Best() *Best {
	return NewBest(r.entries...)
}

// Describe returns the description of p, or an empty string.
func Describe(p order.Promotion) string {
	if d, ok := p.(Describer); ok {
		return d.Description()
	}
	return ""
}
