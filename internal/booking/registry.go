package booking

import (
	"sync"
	"time"
)

// Registry holds live wizards by id. Wizards are discarded after sitting idle.
type Registry struct {
	provider SlotProvider
	observer TransitionObserver
	now      func() time.Time

	mu      sync.RWMutex
	wizards map[string]*Wizard
}

// NewRegistry creates a registry whose wizards share provider and observer.
func NewRegistry(provider SlotProvider, observer TransitionObserver) *Registry {
	if provider == nil {
		panic("booking: slot provider required")
	}
	return &Registry{
		provider: provider,
		observer: observer,
		now:      time.Now,
		wizards:  make(map[string]*Wizard),
	}
}

// Create starts a fresh wizard and registers it.
func (r *Registry) Create() *Wizard {
	w := NewWizard(r.provider, WithObserver(r.observer), WithClock(r.now))
	r.mu.Lock()
	r.wizards[w.ID()] = w
	r.mu.Unlock()
	return w
}

// Get looks up a wizard.
func (r *Registry) Get(id string) (*Wizard, error) {
	r.mu.RLock()
	w, ok := r.wizards[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrWizardNotFound
	}
	return w, nil
}

// Delete discards a wizard. Unknown ids are ignored.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.wizards, id)
	r.mu.Unlock()
}

// Len returns the number of live wizards.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wizards)
}

// Sweep drops wizards idle for longer than ttl and returns how many were
// removed. Wizards with a call in progress are kept. Wizard state is read
// without holding the registry lock.
func (r *Registry) Sweep(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := r.now().UTC().Add(-ttl)

	r.mu.RLock()
	all := make([]*Wizard, 0, len(r.wizards))
	for _, w := range r.wizards {
		all = append(all, w)
	}
	r.mu.RUnlock()

	var stale []*Wizard
	for _, w := range all {
		if !w.Busy() && w.UpdatedAt().Before(cutoff) {
			stale = append(stale, w)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for _, w := range stale {
		if r.wizards[w.ID()] == w {
			delete(r.wizards, w.ID())
			removed++
		}
	}
	return removed
}
