package widget

import (
	"errors"
	"sync"
	"time"
)

var ErrUnknownCheckout = errors.New("unknown checkout")

const (
	DefaultGrace   = 5 * time.Minute
	DefaultIdleTTL = 30 * time.Minute
)

type RegistryOptions struct {
	// Grace keeps a finished coordinator readable for late status polls.
	Grace time.Duration
	// IdleTTL bounds the life of a coordinator that never finishes.
	IdleTTL time.Duration
}

type entry struct {
	c     *Coordinator
	added time.Time
}

// Registry tracks the live coordinators by checkout id. Finished and
// abandoned coordinators are closed and dropped on the next access.
type Registry struct {
	opts RegistryOptions

	mu      sync.Mutex
	entries map[string]entry
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Grace <= 0 {
		opts.Grace = DefaultGrace
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}

	return &Registry{opts: opts, entries: make(map[string]entry)}
}

// Put registers c and closes the coordinator it replaces, if any.
func (r *Registry) Put(c *Coordinator) {
	r.mu.Lock()
	stale := r.collect(time.Now())
	previous := r.entries[c.CheckoutID()]
	r.entries[c.CheckoutID()] = entry{c: c, added: time.Now()}
	r.mu.Unlock()

	closeAll(stale)
	if previous.c != nil && previous.c != c {
		previous.c.Close()
	}
}

func (r *Registry) Get(checkoutID string) (*Coordinator, error) {
	r.mu.Lock()
	stale := r.collect(time.Now())
	e, ok := r.entries[checkoutID]
	r.mu.Unlock()

	closeAll(stale)
	if !ok {
		return nil, ErrUnknownCheckout
	}
	return e.c, nil
}

// Remove closes and forgets the coordinator of checkoutID.
func (r *Registry) Remove(checkoutID string) bool {
	r.mu.Lock()
	e, ok := r.entries[checkoutID]
	delete(r.entries, checkoutID)
	r.mu.Unlock()

	if ok {
		e.c.Close()
	}
	return ok
}

// Prune drops the coordinators whose grace or idle time ran out and
// reports how many were dropped.
func (r *Registry) Prune() int {
	r.mu.Lock()
	stale := r.collect(time.Now())
	r.mu.Unlock()

	closeAll(stale)
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// CloseAll closes every coordinator, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Coordinator, 0, len(r.entries))
	for _, e := range r.entries {
		all = append(all, e.c)
	}
	r.entries = make(map[string]entry)
	r.mu.Unlock()

	closeAll(all)
}

// collect removes expired entries; r.mu must be held.
func (r *Registry) collect(now time.Time) []*Coordinator {
	var stale []*Coordinator
	for id, e := range r.entries {
		expired := now.Sub(e.added) >= r.opts.IdleTTL
		if o, done := e.c.Outcome(); done {
			expired = now.Sub(o.FinishedAt) >= r.opts.Grace
		}
		if expired {
			delete(r.entries, id)
			stale = append(stale, e.c)
		}
	}
	return stale
}

func closeAll(cs []*Coordinator) {
	for _, c := range cs {
		c.Close()
	}
}
