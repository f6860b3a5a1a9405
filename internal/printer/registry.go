package printer

import (
	"sync"
	"time"
)

// Snapshot is the renderable view of the registry: the full ordered
// printer list plus derived counts.
type Snapshot struct {
	Printers     []Printer `json:"printers"`
	ActiveCount  int       `json:"active_count"`
	StoppedCount int       `json:"stopped_count"`
}

// UpdateListener is invoked after every successful registry update.
type UpdateListener func(Snapshot)

// Registry holds the last-known state of the fixed printer fleet. It is
// seeded once at startup and only ever mutated in place; updates for
// unknown ids are dropped. Transport handlers on other goroutines all
// write here, so access is mutex-guarded with last-write-wins semantics.
type Registry struct {
	mu        sync.RWMutex
	resolver  *Resolver
	order     []string
	printers  map[string]*Printer
	listeners []UpdateListener

	now func() time.Time
}

// NewRegistry creates an empty registry using the given resolver.
func NewRegistry(resolver *Resolver) *Registry {
	return &Registry{
		resolver: resolver,
		printers: make(map[string]*Printer),
		now:      time.Now,
	}
}

// Seed registers a printer with offline/unknown initial state. Seeding a
// duplicate id is a no-op.
func (reg *Registry) Seed(id, name string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.printers[id]; ok {
		return
	}

	reg.order = append(reg.order, id)
	reg.printers[id] = &Printer{
		ID:     id,
		Name:   name,
		Status: StatusOffline,
	}
}

// AddListener registers a callback fired after each successful update.
// Listeners must be registered before the transports start.
func (reg *Registry) AddListener(l UpdateListener) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.listeners = append(reg.listeners, l)
}

// Upsert applies a normalized reading to the printer with the given id
// and reports whether a record was updated. Unknown ids are ignored.
// Distance is overwritten with the reading's value, so a zero reading is
// preserved and an absent or invalid one clears the field. The timestamp
// defaults to the current time when the payload carried none.
func (reg *Registry) Upsert(id string, r Reading) bool {
	reg.mu.Lock()

	p, ok := reg.printers[id]
	if !ok {
		reg.mu.Unlock()
		return false
	}

	p.Status = reg.resolver.Resolve(r.Status, r.Distance)
	p.DistanceMm = r.Distance

	if r.Timestamp != "" {
		p.LastUpdate = r.Timestamp
	} else {
		p.LastUpdate = reg.now().Format(time.RFC3339)
	}

	if r.Name != "" {
		p.Name = r.Name
	}
	if r.Progress != nil {
		p.Progress = r.Progress
	}

	snap := reg.snapshotLocked()
	listeners := reg.listeners
	reg.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}

	return true
}

// Get returns a copy of one printer's state.
func (reg *Registry) Get(id string) (Printer, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	p, ok := reg.printers[id]
	if !ok {
		return Printer{}, false
	}
	return *p, true
}

// Snapshot returns the ordered printer list with derived counts.
func (reg *Registry) Snapshot() Snapshot {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.snapshotLocked()
}

func (reg *Registry) snapshotLocked() Snapshot {
	snap := Snapshot{
		Printers: make([]Printer, 0, len(reg.order)),
	}

	for _, id := range reg.order {
		p := *reg.printers[id]
		snap.Printers = append(snap.Printers, p)

		switch p.Status {
		case StatusOnline, StatusPrinting:
			snap.ActiveCount++
		case StatusOffline:
			snap.StoppedCount++
		}
	}

	return snap
}
