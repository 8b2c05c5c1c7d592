// Package devregistry tracks every open PTP session against a live USB
// device, replacing the teacher's single fixed-size global device
// table (`internal/ctrl.Controller` assumes exactly one control fd)
// with a keyed registry supporting any number of concurrently open
// devices (§5, §9 redesign).
package devregistry

import (
	"context"
	"fmt"
	"sync"

	"github.com/defiant-labs/ptpfs/ptpsession"
)

// DeviceKey identifies one physical USB device by its bus topology,
// stable across re-enumeration as long as the device stays plugged
// into the same port.
type DeviceKey struct {
	Bus     int
	Address int
}

func (k DeviceKey) String() string {
	return fmt.Sprintf("bus%d/addr%d", k.Bus, k.Address)
}

// entry pairs an open session with the FUSE-mount reference count
// keeping it alive; the last Release closes the underlying session.
type entry struct {
	session *ptpsession.Session
	refs    int
}

// Registry is a keyed table of open sessions, one per physical device,
// guarded by a single RWMutex (grounded on the teacher's
// `internal/ctrl.Controller`, generalized from "one control fd" to "one
// entry per open device").
type Registry struct {
	mu      sync.RWMutex
	entries map[DeviceKey]*entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[DeviceKey]*entry)}
}

// Acquire returns the session already registered for key, bumping its
// reference count, or opens a fresh one via open and registers it if
// none exists yet. Concurrent Acquire calls for the same key that race
// past the double-checked lookup each pay the cost of their own open;
// only the first to re-acquire the write lock wins and the other's
// session is closed immediately (PTP devices accept only one open
// session at a time, so losing this race cleanly is required, not just
// wasteful).
func (r *Registry) Acquire(ctx context.Context, key DeviceKey, open func(context.Context) (*ptpsession.Session, error)) (*ptpsession.Session, error) {
	r.mu.Lock()
	if e, ok := r.entries[key]; ok {
		e.refs++
		s := e.session
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	session, err := open(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if e, ok := r.entries[key]; ok {
		e.refs++
		r.mu.Unlock()
		_ = session.Close(ctx)
		return e.session, nil
	}
	r.entries[key] = &entry{session: session, refs: 1}
	r.mu.Unlock()
	return session, nil
}

// Release drops one reference to key's session, closing it once the
// count reaches zero. Releasing a key with no registered session is a
// no-op.
func (r *Registry) Release(ctx context.Context, key DeviceKey) error {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return nil
	}
	delete(r.entries, key)
	r.mu.Unlock()
	return e.session.Close(ctx)
}

// Lookup returns key's session without affecting its reference count.
func (r *Registry) Lookup(key DeviceKey) (*ptpsession.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Keys returns every currently registered device key.
func (r *Registry) Keys() []DeviceKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DeviceKey, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	return out
}

// Len reports the number of currently registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
