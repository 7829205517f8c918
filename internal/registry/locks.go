package registry

import "sync"

// ownerLocks hands out one mutex per owner phone so mutations of a single
// owner's check-id set are serialized while different owners never block each
// other. Locks are created on first use and kept for the life of the process;
// the map is bounded by the number of owners ever mutated.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for phone and returns it so the caller can defer
// the unlock.
func (l *ownerLocks) acquire(phone string) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[phone]
	if !ok {
		m = &sync.Mutex{}
		l.locks[phone] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m
}
