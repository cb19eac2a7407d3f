package workperiods

import "sync"

// Listener observes every state change. It runs after the store lock is released.
type Listener func(prev, next *State)

// Store owns the console state. Dispatch is the only way to change it.
type Store struct {
	mu        sync.Mutex
	state     *State
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store holding initial.
func NewStore(initial *State) *Store {
	return &Store{state: initial, listeners: map[int]Listener{}}
}

// State returns the current snapshot. Callers must not modify it.
func (s *Store) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a to the current state and returns the states before and
// after. Cancel handles superseded by the transition are cancelled.
func (s *Store) Dispatch(a Action) (prev, next *State) {
	s.mu.Lock()
	prev = s.state
	next = Reduce(prev, a)
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	if next != prev {
		for _, l := range s.listeners {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	if next == prev {
		return prev, next
	}
	releaseSupersededHandles(prev, next)
	for _, l := range listeners {
		l(prev, next)
	}
	return prev, next
}

// Subscribe registers l and returns a function removing it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// releaseSupersededHandles cancels requests whose slot was taken by a newer
// request for the same key, and detail requests whose entry disappeared.
// Period data handles are not cancelled when the page is cleared since they
// may belong to writes that should still reach the server.
func releaseSupersededHandles(prev, next *State) {
	if superseded(prev.Cancel, next.Cancel) {
		prev.Cancel.Cancel()
	}
	for id, old := range prev.PeriodsData {
		if cur, ok := next.PeriodsData[id]; ok && superseded(old.Cancel, cur.Cancel) {
			old.Cancel.Cancel()
		}
	}
	for id, old := range prev.PeriodsDetails {
		cur, ok := next.PeriodsDetails[id]
		if !ok {
			old.PeriodsCancel.Cancel()
			old.AccountsCancel.Cancel()
			continue
		}
		if superseded(old.PeriodsCancel, cur.PeriodsCancel) {
			old.PeriodsCancel.Cancel()
		}
		if superseded(old.AccountsCancel, cur.AccountsCancel) {
			old.AccountsCancel.Cancel()
		}
	}
}

func superseded(old, cur *CancelHandle) bool {
	return old != nil && cur != nil && old != cur
}
