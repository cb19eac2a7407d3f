package workperiods

import (
	"strings"
	"sync"
	"time"
)

// Navigator changes the query string of the current location without a reload.
type Navigator interface {
	Navigate(query string, replace bool)
	Query() string
}

// Location is an in-process Navigator keeping a history of query strings.
type Location struct {
	mu      sync.Mutex
	history []string
}

// NewLocation starts a history at query.
func NewLocation(query string) *Location {
	return &Location{history: []string{strings.TrimPrefix(query, "?")}}
}

// Navigate pushes query, or replaces the current entry when replace is set.
func (l *Location) Navigate(query string, replace bool) {
	query = strings.TrimPrefix(query, "?")
	l.mu.Lock()
	defer l.mu.Unlock()
	if replace && len(l.history) > 0 {
		l.history[len(l.history)-1] = query
		return
	}
	l.history = append(l.history, query)
}

// Query returns the current query string without the leading "?".
func (l *Location) Query() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.history) == 0 {
		return ""
	}
	return l.history[len(l.history)-1]
}

// History returns every visited query string, oldest first.
func (l *Location) History() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.history...)
}

// DefaultQuerySyncDelay postpones navigation after a state change.
const DefaultQuerySyncDelay = 100 * time.Millisecond

// QuerySync mirrors the URL-persisted part of the store into a Navigator.
// Bursts of changes within the delay produce a single navigation.
type QuerySync struct {
	store *Store
	nav   Navigator
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	replace bool
}

// NewQuerySync creates a QuerySync. A non-positive delay selects DefaultQuerySyncDelay.
func NewQuerySync(store *Store, nav Navigator, delay time.Duration) *QuerySync {
	if delay <= 0 {
		delay = DefaultQuerySyncDelay
	}
	return &QuerySync{store: store, nav: nav, delay: delay}
}

// Start subscribes to the store. The returned function stops syncing and
// drops a pending navigation.
func (q *QuerySync) Start() (stop func()) {
	unsubscribe := q.store.Subscribe(func(prev, next *State) {
		if EncodeQuery(next) != q.nav.Query() {
			q.Schedule(false)
		}
	})
	return func() {
		unsubscribe()
		q.mu.Lock()
		if q.timer != nil {
			q.timer.Stop()
			q.timer = nil
		}
		q.mu.Unlock()
	}
}

// Schedule queues a navigation to the query of the latest state. A replace
// request sticks until the queued navigation runs.
func (q *QuerySync) Schedule(replace bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.replace = q.replace || replace
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.delay, q.flush)
}

func (q *QuerySync) flush() {
	q.mu.Lock()
	replace := q.replace
	q.replace = false
	q.timer = nil
	q.mu.Unlock()

	query := EncodeQuery(q.store.State())
	if query != q.nav.Query() {
		q.nav.Navigate(query, replace)
	}
}
