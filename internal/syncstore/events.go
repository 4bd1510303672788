package syncstore

import "github.com/google/uuid"

type EntityKind string

const (
	EntityTask    EntityKind = "task"
	EntityProject EntityKind = "project"
)

type EventKind string

const (
	EventLoaded  EventKind = "loaded"
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// Event describes one cache change. Events are scoped to the store instance
// that emitted them, there is no global broadcast.
type Event struct {
	Entity EntityKind
	Kind   EventKind
	ID     uuid.UUID
}

// Subscribe registers a callback for every cache change and returns its
// unsubscribe function. Callbacks run outside the cache lock, on the goroutine
// that performed the mutation.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMtx.Lock()
	defer s.subMtx.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn

	return func() {
		s.subMtx.Lock()
		defer s.subMtx.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) emit(event Event) {
	s.subMtx.Lock()
	callbacks := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		callbacks = append(callbacks, fn)
	}
	s.subMtx.Unlock()

	for _, fn := range callbacks {
		fn(event)
	}
}
