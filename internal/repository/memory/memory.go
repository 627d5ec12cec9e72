// Package memory is an in-process store used by tests and local tooling. It is not safe
// to run more than one server against it and it loses everything on exit.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository"
)

type Store struct {
	state *state
	repository.UserRepository
	repository.PropertyRepository
	repository.BookingRepository
	repository.ForkliftRepository
	repository.OperatorRepository
	repository.OperationRepository
	repository.NotificationRepository
}

func NewStore() *Store {
	st := &state{
		users:         newTable[domain.User](),
		properties:    newTable[domain.Property](),
		bookings:      newTable[domain.Booking](),
		forklifts:     newTable[domain.Forklift](),
		operators:     newTable[domain.Operator](),
		operations:    newTable[domain.Operation](),
		notifications: newTable[domain.Notification](),
	}
	return &Store{
		state:                  st,
		UserRepository:         &userRepository{st},
		PropertyRepository:     &propertyRepository{st},
		BookingRepository:      &bookingRepository{st},
		ForkliftRepository:     &forkliftRepository{st},
		OperatorRepository:     &operatorRepository{st},
		OperationRepository:    &operationRepository{st},
		NotificationRepository: &notificationRepository{st},
	}
}

// SetFailure makes every subsequent call fail with a storage error wrapping err.
// Passing nil restores normal operation.
func (s *Store) SetFailure(err error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.failure = err
}

type state struct {
	mu      sync.RWMutex
	failure error

	users         *table[domain.User]
	properties    *table[domain.Property]
	bookings      *table[domain.Booking]
	forklifts     *table[domain.Forklift]
	operators     *table[domain.Operator]
	operations    *table[domain.Operation]
	notifications *table[domain.Notification]
}

func (s *state) read(ctx context.Context, op string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	s.mu.RLock()
	if s.failure != nil {
		s.mu.RUnlock()
		return nil, domain.NewStorageError(op, s.failure)
	}
	return s.mu.RUnlock, nil
}

func (s *state) write(ctx context.Context, op string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	s.mu.Lock()
	if s.failure != nil {
		s.mu.Unlock()
		return nil, domain.NewStorageError(op, s.failure)
	}
	return s.mu.Unlock, nil
}

type row[T any] struct {
	seq       int64
	createdAt time.Time
	value     T
}

// table keeps rows by id plus an insertion sequence used to break ordering ties.
// Callers hold state.mu.
type table[T any] struct {
	rows map[string]*row[T]
	seq  int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*row[T])}
}

func (t *table[T]) insert(id string, createdAt time.Time, v T) bool {
	if _, exists := t.rows[id]; exists {
		return false
	}
	t.seq++
	t.rows[id] = &row[T]{seq: t.seq, createdAt: createdAt, value: v}
	return true
}

func (t *table[T]) get(id string) (T, bool) {
	r, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return r.value, true
}

func (t *table[T]) replace(id string, v T) bool {
	r, ok := t.rows[id]
	if !ok {
		return false
	}
	r.value = v
	return true
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

func (t *table[T]) list(match func(T) bool, order repository.SortOrder) []T {
	selected := make([]*row[T], 0, len(t.rows))
	for _, r := range t.rows {
		if match == nil || match(r.value) {
			selected = append(selected, r)
		}
	}
	sort.Slice(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if order == repository.SortOldestFirst {
			if !a.createdAt.Equal(b.createdAt) {
				return a.createdAt.Before(b.createdAt)
			}
			return a.seq < b.seq
		}
		if !a.createdAt.Equal(b.createdAt) {
			return a.createdAt.After(b.createdAt)
		}
		return a.seq > b.seq
	})
	out := make([]T, len(selected))
	for i, r := range selected {
		out[i] = r.value
	}
	return out
}

func (t *table[T]) some(match func(T) bool) bool {
	for _, r := range t.rows {
		if match(r.value) {
			return true
		}
	}
	return false
}

func contains[S comparable](set []S, v S) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}
