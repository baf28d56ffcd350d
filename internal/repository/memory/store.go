// Package memory is an in-process implementation of the repository contracts.
//
// Transactions run one at a time under a store-wide lock against a private
// copy of the data, so every schedule is trivially serializable. Commits can
// be made to fail with tx.ErrConflict to exercise retry paths.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/tx"
)

type state struct {
	flights      map[int64]domain.Flight
	users        map[string]domain.User
	reservations map[int64]domain.Reservation
	counter      int64
}

// clone copies the mutable tables. Flights are read-only and shared.
func (s *state) clone() *state {
	return &state{
		flights:      s.flights,
		users:        maps.Clone(s.users),
		reservations: maps.Clone(s.reservations),
		counter:      s.counter,
	}
}

type Store struct {
	mu        sync.RWMutex
	data      *state
	conflicts int
	commits   int
}

func New() *Store {
	return &Store{
		data: &state{
			flights:      make(map[int64]domain.Flight),
			users:        make(map[string]domain.User),
			reservations: make(map[int64]domain.Reservation),
		},
	}
}

// Repositories exposes the store through the repository contracts.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Tx:           s,
		Flights:      &flightRepo{s: s},
		Reservations: &reservationRepo{s: s},
		Users:        &userRepo{s: s},
		Maintenance:  s,
	}
}

// AddFlights loads reference data. Flights with an existing id are replaced.
func (s *Store) AddFlights(flights ...domain.Flight) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.data.flights)
	for _, f := range flights {
		next[f.ID] = f
	}
	s.data.flights = next
}

// InjectConflicts makes the next n commits fail with tx.ErrConflict.
func (s *Store) InjectConflicts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts += n
}

// Commits returns the number of successful commits.
func (s *Store) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

type txKey struct{}

// RunInTransaction implements tx.Manager.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*state); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, work)); err != nil {
		return err
	}

	if s.conflicts > 0 {
		s.conflicts--
		return fmt.Errorf("commit transaction: %w", tx.ErrConflict)
	}

	s.data = work
	s.commits++
	return nil
}

// ClearTables implements repository.Maintenance.
func (s *Store) ClearTables(ctx context.Context) error {
	return s.RunInTransaction(ctx, func(ctx context.Context) error {
		st := ctx.Value(txKey{}).(*state)
		clear(st.users)
		clear(st.reservations)
		st.counter = 0
		return nil
	})
}

// read runs fn against the transaction in ctx, or a consistent snapshot.
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if st, ok := ctx.Value(txKey{}).(*state); ok {
		return fn(st)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// write runs fn against the transaction in ctx, or in its own transaction.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if st, ok := ctx.Value(txKey{}).(*state); ok {
		return fn(st)
	}
	return s.RunInTransaction(ctx, func(ctx context.Context) error {
		return fn(ctx.Value(txKey{}).(*state))
	})
}

var (
	_ tx.Manager             = (*Store)(nil)
	_ repository.Maintenance = (*Store)(nil)
)
