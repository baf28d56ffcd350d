package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/flightbooking/internal/tx"
)

// Store bundles the repositories that share one transaction manager.
type Store struct {
	Tx           tx.Manager
	Flights      FlightRepository
	Reservations ReservationRepository
	Users        UserRepository
	Maintenance  Maintenance
}

// NewPGStore builds a Store over a PostgreSQL pool.
func NewPGStore(pool *pgxpool.Pool) *Store {
	txm := NewPGTxManager(pool)
	return &Store{
		Tx:           txm,
		Flights:      NewFlightRepository(txm),
		Reservations: NewReservationRepository(txm),
		Users:        NewUserRepository(txm),
		Maintenance:  &pgMaintenance{txm: txm},
	}
}

type pgMaintenance struct {
	txm *PGTxManager
}

func (m *pgMaintenance) ClearTables(ctx context.Context) error {
	return m.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q := m.txm.Querier(ctx)
		for _, stmt := range []string{
			`DELETE FROM reservations`,
			`DELETE FROM users`,
			`DELETE FROM reservation_counter`,
			`INSERT INTO reservation_counter (current_id) VALUES (0)`,
		} {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("clear tables: %w", err)
			}
		}
		return nil
	})
}
