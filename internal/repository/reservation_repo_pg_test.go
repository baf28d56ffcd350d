package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"

	"github.com/Domenick1991/flightbooking/internal/tx"
)

func TestNewReservationRepository(t *testing.T) {
	repo := NewReservationRepository(NewPGTxManager(&pgxpool.Pool{}))
	assert.NotNil(t, repo)
}

func TestNewPGStore(t *testing.T) {
	store := NewPGStore(&pgxpool.Pool{})
	assert.NotNil(t, store.Tx)
	assert.NotNil(t, store.Flights)
	assert.NotNil(t, store.Reservations)
	assert.NotNil(t, store.Users)
	assert.NotNil(t, store.Maintenance)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		conflict bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", fmt.Errorf("commit transaction: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("connection reset"), false},
		{"already a conflict", tx.ErrConflict, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.Equal(t, tt.conflict, tx.IsConflict(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.NoError(t, classify(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(errors.New("other")))
}
