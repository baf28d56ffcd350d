package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/repository/memory"
	"github.com/Domenick1991/flightbooking/internal/tx"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

type fixture struct {
	store   *memory.Store
	repos   *repository.Store
	service *PaymentService
}

func newFixture(t *testing.T, balance string) *fixture {
	t.Helper()
	store := memory.New()
	store.AddFlights(
		domain.Flight{ID: 1, DayOfMonth: 3, OriginCity: "A", DestCity: "B", Duration: 60, Capacity: 5, Price: decimal.RequireFromString("120.25")},
		domain.Flight{ID: 2, DayOfMonth: 3, OriginCity: "B", DestCity: "C", Duration: 70, Capacity: 5, Price: decimal.RequireFromString("79.50")},
	)
	repos := store.Repositories()
	ctx := context.Background()

	require.NoError(t, repos.Users.Create(ctx, &domain.User{Username: "alice", Balance: decimal.RequireFromString(balance)}))
	require.NoError(t, repos.Users.Create(ctx, &domain.User{Username: "bob", Balance: decimal.NewFromInt(1000)}))

	second := int64(2)
	require.NoError(t, repos.Reservations.Create(ctx, &domain.Reservation{ID: 1, Username: "alice", FirstFlightID: 1, SecondFlightID: &second}))
	require.NoError(t, repos.Reservations.Create(ctx, &domain.Reservation{ID: 2, Username: "bob", FirstFlightID: 1}))

	txc := tx.NewController(repos.Tx, tx.DefaultPolicy(), tx.WithLogger(logger.Nop()),
		tx.WithSleep(func(context.Context, time.Duration) error { return nil }))
	return &fixture{
		store:   store,
		repos:   repos,
		service: NewPaymentService(repos.Flights, repos.Reservations, repos.Users, txc),
	}
}

func (f *fixture) balance(t *testing.T, username string) decimal.Decimal {
	t.Helper()
	u, err := f.repos.Users.GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return u.Balance
}

func TestPaymentService_PayThenCancelRestoresBalance(t *testing.T) {
	f := newFixture(t, "500")
	ctx := context.Background()

	remaining, err := f.service.Pay(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Equal(t, "300.25", remaining.StringFixed(2))

	res, err := f.repos.Reservations.GetForUser(ctx, 1, "alice")
	require.NoError(t, err)
	assert.True(t, res.Paid)

	require.NoError(t, f.service.Cancel(ctx, "alice", 1))
	assert.True(t, f.balance(t, "alice").Equal(decimal.NewFromInt(500)))

	_, err = f.repos.Reservations.GetForUser(ctx, 1, "alice")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestPaymentService_Pay_InsufficientFunds(t *testing.T) {
	f := newFixture(t, "150")

	_, err := f.service.Pay(context.Background(), "alice", 1)

	var funds *domain.InsufficientFundsError
	require.True(t, errors.As(err, &funds))
	assert.Equal(t, "150.00", funds.Balance.StringFixed(2))
	assert.Equal(t, "199.75", funds.Cost.String())
	assert.True(t, f.balance(t, "alice").Equal(decimal.NewFromInt(150)))

	res, err := f.repos.Reservations.GetForUser(context.Background(), 1, "alice")
	require.NoError(t, err)
	assert.False(t, res.Paid)
}

func TestPaymentService_Pay_ExactBalance(t *testing.T) {
	f := newFixture(t, "199.75")

	remaining, err := f.service.Pay(context.Background(), "alice", 1)

	require.NoError(t, err)
	assert.True(t, remaining.IsZero())
}

func TestPaymentService_Pay_NotFound(t *testing.T) {
	f := newFixture(t, "500")
	ctx := context.Background()

	_, err := f.service.Pay(ctx, "alice", 99)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)

	_, err = f.service.Pay(ctx, "alice", 2)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)

	_, err = f.service.Pay(ctx, "alice", 1)
	require.NoError(t, err)
	_, err = f.service.Pay(ctx, "alice", 1)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestPaymentService_Cancel_Unpaid(t *testing.T) {
	f := newFixture(t, "500")
	ctx := context.Background()

	require.NoError(t, f.service.Cancel(ctx, "bob", 2))
	assert.True(t, f.balance(t, "bob").Equal(decimal.NewFromInt(1000)))
}

func TestPaymentService_Cancel_ForeignReservation(t *testing.T) {
	f := newFixture(t, "500")
	ctx := context.Background()

	err := f.service.Cancel(ctx, "alice", 2)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)

	_, err = f.repos.Reservations.GetForUser(ctx, 2, "bob")
	assert.NoError(t, err)
}

func TestPaymentService_Pay_ReplaysAfterConflict(t *testing.T) {
	f := newFixture(t, "500")
	f.store.InjectConflicts(2)

	remaining, err := f.service.Pay(context.Background(), "alice", 1)

	require.NoError(t, err)
	assert.Equal(t, "300.25", remaining.StringFixed(2))
	assert.True(t, f.balance(t, "alice").Equal(decimal.RequireFromString("300.25")))
}
