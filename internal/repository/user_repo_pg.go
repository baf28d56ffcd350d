package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

type PGUserRepository struct {
	txm *PGTxManager
}

func NewUserRepository(txm *PGTxManager) UserRepository {
	return &PGUserRepository{txm: txm}
}

func (r *PGUserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.txm.Querier(ctx).Exec(ctx,
		`INSERT INTO users (username, password, balance) VALUES ($1, $2, $3)`,
		u.Username, u.PasswordHash, u.Balance)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PGUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := pgxscan.Get(ctx, r.txm.Querier(ctx), &u,
		`SELECT username, password, balance FROM users WHERE username = $1`, username)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *PGUserRepository) AdjustBalance(ctx context.Context, username string, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.txm.Querier(ctx).QueryRow(ctx,
		`UPDATE users SET balance = balance + $1 WHERE username = $2 RETURNING balance`,
		delta, username).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("adjust balance: %w", err)
	}
	return balance, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
