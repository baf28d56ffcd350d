package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/tx"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

type UserUseCase interface {
	CreateCustomer(ctx context.Context, username, password string, balance decimal.Decimal) error
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

type UserService struct {
	users    repository.UserRepository
	txc      *tx.Controller
	hashCost int
}

type UserServiceOption func(*UserService)

// WithHashCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) UserServiceOption {
	return func(s *UserService) {
		s.hashCost = cost
	}
}

func NewUserService(users repository.UserRepository, txc *tx.Controller, opts ...UserServiceOption) *UserService {
	s := &UserService{
		users:    users,
		txc:      txc,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCustomer registers a user with an initial balance.
// Usernames and passwords longer than 20 characters and negative balances
// are rejected with ErrInvalidUser; a taken name with ErrUserExists.
func (s *UserService) CreateCustomer(ctx context.Context, username, password string, balance decimal.Decimal) error {
	if username == "" || len([]rune(username)) > domain.MaxUsernameLength {
		return domain.ErrInvalidUser
	}
	if password == "" || len([]rune(password)) > domain.MaxPasswordLength {
		return domain.ErrInvalidUser
	}
	if balance.IsNegative() {
		return domain.ErrInvalidUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Username: username, PasswordHash: string(hash), Balance: balance}
	err = s.txc.Do(ctx, "create_customer", func(ctx context.Context) error {
		return s.users.Create(ctx, user)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "customer created", "username", username)
	return nil
}

// Authenticate checks the password against the stored hash. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

var _ UserUseCase = (*UserService)(nil)
