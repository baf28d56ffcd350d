package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

// ErrNegativeBalance mirrors the balance check constraint of the SQL schema.
var ErrNegativeBalance = errors.New("balance would become negative")

type flightRepo struct {
	s *Store
}

func (r *flightRepo) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	var out *domain.Flight
	err := r.s.read(ctx, func(st *state) error {
		f, ok := st.flights[id]
		if !ok {
			return domain.ErrFlightNotFound
		}
		out = &f
		return nil
	})
	return out, err
}

func (r *flightRepo) SearchDirect(ctx context.Context, q domain.SearchQuery, limit int) ([]domain.Flight, error) {
	var out []domain.Flight
	err := r.s.read(ctx, func(st *state) error {
		for _, f := range st.flights {
			if f.OriginCity == q.Origin && f.DestCity == q.Destination && f.DayOfMonth == q.DayOfMonth {
				out = append(out, f)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b domain.Flight) int {
		return cmp.Or(cmp.Compare(a.Duration, b.Duration), cmp.Compare(a.ID, b.ID))
	})
	return truncate(out, limit), nil
}

func (r *flightRepo) SearchOneStop(ctx context.Context, q domain.SearchQuery, limit int) ([]domain.Itinerary, error) {
	var out []domain.Itinerary
	err := r.s.read(ctx, func(st *state) error {
		for _, first := range st.flights {
			if first.OriginCity != q.Origin || first.DayOfMonth != q.DayOfMonth {
				continue
			}
			for _, second := range st.flights {
				if second.OriginCity == first.DestCity && second.DestCity == q.Destination &&
					second.DayOfMonth == first.DayOfMonth {
					out = append(out, domain.OneStop(first, second))
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b domain.Itinerary) int {
		return cmp.Or(
			cmp.Compare(a.Duration(), b.Duration()),
			cmp.Compare(a.First.ID, b.First.ID),
			cmp.Compare(a.Second.ID, b.Second.ID),
		)
	})
	return truncate(out, limit), nil
}

func truncate[T any](s []T, limit int) []T {
	if limit >= 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

type reservationRepo struct {
	s *Store
}

func (r *reservationRepo) CountByFlight(ctx context.Context, flightID int64) (int, error) {
	n := 0
	err := r.s.read(ctx, func(st *state) error {
		for _, res := range st.reservations {
			if slices.Contains(res.FlightIDs(), flightID) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *reservationRepo) CountOnDay(ctx context.Context, username string, dayOfMonth int) (int, error) {
	n := 0
	err := r.s.read(ctx, func(st *state) error {
		for _, res := range st.reservations {
			if res.Username != username {
				continue
			}
			if f, ok := st.flights[res.FirstFlightID]; ok && f.DayOfMonth == dayOfMonth {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *reservationRepo) ListByUser(ctx context.Context, username string) ([]domain.Reservation, error) {
	out := make([]domain.Reservation, 0)
	err := r.s.read(ctx, func(st *state) error {
		for _, res := range st.reservations {
			if res.Username == username {
				out = append(out, res)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b domain.Reservation) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

func (r *reservationRepo) GetForUser(ctx context.Context, id int64, username string) (*domain.Reservation, error) {
	var out *domain.Reservation
	err := r.s.read(ctx, func(st *state) error {
		res, ok := st.reservations[id]
		if !ok || res.Username != username {
			return domain.ErrReservationNotFound
		}
		out = &res
		return nil
	})
	return out, err
}

func (r *reservationRepo) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := r.s.write(ctx, func(st *state) error {
		st.counter++
		id = st.counter
		return nil
	})
	return id, err
}

func (r *reservationRepo) Create(ctx context.Context, res *domain.Reservation) error {
	return r.s.write(ctx, func(st *state) error {
		st.reservations[res.ID] = *res
		return nil
	})
}

func (r *reservationRepo) MarkPaid(ctx context.Context, id int64) error {
	return r.s.write(ctx, func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return domain.ErrReservationNotFound
		}
		res.Paid = true
		st.reservations[id] = res
		return nil
	})
}

func (r *reservationRepo) Delete(ctx context.Context, id int64) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.reservations[id]; !ok {
			return domain.ErrReservationNotFound
		}
		delete(st.reservations, id)
		return nil
	})
}

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.users[u.Username]; ok {
			return domain.ErrUserExists
		}
		st.users[u.Username] = *u
		return nil
	})
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var out *domain.User
	err := r.s.read(ctx, func(st *state) error {
		u, ok := st.users[username]
		if !ok {
			return domain.ErrUserNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) AdjustBalance(ctx context.Context, username string, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.s.write(ctx, func(st *state) error {
		u, ok := st.users[username]
		if !ok {
			return domain.ErrUserNotFound
		}
		next := u.Balance.Add(delta)
		if next.IsNegative() {
			return ErrNegativeBalance
		}
		u.Balance = next
		st.users[username] = u
		balance = u.Balance
		return nil
	})
	return balance, err
}

var (
	_ repository.FlightRepository      = (*flightRepo)(nil)
	_ repository.ReservationRepository = (*reservationRepo)(nil)
	_ repository.UserRepository        = (*userRepo)(nil)
)
