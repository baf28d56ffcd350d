package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

var reservationColumns = []string{"id", "username", "fid1", "fid2", "paid"}

type PGReservationRepository struct {
	txm     *PGTxManager
	builder squirrel.StatementBuilderType
}

func NewReservationRepository(txm *PGTxManager) ReservationRepository {
	return &PGReservationRepository{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *PGReservationRepository) CountByFlight(ctx context.Context, flightID int64) (int, error) {
	query, args, err := r.builder.Select("COUNT(*)").
		From("reservations").
		Where(squirrel.Or{squirrel.Eq{"fid1": flightID}, squirrel.Eq{"fid2": flightID}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := r.txm.Querier(ctx).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reservations for flight %d: %w", flightID, err)
	}
	return n, nil
}

func (r *PGReservationRepository) CountOnDay(ctx context.Context, username string, dayOfMonth int) (int, error) {
	query, args, err := r.builder.Select("COUNT(*)").
		From("reservations r").
		Join("flights f ON f.fid = r.fid1").
		Where(squirrel.Eq{"r.username": username, "f.day_of_month": dayOfMonth}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build day query: %w", err)
	}

	var n int
	if err := r.txm.Querier(ctx).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reservations on day %d: %w", dayOfMonth, err)
	}
	return n, nil
}

func (r *PGReservationRepository) ListByUser(ctx context.Context, username string) ([]domain.Reservation, error) {
	query, args, err := r.builder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"username": username}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	reservations := make([]domain.Reservation, 0)
	if err := pgxscan.Select(ctx, r.txm.Querier(ctx), &reservations, query, args...); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return reservations, nil
}

func (r *PGReservationRepository) GetForUser(ctx context.Context, id int64, username string) (*domain.Reservation, error) {
	query, args, err := r.builder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"id": id, "username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reservation query: %w", err)
	}

	var res domain.Reservation
	if err := pgxscan.Get(ctx, r.txm.Querier(ctx), &res, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation %d: %w", id, err)
	}
	return &res, nil
}

func (r *PGReservationRepository) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := r.txm.Querier(ctx).QueryRow(ctx,
		`UPDATE reservation_counter SET current_id = current_id + 1 RETURNING current_id`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next reservation id: %w", err)
	}
	return id, nil
}

func (r *PGReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	query, args, err := r.builder.Insert("reservations").
		Columns(reservationColumns...).
		Values(res.ID, res.Username, res.FirstFlightID, res.SecondFlightID, res.Paid).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.Querier(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert reservation %d: %w", res.ID, err)
	}
	return nil
}

func (r *PGReservationRepository) MarkPaid(ctx context.Context, id int64) error {
	cmd, err := r.txm.Querier(ctx).Exec(ctx, `UPDATE reservations SET paid = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark reservation %d paid: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *PGReservationRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.txm.Querier(ctx).Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reservation %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
