package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

var flightColumns = []string{
	"fid", "year", "month_id", "day_of_month", "carrier_id", "flight_num",
	"origin_city", "dest_city", "actual_time", "capacity", "price",
}

type PGFlightRepository struct {
	txm     *PGTxManager
	builder squirrel.StatementBuilderType
}

func NewFlightRepository(txm *PGTxManager) FlightRepository {
	return &PGFlightRepository{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	query, args, err := r.builder.Select(flightColumns...).
		From("flights").
		Where(squirrel.Eq{"fid": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build flight query: %w", err)
	}

	var f domain.Flight
	if err := pgxscan.Get(ctx, r.txm.Querier(ctx), &f, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, fmt.Errorf("get flight %d: %w", id, err)
	}
	return &f, nil
}

func (r *PGFlightRepository) SearchDirect(ctx context.Context, q domain.SearchQuery, limit int) ([]domain.Flight, error) {
	query, args, err := r.directQuery(q, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build direct search: %w", err)
	}

	flights := make([]domain.Flight, 0)
	if err := pgxscan.Select(ctx, r.txm.Querier(ctx), &flights, query, args...); err != nil {
		return nil, fmt.Errorf("direct search: %w", err)
	}
	return flights, nil
}

// oneStopRow maps "f1.<col>" and "f2.<col>" aliases onto two flights.
type oneStopRow struct {
	First  domain.Flight `db:"f1"`
	Second domain.Flight `db:"f2"`
}

func (r *PGFlightRepository) SearchOneStop(ctx context.Context, q domain.SearchQuery, limit int) ([]domain.Itinerary, error) {
	query, args, err := r.oneStopQuery(q, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build one-stop search: %w", err)
	}

	var rows []oneStopRow
	if err := pgxscan.Select(ctx, r.txm.Querier(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("one-stop search: %w", err)
	}

	itineraries := make([]domain.Itinerary, 0, len(rows))
	for _, row := range rows {
		itineraries = append(itineraries, domain.OneStop(row.First, row.Second))
	}
	return itineraries, nil
}

func (r *PGFlightRepository) directQuery(q domain.SearchQuery, limit int) squirrel.SelectBuilder {
	return r.builder.Select(flightColumns...).
		From("flights").
		Where(squirrel.Eq{
			"origin_city":  q.Origin,
			"dest_city":    q.Destination,
			"day_of_month": q.DayOfMonth,
		}).
		Where(squirrel.NotEq{"actual_time": nil}).
		OrderBy("actual_time ASC", "fid ASC").
		Limit(uint64(limit))
}

func (r *PGFlightRepository) oneStopQuery(q domain.SearchQuery, limit int) squirrel.SelectBuilder {
	columns := make([]string, 0, 2*len(flightColumns))
	for _, alias := range []string{"f1", "f2"} {
		for _, c := range flightColumns {
			columns = append(columns, fmt.Sprintf(`%s.%s AS "%s.%s"`, alias, c, alias, c))
		}
	}

	return r.builder.Select(columns...).
		From("flights f1").
		Join("flights f2 ON f2.origin_city = f1.dest_city AND f2.day_of_month = f1.day_of_month").
		Where(squirrel.Eq{
			"f1.origin_city":  q.Origin,
			"f2.dest_city":    q.Destination,
			"f1.day_of_month": q.DayOfMonth,
		}).
		Where(squirrel.NotEq{"f1.actual_time": nil, "f2.actual_time": nil}).
		OrderBy("f1.actual_time + f2.actual_time ASC", "f1.fid ASC", "f2.fid ASC").
		Limit(uint64(limit))
}

var _ FlightRepository = (*PGFlightRepository)(nil)
