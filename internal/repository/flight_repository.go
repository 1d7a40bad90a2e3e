package repository

import (
	"context"
	"fmt"
	"time"

	"flight_board/internal/models"
	sq "github.com/Masterminds/squirrel"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	TableArrivals   = "arrivals"
	TableDepartures = "departures"
)

// rows per INSERT statement; keeps the parameter count under the
// PostgreSQL limit of 65535.
const insertBatchSize = 500

var arrivalColumns = []string{
	"flight",
	"operational_status",
	"stoa",
	"flight_type",
	"flight_mode",
	"number_of_passenger",
	"etoa",
	"arrival_belt_no",
	"psta",
	"airline",
	"origin",
}

var departureColumns = []string{
	"flight",
	"operational_status",
	"stod",
	"flight_type",
	"flight_mode",
	"number_of_passenger",
	"etod",
	"dep_boarding_gate_no",
	"pstd",
	"airline",
	"destination",
}

// FlightRepository reads and writes the arrivals and departures tables.
// Timestamps are stored as timestamptz and come back as UTC instants.
type FlightRepository struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewFlightRepository(db *pgxpool.Pool) *FlightRepository {
	return &FlightRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ArrivalsBetween returns arrivals whose etoa lies in [from, to].
func (r *FlightRepository) ArrivalsBetween(ctx context.Context, from, to time.Time) ([]models.ArrivalRow, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range: %s after %s", from, to)
	}

	sqlStr, args, err := r.rangeQuery(TableArrivals, "etoa", arrivalColumns, from, to)
	if err != nil {
		return nil, fmt.Errorf("build arrivals sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query arrivals: %w", err)
	}
	defer rows.Close()

	res := make([]models.ArrivalRow, 0, 64)
	for rows.Next() {
		var (
			a               models.ArrivalRow
			stoa, etoa      pgtype.Timestamptz
			belt, psta      pgtype.Text
			airline, origin pgtype.Text
			passengers      pgtype.Int4
		)
		if err := rows.Scan(
			&a.Flight,
			&a.OperationalStatus,
			&stoa,
			&a.FlightType,
			&a.FlightMode,
			&passengers,
			&etoa,
			&belt,
			&psta,
			&airline,
			&origin,
		); err != nil {
			return nil, fmt.Errorf("scan arrival row: %w", err)
		}

		a.STOA = timestamptzPtr(stoa)
		a.ETOA = timestamptzPtr(etoa)
		a.NumberOfPassenger = int(passengers.Int32)
		a.ArrivalBeltNo = textPtr(belt)
		a.PSTA = textPtr(psta)
		a.Airline = textPtr(airline)
		a.Origin = textPtr(origin)

		res = append(res, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate arrival rows: %w", err)
	}

	return res, nil
}

// DeparturesBetween returns departures whose etod lies in [from, to].
func (r *FlightRepository) DeparturesBetween(ctx context.Context, from, to time.Time) ([]models.DepartureRow, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range: %s after %s", from, to)
	}

	sqlStr, args, err := r.rangeQuery(TableDepartures, "etod", departureColumns, from, to)
	if err != nil {
		return nil, fmt.Errorf("build departures sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query departures: %w", err)
	}
	defer rows.Close()

	res := make([]models.DepartureRow, 0, 64)
	for rows.Next() {
		var (
			d                    models.DepartureRow
			stod, etod           pgtype.Timestamptz
			gate, pstd           pgtype.Text
			airline, destination pgtype.Text
			passengers           pgtype.Int4
		)
		if err := rows.Scan(
			&d.Flight,
			&d.OperationalStatus,
			&stod,
			&d.FlightType,
			&d.FlightMode,
			&passengers,
			&etod,
			&gate,
			&pstd,
			&airline,
			&destination,
		); err != nil {
			return nil, fmt.Errorf("scan departure row: %w", err)
		}

		d.STOD = timestamptzPtr(stod)
		d.ETOD = timestamptzPtr(etod)
		d.NumberOfPassenger = int(passengers.Int32)
		d.DepBoardingGateNo = textPtr(gate)
		d.PSTD = textPtr(pstd)
		d.Airline = textPtr(airline)
		d.Destination = textPtr(destination)

		res = append(res, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate departure rows: %w", err)
	}

	return res, nil
}

// rangeQuery selects cols from table where column is within [from, to].
func (r *FlightRepository) rangeQuery(table, column string, cols []string, from, to time.Time) (string, []any, error) {
	return r.sb.
		Select(cols...).
		From(table).
		Where(sq.And{
			sq.GtOrEq{column: from.UTC()},
			sq.LtOrEq{column: to.UTC()},
		}).
		ToSql()
}

// Each table has a unique key on (flight, scheduled time). A redelivered or
// revised movement updates the existing row instead of adding a second one.
const arrivalsConflict = `ON CONFLICT (flight, stoa) DO UPDATE SET
	operational_status = EXCLUDED.operational_status,
	flight_mode = EXCLUDED.flight_mode,
	number_of_passenger = EXCLUDED.number_of_passenger,
	etoa = EXCLUDED.etoa,
	arrival_belt_no = EXCLUDED.arrival_belt_no,
	psta = EXCLUDED.psta,
	airline = EXCLUDED.airline,
	origin = EXCLUDED.origin,
	updated_at = NOW()`

const departuresConflict = `ON CONFLICT (flight, stod) DO UPDATE SET
	operational_status = EXCLUDED.operational_status,
	flight_mode = EXCLUDED.flight_mode,
	number_of_passenger = EXCLUDED.number_of_passenger,
	etod = EXCLUDED.etod,
	dep_boarding_gate_no = EXCLUDED.dep_boarding_gate_no,
	pstd = EXCLUDED.pstd,
	airline = EXCLUDED.airline,
	destination = EXCLUDED.destination,
	updated_at = NOW()`

type flightKey struct {
	flight    string
	scheduled int64
}

// UpsertArrivals writes rows in one transaction, batching the statements.
func (r *FlightRepository) UpsertArrivals(ctx context.Context, rows []models.ArrivalRow) error {
	rows, err := latestArrivals(rows)
	if err != nil || len(rows) == 0 {
		return err
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for start := 0; start < len(rows); start += insertBatchSize {
			end := min(start+insertBatchSize, len(rows))

			sqlStr, args, err := r.upsertArrivalsQuery(rows[start:end])
			if err != nil {
				return fmt.Errorf("build upsert arrivals sql: %w", err)
			}
			if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
				return fmt.Errorf("upsert arrivals: %w", err)
			}
		}
		return nil
	})
}

// UpsertDepartures writes rows in one transaction, batching the statements.
func (r *FlightRepository) UpsertDepartures(ctx context.Context, rows []models.DepartureRow) error {
	rows, err := latestDepartures(rows)
	if err != nil || len(rows) == 0 {
		return err
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for start := 0; start < len(rows); start += insertBatchSize {
			end := min(start+insertBatchSize, len(rows))

			sqlStr, args, err := r.upsertDeparturesQuery(rows[start:end])
			if err != nil {
				return fmt.Errorf("build upsert departures sql: %w", err)
			}
			if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
				return fmt.Errorf("upsert departures: %w", err)
			}
		}
		return nil
	})
}

func (r *FlightRepository) upsertArrivalsQuery(rows []models.ArrivalRow) (string, []any, error) {
	q := r.sb.Insert(TableArrivals).Columns(arrivalColumns...)
	for _, a := range rows {
		q = q.Values(
			a.Flight,
			a.OperationalStatus,
			utcPtr(a.STOA),
			models.FlightTypeArrival,
			a.FlightMode,
			a.NumberOfPassenger,
			utcPtr(a.ETOA),
			a.ArrivalBeltNo,
			a.PSTA,
			a.Airline,
			a.Origin,
		)
	}
	return q.Suffix(arrivalsConflict).ToSql()
}

func (r *FlightRepository) upsertDeparturesQuery(rows []models.DepartureRow) (string, []any, error) {
	q := r.sb.Insert(TableDepartures).Columns(departureColumns...)
	for _, d := range rows {
		q = q.Values(
			d.Flight,
			d.OperationalStatus,
			utcPtr(d.STOD),
			models.FlightTypeDeparture,
			d.FlightMode,
			d.NumberOfPassenger,
			utcPtr(d.ETOD),
			d.DepBoardingGateNo,
			d.PSTD,
			d.Airline,
			d.Destination,
		)
	}
	return q.Suffix(departuresConflict).ToSql()
}

// latestArrivals keeps the last row per (flight, stoa). PostgreSQL rejects
// an upsert that touches the same row twice in one statement.
func latestArrivals(rows []models.ArrivalRow) ([]models.ArrivalRow, error) {
	out := make([]models.ArrivalRow, 0, len(rows))
	seen := make(map[flightKey]int, len(rows))
	for _, a := range rows {
		if a.Flight == "" {
			return nil, fmt.Errorf("arrival flight is empty")
		}
		if a.STOA == nil {
			return nil, fmt.Errorf("arrival %s has no stoa", a.Flight)
		}
		k := flightKey{a.Flight, a.STOA.UnixMicro()}
		if i, ok := seen[k]; ok {
			out[i] = a
			continue
		}
		seen[k] = len(out)
		out = append(out, a)
	}
	return out, nil
}

func latestDepartures(rows []models.DepartureRow) ([]models.DepartureRow, error) {
	out := make([]models.DepartureRow, 0, len(rows))
	seen := make(map[flightKey]int, len(rows))
	for _, d := range rows {
		if d.Flight == "" {
			return nil, fmt.Errorf("departure flight is empty")
		}
		if d.STOD == nil {
			return nil, fmt.Errorf("departure %s has no stod", d.Flight)
		}
		k := flightKey{d.Flight, d.STOD.UnixMicro()}
		if i, ok := seen[k]; ok {
			out[i] = d
			continue
		}
		seen[k] = len(out)
		out = append(out, d)
	}
	return out, nil
}

// CountByStatus returns the number of rows per operational_status.
func (r *FlightRepository) CountByStatus(ctx context.Context, table string) (map[string]int64, error) {
	if table != TableArrivals && table != TableDepartures {
		return nil, fmt.Errorf("unknown flight table %q", table)
	}

	sqlStr, args, err := r.sb.
		Select("operational_status", "COUNT(*)").
		From(table).
		GroupBy("operational_status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count %s sql: %w", table, err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", table, err)
	}
	defer rows.Close()

	res := make(map[string]int64)
	for rows.Next() {
		var (
			status string
			cnt    int64
		)
		if err := rows.Scan(&status, &cnt); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", table, err)
		}
		res[status] = cnt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s counts: %w", table, err)
	}

	return res, nil
}

func timestamptzPtr(v pgtype.Timestamptz) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

func textPtr(v pgtype.Text) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
