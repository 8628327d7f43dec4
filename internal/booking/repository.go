package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/sport-hall-booking/internal/db"
	"github.com/nekogravitycat/sport-hall-booking/internal/pkg/apperror"
)

var bookingColumns = []string{
	"id", "user_id", "resource_id", "sport_id", "date", "time_slot_id",
	"purpose", "status", "created_at", "decided_at", "decided_by",
}

var sortColumns = map[string]string{
	"created_at": "created_at",
	"date":       "date",
	"status":     "status",
}

type pgxLedger struct {
	pool *pgxpool.Pool
}

// NewPgxLedger returns a Ledger backed by PostgreSQL. The partial unique index
// bookings_active_slot_uniq is what makes Append safe across processes.
func NewPgxLedger(pool *pgxpool.Pool) Ledger {
	return &pgxLedger{pool: pool}
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.UserID, &b.ResourceID, &b.SportID, &b.Date, &b.TimeSlotID,
		&b.Purpose, &b.Status, &b.CreatedAt, &b.DecidedAt, &b.DecidedBy,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	b.Date = NormalizeDate(b.Date)
	return &b, nil
}

func (r *pgxLedger) Append(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("user_id", "resource_id", "sport_id", "date", "time_slot_id", "purpose", "status").
		Values(b.UserID, b.ResourceID, b.SportID, b.Date, b.TimeSlotID, b.Purpose, StatusPending).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build append booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return apperror.WrapAs(err, ErrDuplicateKey)
		}
		return db.Classify(fmt.Errorf("append booking failed: %w", err))
	}
	b.Status = StatusPending
	return nil
}

func (r *pgxLedger) Transition(ctx context.Context, id string, to Status, adminID string, at time.Time) (*Booking, []*Booking, error) {
	if to != StatusConfirmed && to != StatusRejected {
		return nil, nil, ErrInvalidTransition
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, db.Classify(fmt.Errorf("begin transition failed: %w", err))
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("status", to).
		Set("decided_at", at).
		Set("decided_by", adminID).
		Where(squirrel.Eq{"id": id, "status": StatusPending}).
		Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build transition query failed: %w", err)
	}

	b, err := scanBooking(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, db.Classify(fmt.Errorf("transition booking failed: %w", err))
		}
		// Nothing updated: either the id is unknown or the booking is terminal.
		var exists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM public.bookings WHERE id = $1)", id).Scan(&exists); err != nil {
			return nil, nil, db.Classify(fmt.Errorf("check booking failed: %w", err))
		}
		if !exists {
			return nil, nil, ErrNotFound
		}
		return nil, nil, ErrInvalidTransition
	}

	var siblings []*Booking
	if to == StatusConfirmed {
		query, args, err := psql.Update("public.bookings").
			Set("status", StatusRejected).
			Set("decided_at", at).
			Set("decided_by", adminID).
			Where(squirrel.Eq{
				"resource_id":  b.ResourceID,
				"date":         b.Date,
				"time_slot_id": b.TimeSlotID,
				"status":       StatusPending,
			}).
			Where(squirrel.NotEq{"id": b.ID}).
			Suffix("RETURNING " + strings.Join(bookingColumns, ", ")).
			ToSql()
		if err != nil {
			return nil, nil, fmt.Errorf("build reject siblings query failed: %w", err)
		}
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return nil, nil, db.Classify(fmt.Errorf("reject sibling bookings failed: %w", err))
		}
		for rows.Next() {
			sib, err := scanBooking(rows)
			if err != nil {
				rows.Close()
				return nil, nil, fmt.Errorf("scan sibling booking failed: %w", err)
			}
			siblings = append(siblings, sib)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, nil, db.Classify(fmt.Errorf("reject sibling bookings failed: %w", err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, db.Classify(fmt.Errorf("commit transition failed: %w", err))
	}
	return b, siblings, nil
}

func (r *pgxLedger) GetByID(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, db.Classify(fmt.Errorf("get booking failed: %w", err))
	}
	return b, nil
}

func (r *pgxLedger) Query(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	if filter.ResourceIDs != nil && len(filter.ResourceIDs) == 0 {
		return nil, 0, nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(bookingColumns[:len(bookingColumns):len(bookingColumns)], "count(*) OVER() AS total_count")...).
		From("public.bookings")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}
	if filter.ResourceID != "" {
		query = query.Where(squirrel.Eq{"resource_id": filter.ResourceID})
	}
	if filter.ResourceIDs != nil {
		query = query.Where(squirrel.Eq{"resource_id": filter.ResourceIDs})
	}
	if filter.Date != nil {
		query = query.Where(squirrel.Eq{"date": NormalizeDate(*filter.Date)})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	if filter.After != nil {
		if !filter.After.IsZero() {
			query = query.Where("(created_at, id) > (?, ?)", filter.After.CreatedAt, filter.After.ID)
		}
		query = query.
			OrderBy("created_at ASC", "id ASC").
			Limit(uint64(filter.PageSize))
	} else {
		orderBy, ok := sortColumns[filter.SortBy]
		if !ok {
			orderBy = "created_at"
		}
		orderDir := "DESC"
		if strings.EqualFold(filter.SortOrder, "asc") {
			orderDir = "ASC"
		}
		if filter.Page < 1 {
			filter.Page = 1
		}
		offset := (filter.Page - 1) * filter.PageSize

		query = query.
			OrderBy(orderBy+" "+orderDir, "id "+orderDir).
			Limit(uint64(filter.PageSize)).
			Offset(uint64(offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query bookings failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, db.Classify(fmt.Errorf("query bookings failed: %w", err))
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.Classify(fmt.Errorf("iterate bookings failed: %w", err))
	}
	return bookings, total, nil
}

func (r *pgxLedger) ActiveOnDay(ctx context.Context, resourceID string, date time.Time) ([]*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{
			"resource_id": resourceID,
			"date":        NormalizeDate(date),
			"status":      []Status{StatusPending, StatusConfirmed},
		}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Classify(fmt.Errorf("query active bookings failed: %w", err))
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify(fmt.Errorf("iterate active bookings failed: %w", err))
	}
	return bookings, nil
}
