package timeslot

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/sport-hall-booking/internal/db"
)

type Repository interface {
	Create(ctx context.Context, s *TimeSlot) error
	GetByID(ctx context.Context, id string) (*TimeSlot, error)
	// List returns the whole catalog ordered by start time.
	List(ctx context.Context) ([]*TimeSlot, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, s *TimeSlot) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.time_slots").
		Columns("start_time", "end_time").
		Values(s.Start, s.End).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create time slot query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		return db.Classify(fmt.Errorf("create time slot failed: %w", err))
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*TimeSlot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	// We cast TIME to ::text to scan into string easily.
	query, args, err := psql.Select("id", "start_time::text", "end_time::text", "created_at").
		From("public.time_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get time slot query failed: %w", err)
	}

	var s TimeSlot
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.Start, &s.End, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, db.Classify(fmt.Errorf("get time slot failed: %w", err))
	}
	return normalize(&s)
}

func (r *pgxRepository) List(ctx context.Context) ([]*TimeSlot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "start_time::text", "end_time::text", "created_at").
		From("public.time_slots").
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list time slots query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Classify(fmt.Errorf("list time slots failed: %w", err))
	}
	defer rows.Close()

	var result []*TimeSlot
	for rows.Next() {
		var s TimeSlot
		if err := rows.Scan(&s.ID, &s.Start, &s.End, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan time slot failed: %w", err)
		}
		ns, err := normalize(&s)
		if err != nil {
			return nil, err
		}
		result = append(result, ns)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify(fmt.Errorf("iterate time slots failed: %w", err))
	}
	return result, nil
}

func normalize(s *TimeSlot) (*TimeSlot, error) {
	var err error
	if s.Start, err = NormalizeClock(s.Start); err != nil {
		return nil, err
	}
	if s.End, err = NormalizeClock(s.End); err != nil {
		return nil, err
	}
	return s, nil
}
