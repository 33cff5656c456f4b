package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfman30/mindfulu-platform/internal/booking"
)

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository stores bookings in Postgres.
type Repository struct {
	db rowQuerier
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &Repository{db: pool}
}

func newRepositoryWithQuerier(q rowQuerier) *Repository {
	if q == nil {
		panic("bookings: querier required")
	}
	return &Repository{db: q}
}

// Insert writes a confirmed booking.
func (r *Repository) Insert(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO bookings (
			id, wizard_id, student_email, session_date, slot_id, slot_time,
			counselor_name, specialization, contact_name, contact_email,
			contact_phone, reason, urgency, previous_counseling, confirmed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.WizardID, rec.StudentEmail, rec.SessionDate.In(time.UTC), rec.SlotID, rec.SlotTime,
		rec.CounselorName, rec.Specialization, rec.ContactName, rec.ContactEmail,
		rec.ContactPhone, rec.Reason, string(rec.Urgency), string(rec.PreviousCounseling), rec.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("bookings: insert: %w", err)
	}
	return nil
}

// CountByUrgency returns confirmed bookings grouped by urgency.
func (r *Repository) CountByUrgency(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT COALESCE(NULLIF(urgency, ''), 'unspecified') AS urgency, COUNT(*)
		FROM bookings
		GROUP BY 1
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("bookings: count by urgency: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var urgency string
		var count int64
		if err := rows.Scan(&urgency, &count); err != nil {
			return nil, fmt.Errorf("bookings: scan urgency count: %w", err)
		}
		out[urgency] = int(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: count by urgency: %w", err)
	}
	return out, nil
}

// ListRecent returns the newest bookings first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, wizard_id, student_email, session_date, slot_id, slot_time,
			counselor_name, specialization, contact_name, contact_email,
			contact_phone, reason, urgency, previous_counseling, confirmed_at
		FROM bookings
		ORDER BY confirmed_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("bookings: list recent: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec                 Record
			sessionDate         time.Time
			urgency, counseling string
		)
		if err := rows.Scan(
			&rec.ID, &rec.WizardID, &rec.StudentEmail, &sessionDate, &rec.SlotID, &rec.SlotTime,
			&rec.CounselorName, &rec.Specialization, &rec.ContactName, &rec.ContactEmail,
			&rec.ContactPhone, &rec.Reason, &urgency, &counseling, &rec.ConfirmedAt,
		); err != nil {
			return nil, fmt.Errorf("bookings: scan booking: %w", err)
		}
		rec.SessionDate = booking.DateOf(sessionDate)
		rec.Urgency = booking.Urgency(urgency)
		rec.PreviousCounseling = booking.CounselingHistory(counseling)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: list recent: %w", err)
	}
	return out, nil
}
