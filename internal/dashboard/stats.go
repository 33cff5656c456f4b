package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingStats summarizes confirmed bookings for a period.
type BookingStats struct {
	Total       int64  `json:"total"`
	Upcoming    int64  `json:"upcoming"`
	HighUrgency int64  `json:"high_urgency"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

type statsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StatsRepository aggregates booking figures in Postgres.
type StatsRepository struct {
	db statsDB
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	if pool == nil {
		panic("dashboard: pgx pool required for stats")
	}
	return &StatsRepository{db: pool}
}

// NewStatsRepositoryWithDB allows injecting a mock database for testing.
func NewStatsRepositoryWithDB(db statsDB) *StatsRepository {
	return &StatsRepository{db: db}
}

// BookingStats counts bookings confirmed in [start, end), or all time when
// either bound is nil. Upcoming counts sessions on or after today.
func (r *StatsRepository) BookingStats(ctx context.Context, today time.Time, start, end *time.Time) (*BookingStats, error) {
	stats := &BookingStats{}

	var timeFilter string
	var args []any
	if start != nil && end != nil {
		timeFilter = " AND confirmed_at >= $1 AND confirmed_at < $2"
		args = append(args, *start, *end)
		stats.PeriodStart = start.Format(time.RFC3339)
		stats.PeriodEnd = end.Format(time.RFC3339)
	} else {
		stats.PeriodStart = "all-time"
		stats.PeriodEnd = "now"
	}

	totalQuery := `SELECT COUNT(*) FROM bookings WHERE TRUE` + timeFilter
	if err := r.db.QueryRow(ctx, totalQuery, args...).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("dashboard stats: count bookings: %w", err)
	}

	upcomingArgs := append(append([]any(nil), args...), today)
	upcomingQuery := fmt.Sprintf(`SELECT COUNT(*) FROM bookings WHERE TRUE%s AND session_date >= $%d`, timeFilter, len(upcomingArgs))
	if err := r.db.QueryRow(ctx, upcomingQuery, upcomingArgs...).Scan(&stats.Upcoming); err != nil {
		return nil, fmt.Errorf("dashboard stats: count upcoming: %w", err)
	}

	highQuery := `SELECT COUNT(*) FROM bookings WHERE urgency = 'high'` + timeFilter
	if err := r.db.QueryRow(ctx, highQuery, args...).Scan(&stats.HighUrgency); err != nil {
		return nil, fmt.Errorf("dashboard stats: count high urgency: %w", err)
	}

	return stats, nil
}
