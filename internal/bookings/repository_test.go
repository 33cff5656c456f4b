package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/mindfulu-platform/internal/booking"
)

var confirmedAt = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

func sampleRecord() Record {
	return Record{
		ID:                 "b-1",
		WizardID:           "wiz-1",
		StudentEmail:       "sam@example.edu",
		SessionDate:        booking.Date{Year: 2026, Month: time.October, Day: 20},
		SlotID:             "3",
		SlotTime:           "10:00 AM",
		CounselorName:      "Dr. Emily Rodriguez",
		Specialization:     "Depression & Mood",
		ContactName:        "Sam Lee",
		ContactEmail:       "sam@example.edu",
		Urgency:            booking.UrgencyHigh,
		PreviousCounseling: booking.HistoryNone,
		ConfirmedAt:        confirmedAt,
	}
}

func TestRepositoryInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithQuerier(mock)
	rec := sampleRecord()

	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(rec.ID, rec.WizardID, rec.StudentEmail, rec.SessionDate.In(time.UTC), rec.SlotID, rec.SlotTime,
			rec.CounselorName, rec.Specialization, rec.ContactName, rec.ContactEmail,
			rec.ContactPhone, rec.Reason, "high", "none", rec.ConfirmedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Insert(context.Background(), rec))

	mock.ExpectExec("INSERT INTO bookings").WillReturnError(errors.New("connection reset"))
	err = repo.Insert(context.Background(), rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bookings: insert")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCountByUrgency(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithQuerier(mock)
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(pgxmock.NewRows([]string{"urgency", "count"}).
			AddRow("high", int64(2)).
			AddRow("unspecified", int64(5)))

	counts, err := repo.CountByUrgency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"high": 2, "unspecified": 5}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListRecent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithQuerier(mock)
	rec := sampleRecord()
	cols := []string{"id", "wizard_id", "student_email", "session_date", "slot_id", "slot_time",
		"counselor_name", "specialization", "contact_name", "contact_email",
		"contact_phone", "reason", "urgency", "previous_counseling", "confirmed_at"}
	mock.ExpectQuery("SELECT id, wizard_id").WithArgs(20).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			rec.ID, rec.WizardID, rec.StudentEmail, rec.SessionDate.In(time.UTC), rec.SlotID, rec.SlotTime,
			rec.CounselorName, rec.Specialization, rec.ContactName, rec.ContactEmail,
			rec.ContactPhone, rec.Reason, "high", "none", rec.ConfirmedAt,
		))

	got, err := repo.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec, got[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	older := sampleRecord()
	newer := sampleRecord()
	newer.ID = "b-2"
	newer.Urgency = ""
	newer.ConfirmedAt = confirmedAt.Add(time.Hour)
	require.NoError(t, repo.Insert(ctx, older))
	require.NoError(t, repo.Insert(ctx, newer))

	counts, err := repo.CountByUrgency(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"high": 1, UnspecifiedUrgency: 1}, counts)

	recent, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "b-2", recent[0].ID)
}
