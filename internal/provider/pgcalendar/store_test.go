package pgcalendar

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider"
)

func newStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, logger.NewNoOpLogger()), mock
}

func TestCreateEvent(t *testing.T) {
	store, mock := newStore(t)

	start := time.Date(2030, 5, 1, 14, 0, 0, 0, time.UTC)
	ev := provider.Event{
		Title:     "Lunch with Amy",
		Location:  "TBD",
		Start:     start,
		End:       start.Add(time.Hour),
		Attendees: []string{"Amy", "Bo"},
	}

	mock.ExpectExec(`INSERT INTO events`).
		WithArgs(sqlmock.AnyArg(), ev.Title, ev.Location, ev.Start, ev.End, "Amy,Bo").
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := store.CreateEvent(context.Background(), ev)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEvent_ByTitle(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec(`DELETE FROM events WHERE lower\(title\) = lower\(\$1\)`).
		WithArgs("Lunch with Amy").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.DeleteEvent(context.Background(), provider.EventRef{Title: "Lunch with Amy"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEvent_ByStartTime(t *testing.T) {
	store, mock := newStore(t)

	start := time.Date(2030, 5, 1, 14, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM events WHERE start_time = \$1`).
		WithArgs(start).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.DeleteEvent(context.Background(), provider.EventRef{Start: start})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEvent_NotFound(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec(`DELETE FROM events`).
		WithArgs("No Such Event").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteEvent(context.Background(), provider.EventRef{Title: "No Such Event"})
	assert.ErrorIs(t, err, provider.ErrEventNotFound)
}

func TestIsAvailable(t *testing.T) {
	start := time.Date(2030, 5, 1, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name      string
		conflicts int
		want      bool
	}{
		{name: "open slot", conflicts: 0, want: true},
		{name: "conflicting event", conflicts: 2, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newStore(t)

			mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events`).
				WithArgs(start, end).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.conflicts))

			available, err := store.IsAvailable(context.Background(), start, end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, available)
		})
	}
}

func TestIsAvailable_PastStart(t *testing.T) {
	store, _ := newStore(t)

	start := time.Date(2020, 5, 1, 14, 0, 0, 0, time.UTC)
	available, err := store.IsAvailable(context.Background(), start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, available)
}

func TestUpdateEvent_NotSupported(t *testing.T) {
	store, _ := newStore(t)

	err := store.UpdateEvent(context.Background(), provider.Event{Title: "Lunch"})
	assert.ErrorIs(t, err, provider.ErrNotSupported)
}
