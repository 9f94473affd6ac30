// Package pgcalendar implements the calendar capability on a
// PostgreSQL events table, for deployments without Google Calendar
// access.
package pgcalendar

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	commonErrors "github.com/johnny-stegall/Digital-Assistant/internal/common/errors"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/metrics"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider"
)

var timeNow = time.Now

// Store persists events in the events table. The schema:
//
//	CREATE TABLE events (
//	    id         UUID PRIMARY KEY,
//	    title      TEXT NOT NULL,
//	    location   TEXT NOT NULL DEFAULT '',
//	    start_time TIMESTAMPTZ NOT NULL,
//	    end_time   TIMESTAMPTZ NOT NULL,
//	    attendees  TEXT NOT NULL DEFAULT ''
//	);
type Store struct {
	db  *sql.DB
	log logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, log: log}
}

// CreateEvent inserts ev and returns the generated event ID.
func (s *Store) CreateEvent(ctx context.Context, ev provider.Event) (string, error) {
	metrics.ProviderCalls.WithLabelValues("postgres", "create_event").Inc()

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, title, location, start_time, end_time, attendees)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, ev.Title, ev.Location, ev.Start, ev.End, strings.Join(ev.Attendees, ","))
	if err != nil {
		return "", commonErrors.NewProviderFailure("postgres", err)
	}
	return id, nil
}

// DeleteEvent removes the event matching ref. Title references match
// case-insensitively.
func (s *Store) DeleteEvent(ctx context.Context, ref provider.EventRef) error {
	metrics.ProviderCalls.WithLabelValues("postgres", "delete_event").Inc()

	var (
		result sql.Result
		err    error
	)
	if ref.ByTitle() {
		result, err = s.db.ExecContext(ctx,
			`DELETE FROM events WHERE lower(title) = lower($1)`, ref.Title)
	} else {
		result, err = s.db.ExecContext(ctx,
			`DELETE FROM events WHERE start_time = $1`, ref.Start)
	}
	if err != nil {
		return commonErrors.NewProviderFailure("postgres", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return commonErrors.NewProviderFailure("postgres", err)
	}
	if affected == 0 {
		return provider.ErrEventNotFound
	}
	return nil
}

// IsAvailable reports whether no stored event overlaps the span.
// Spans in the past are never available.
func (s *Store) IsAvailable(ctx context.Context, start, end time.Time) (bool, error) {
	metrics.ProviderCalls.WithLabelValues("postgres", "is_available").Inc()

	if start.Before(timeNow()) {
		return false, nil
	}

	var conflicts int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE start_time < $2 AND end_time > $1`,
		start, end).Scan(&conflicts)
	if err != nil {
		return false, commonErrors.NewProviderFailure("postgres", err)
	}
	return conflicts == 0, nil
}

// UpdateEvent is not implemented by this backend.
func (s *Store) UpdateEvent(ctx context.Context, ev provider.Event) error {
	return provider.ErrNotSupported
}
