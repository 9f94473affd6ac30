// Package provider defines the capability interfaces implemented by
// the concrete calendar and maps backends.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/johnny-stegall/Digital-Assistant/internal/place"
)

// ErrNotSupported is returned by operations a backend does not
// implement, such as event updates on read-mostly stores.
var ErrNotSupported = errors.New("NOT_SUPPORTED")

// ErrEventNotFound is returned by DeleteEvent when no event matches
// the reference.
var ErrEventNotFound = errors.New("EVENT_NOT_FOUND")

// Event is a calendar event to create or that was found.
type Event struct {
	ID        string
	Title     string
	Location  string
	Start     time.Time
	End       time.Time
	Attendees []string
}

// EventRef identifies an event to delete, by title or by start time.
// Exactly one of the fields is meaningful; a zero Start means the
// title is the reference.
type EventRef struct {
	Title string
	Start time.Time
}

// ByTitle reports whether the reference names the event by title.
func (r EventRef) ByTitle() bool {
	return r.Start.IsZero()
}

// Calendar is the calendar capability.
type Calendar interface {
	CreateEvent(ctx context.Context, ev Event) (string, error)
	DeleteEvent(ctx context.Context, ref EventRef) error
	IsAvailable(ctx context.Context, start, end time.Time) (bool, error)
	UpdateEvent(ctx context.Context, ev Event) error
}

// RouteSummary is the distance and duration of a computed route.
type RouteSummary struct {
	Distance string
	Duration string
}

// Maps is the place search capability.
type Maps interface {
	Search(ctx context.Context, query place.SearchQuery) (place.ResultPage, error)
	Directions(ctx context.Context, origin place.Coordinates, destination string) (RouteSummary, error)
	StaticMapURL(center place.Coordinates, zoom int) string
}
