// Package resolve reconciles ambiguous, overlapping recognizer entities into
// the single values the handlers act on: a point in time, a duration, an
// attendee list, a title, a party size.
package resolve

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/johnny-stegall/Digital-Assistant/internal/intent"
)

var (
	// ErrNoDateTime means no date or time entity was present at all.
	ErrNoDateTime = errors.New("NO_DATETIME")
	// ErrUnparseableDateTime means entities were present but their
	// resolutions did not form a valid point in time.
	ErrUnparseableDateTime = errors.New("UNPARSEABLE_DATETIME")
)

// timeNow is swapped out in tests that resolve time-only utterances.
var timeNow = time.Now

// Layouts the recognizer's resolved values are known to use.
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
}

var dateLayouts = []string{
	"2006-01-02",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
}

// DateTime combines date/time-shaped entities into a single point in time.
//
// The priority order is fixed: a combined datetime entity is authoritative
// and separate date/time entities are ignored; otherwise the date and time
// resolutions are concatenated and parsed together. Each multi-valued
// resolution list contributes its last value only.
func DateTime(dateTimeEnt, dateEnt, timeEnt *intent.Entity) (time.Time, error) {
	if dateTimeEnt != nil {
		return parseResolved(dateTimeEnt.LastValue())
	}

	if dateEnt == nil && timeEnt == nil {
		return time.Time{}, ErrNoDateTime
	}

	var parts []string
	if dateEnt != nil {
		parts = append(parts, dateEnt.LastValue())
	}
	if timeEnt != nil {
		parts = append(parts, timeEnt.LastValue())
	}
	return parseResolved(strings.Join(parts, " "))
}

// parseResolved tries the known layouts in order. Time-only resolutions are
// anchored to today's date in local time.
func parseResolved(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrNoDateTime
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			now := timeNow()
			return time.Date(now.Year(), now.Month(), now.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, time.Local), nil
		}
	}
	return time.Time{}, ErrUnparseableDateTime
}

// DurationMinutes converts a duration entity's last resolved value, expressed
// in seconds by the recognizer, into minutes. When the entity is absent or
// unparseable the caller-supplied default is used (60 for event creation,
// 0 meaning "unspecified" for availability checks).
func DurationMinutes(durationEnt *intent.Entity, defaultMinutes int) int {
	if durationEnt == nil {
		return defaultMinutes
	}
	seconds, err := strconv.ParseFloat(durationEnt.LastValue(), 64)
	if err != nil {
		return defaultMinutes
	}
	return int(seconds / 60)
}
