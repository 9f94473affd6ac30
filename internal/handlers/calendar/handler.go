// Package calendar handles the Calendar.* intents: creating,
// deleting, and updating events and checking availability.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	commonErrors "github.com/johnny-stegall/Digital-Assistant/internal/common/errors"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
	"github.com/johnny-stegall/Digital-Assistant/internal/intent"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider"
	"github.com/johnny-stegall/Digital-Assistant/internal/resolve"
)

type Handler struct {
	config   *Config
	calendar provider.Calendar
	log      logger.Logger
}

func NewHandler(config *Config, cal provider.Calendar, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		calendar: cal,
		log:      log.WithFields(map[string]interface{}{"handler": "calendar"}),
	}
}

// CreateEvent books a new event and returns the spoken confirmation,
// echoing the raw entity phrases the user said.
func (h *Handler) CreateEvent(ctx context.Context, payload *intent.Payload) (string, error) {
	appointmentEnt := intent.FindFirst(payload.Entities, intent.KindAppointment)
	attendeeEnts := intent.FindAll(payload.Entities, intent.KindAttendee)
	titleEnt := intent.FindFirst(payload.Entities, intent.KindTitle)
	locationEnt := intent.FindFirst(payload.Entities, intent.KindLocation)
	dateTimeEnt := intent.FindFirst(payload.Entities, intent.KindDateTime)
	dateEnt := intent.FindFirst(payload.Entities, intent.KindDate)
	timeEnt := intent.FindFirst(payload.Entities, intent.KindTime)
	durationEnt := intent.FindFirst(payload.Entities, intent.KindDuration)

	start, err := resolve.DateTime(dateTimeEnt, dateEnt, timeEnt)
	if err != nil {
		if errors.Is(err, resolve.ErrNoDateTime) {
			return "", commonErrors.NewAbsentInput("create an appointment")
		}
		return "", commonErrors.NewUnparseableInput("create an appointment", err)
	}

	duration := resolve.DurationMinutes(durationEnt, h.config.DefaultDurationMinutes)
	attendeeList := resolve.AttendeeList(attendeeEnts)
	title := resolve.Title(titleEnt, appointmentEnt, attendeeList)

	ev := provider.Event{
		Title: title,
		Start: start,
		End:   start.Add(minutes(duration)),
	}
	if locationEnt != nil {
		ev.Location = locationEnt.Text
	}
	for _, att := range attendeeEnts {
		ev.Attendees = append(ev.Attendees, att.Text)
	}

	if _, err := h.calendar.CreateEvent(ctx, ev); err != nil {
		h.log.WithError(err).Error("event creation failed", map[string]interface{}{"title": title})
		return "Something's wrong, I couldn't create the event in your calendar.", nil
	}

	confirmation := fmt.Sprintf("I've added %s", title)
	if titleEnt != nil && len(attendeeEnts) > 0 {
		confirmation += fmt.Sprintf(" with %s", attendeeList)
	}
	if locationEnt != nil {
		confirmation += fmt.Sprintf(" at %s", locationEnt.Text)
	}
	confirmation += echoWhen(dateTimeEnt, dateEnt, timeEnt)
	if durationEnt != nil {
		confirmation += fmt.Sprintf(" for %s", durationEnt.Text)
	}
	confirmation += " to your calendar."
	return confirmation, nil
}

// IsAvailable checks the calendar for the requested span and echoes
// the user's own phrasing back in the answer.
func (h *Handler) IsAvailable(ctx context.Context, payload *intent.Payload) (string, error) {
	dateTimeEnt := intent.FindFirst(payload.Entities, intent.KindDateTime)
	dateEnt := intent.FindFirst(payload.Entities, intent.KindDate)
	timeEnt := intent.FindFirst(payload.Entities, intent.KindTime)
	durationEnt := intent.FindFirst(payload.Entities, intent.KindDuration)

	start, err := resolve.DateTime(dateTimeEnt, dateEnt, timeEnt)
	if err != nil {
		return "I'm sorry, but I didn't catch that date.", nil
	}

	duration := resolve.DurationMinutes(durationEnt, 0)
	available, err := h.calendar.IsAvailable(ctx, start, start.Add(minutes(duration)))
	if err != nil {
		return "", err
	}

	confirmation := "No, you're not available"
	if available {
		confirmation = "Yes, you're available"
	}
	if dateTimeEnt != nil {
		confirmation += " " + dateTimeEnt.Text
	} else {
		if dateEnt != nil {
			confirmation += " " + dateEnt.Text
		}
		if timeEnt != nil {
			confirmation += " at " + timeEnt.Text
		}
	}
	if durationEnt != nil {
		confirmation += " for " + durationEnt.Text
	}
	return confirmation + ".", nil
}

// ConfirmDeleteEvent builds the deletion awaiting confirmation and
// the question to ask. Deletion itself happens in ExecuteDelete once
// the user answers yes.
func (h *Handler) ConfirmDeleteEvent(payload *intent.Payload) (*PendingDeletion, string, error) {
	appointmentEnt := intent.FindFirst(payload.Entities, intent.KindAppointment)
	attendeeEnts := intent.FindAll(payload.Entities, intent.KindAttendee)
	titleEnt := intent.FindFirst(payload.Entities, intent.KindTitle)
	dateTimeEnt := intent.FindFirst(payload.Entities, intent.KindDateTime)
	dateEnt := intent.FindFirst(payload.Entities, intent.KindDate)
	timeEnt := intent.FindFirst(payload.Entities, intent.KindTime)

	var title string
	if len(attendeeEnts) > 0 {
		title = resolve.Title(titleEnt, appointmentEnt, resolve.AttendeeList(attendeeEnts))
	} else if titleEnt != nil {
		title = titleEnt.Text
	}

	start, err := resolve.DateTime(dateTimeEnt, dateEnt, timeEnt)
	hasStart := err == nil

	switch {
	case title != "":
		confirmation := fmt.Sprintf("Are you sure you want to remove %s", title)
		if dateTimeEnt != nil {
			confirmation += " at " + dateTimeEnt.Text
		} else {
			if dateEnt != nil {
				confirmation += " on " + dateEnt.Text
			}
			if timeEnt != nil {
				confirmation += " at " + timeEnt.Text
			}
		}
		confirmation += " from your calendar?"
		return &PendingDeletion{Title: title}, confirmation, nil
	case hasStart:
		confirmation := fmt.Sprintf("Are you sure you want to remove the appointment scheduled on %s?",
			start.Format(dateTimeLayout))
		return &PendingDeletion{Start: start}, confirmation, nil
	default:
		return nil, "", commonErrors.NewAbsentInput("delete an appointment")
	}
}

// ExecuteDelete runs a confirmed deletion.
func (h *Handler) ExecuteDelete(ctx context.Context, pending *PendingDeletion) (string, error) {
	ref := provider.EventRef{Title: pending.Title, Start: pending.Start}

	if err := h.calendar.DeleteEvent(ctx, ref); err != nil {
		if errors.Is(err, provider.ErrEventNotFound) {
			return "I couldn't find that event in your calendar.", nil
		}
		h.log.WithError(err).Error("event deletion failed", map[string]interface{}{"title": pending.Title})
		return "Something's wrong, I couldn't remove the event in your calendar.", nil
	}

	if pending.Title != "" {
		return fmt.Sprintf("I've removed %s from your calendar.", pending.Title), nil
	}
	return fmt.Sprintf("I've removed the appointment at %s from your calendar.",
		pending.Start.Format(dateLayout)), nil
}

// UpdateEvent reschedules an existing event when the provider
// supports it.
func (h *Handler) UpdateEvent(ctx context.Context, payload *intent.Payload) (string, error) {
	titleEnt := intent.FindFirst(payload.Entities, intent.KindTitle)
	dateTimeEnt := intent.FindFirst(payload.Entities, intent.KindDateTime)
	dateEnt := intent.FindFirst(payload.Entities, intent.KindDate)
	timeEnt := intent.FindFirst(payload.Entities, intent.KindTime)
	durationEnt := intent.FindFirst(payload.Entities, intent.KindDuration)

	start, err := resolve.DateTime(dateTimeEnt, dateEnt, timeEnt)
	hasStart := err == nil
	if titleEnt == nil && !hasStart {
		return "", commonErrors.NewAbsentInput("update an appointment")
	}

	ev := provider.Event{}
	if titleEnt != nil {
		ev.Title = titleEnt.Text
	}
	if hasStart {
		ev.Start = start
		duration := resolve.DurationMinutes(durationEnt, h.config.DefaultDurationMinutes)
		ev.End = start.Add(minutes(duration))
	}

	if err := h.calendar.UpdateEvent(ctx, ev); err != nil {
		if errors.Is(err, provider.ErrNotSupported) {
			return "", commonErrors.NewNotSupported("updating appointments")
		}
		h.log.WithError(err).Error("event update failed", map[string]interface{}{"title": ev.Title})
		return "Something's wrong, I couldn't update the event in your calendar.", nil
	}

	confirmation := "I've updated your appointment"
	if hasStart {
		confirmation += " and rescheduled it to " + start.Format(dateTimeLayout)
	}
	return confirmation + ".", nil
}

// echoWhen repeats the user's own temporal phrasing.
func echoWhen(dateTimeEnt, dateEnt, timeEnt *intent.Entity) string {
	if dateTimeEnt != nil {
		return " " + dateTimeEnt.Text
	}
	var echo string
	if dateEnt != nil {
		echo += " on " + dateEnt.Text
	}
	if timeEnt != nil {
		echo += " at " + timeEnt.Text
	}
	return echo
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
