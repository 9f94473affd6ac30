// Package placedetails handles the Place.* intents asked about the
// conversation's currently selected place.
package placedetails

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	commonErrors "github.com/johnny-stegall/Digital-Assistant/internal/common/errors"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
	"github.com/johnny-stegall/Digital-Assistant/internal/intent"
	"github.com/johnny-stegall/Digital-Assistant/internal/notify"
	"github.com/johnny-stegall/Digital-Assistant/internal/place"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider"
	"github.com/johnny-stegall/Digital-Assistant/internal/resolve"
)

const reservationDateLayout = "Monday, January 2, 2006"

var weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

type Handler struct {
	config   *Config
	calendar provider.Calendar
	maps     provider.Maps
	notifier *notify.Notifier
	log      logger.Logger
}

// NewHandler builds the handler. notifier may be nil when
// confirmations are disabled.
func NewHandler(config *Config, cal provider.Calendar, maps provider.Maps, notifier *notify.Notifier, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		calendar: cal,
		maps:     maps,
		notifier: notifier,
		log:      log.WithFields(map[string]interface{}{"handler": "placedetails"}),
	}
}

// Call pretends to dial the place.
func (h *Handler) Call(rec place.Record) string {
	if rec.PhoneNumber == "" {
		return withFollowUp("Sorry, their phone number isn't available.", rec)
	}
	return withFollowUp(fmt.Sprintf("Calling %s...", rec.PhoneNumber), rec)
}

func (h *Handler) Address(rec place.Record) string {
	return withFollowUp(fmt.Sprintf("The address is: %s.", rec.Address), rec)
}

// Directions summarizes the route from the user's location.
func (h *Handler) Directions(ctx context.Context, origin place.Coordinates, rec place.Record) string {
	route, err := h.maps.Directions(ctx, origin, rec.Address)
	if err != nil {
		h.log.WithError(err).Warn("directions lookup failed",
			map[string]interface{}{"destination": rec.Address})
		return withFollowUp("Sorry, but I'm struggling finding your destination.", rec)
	}
	return withFollowUp(fmt.Sprintf("It's %s away, about %s.", route.Distance, route.Duration), rec)
}

// Hours speaks the weekly schedule, one line per open period.
func (h *Handler) Hours(rec place.Record) string {
	if len(rec.Hours) == 0 {
		return withFollowUp("Sorry, but their hours aren't available.", rec)
	}

	var lines []string
	for _, period := range rec.Hours {
		day := weekdayNames[int(period.Day)%len(weekdayNames)]
		if period.Close == "" {
			lines = append(lines, fmt.Sprintf("%s: Open 24 hours", day))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %s-%s", day, period.Open, period.Close))
		}
	}
	return withFollowUp(strings.Join(lines, "\n"), rec)
}

func (h *Handler) Menu(rec place.Record) string {
	return withFollowUp("Sorry, but retrieving menus hasn't been implemented yet.", rec)
}

func (h *Handler) PhoneNumber(rec place.Record) string {
	if rec.PhoneNumber == "" {
		return withFollowUp("Sorry, their phone number isn't available.", rec)
	}
	return withFollowUp(fmt.Sprintf("Their phone number is: %s.", rec.PhoneNumber), rec)
}

func (h *Handler) PriceRange(rec place.Record) string {
	if rec.PriceTier <= 0 {
		return withFollowUp("Sorry, their price range isn't available.", rec)
	}
	return withFollowUp(fmt.Sprintf("Their price range is approximately %d dollars per meal.",
		rec.PriceTier*h.config.DollarsPerPriceTier), rec)
}

func (h *Handler) Rating(rec place.Record) string {
	if rec.Rating == 0 {
		return withFollowUp("Sorry, but they aren't rated.", rec)
	}
	return withFollowUp(fmt.Sprintf("They have a %g-star rating.", rec.Rating), rec)
}

// MakeReservation books a calendar hold at the place and sends the
// confirmation through the enabled notification channels.
func (h *Handler) MakeReservation(ctx context.Context, payload *intent.Payload, rec place.Record) (string, error) {
	numberEnts := intent.FindAll(payload.Entities, intent.KindNumber)
	dateTimeEnt := intent.FindFirst(payload.Entities, intent.KindDateTime)
	dateEnt := intent.FindFirst(payload.Entities, intent.KindDate)
	timeEnt := intent.FindFirst(payload.Entities, intent.KindTime)

	start, err := resolve.DateTime(dateTimeEnt, dateEnt, timeEnt)
	if err != nil {
		if errors.Is(err, resolve.ErrNoDateTime) {
			return "", commonErrors.NewAbsentInput("make a reservation")
		}
		return "", commonErrors.NewUnparseableInput("make a reservation", err)
	}

	partySize := resolve.PartySize(numberEnts, dateTimeEnt, dateEnt, timeEnt)

	ev := provider.Event{
		Title:    fmt.Sprintf("Reservation at %s", rec.Name),
		Location: rec.Address,
		Start:    start,
		End:      start.Add(time.Duration(h.config.ReservationMinutes) * time.Minute),
	}
	if _, err := h.calendar.CreateEvent(ctx, ev); err != nil {
		h.log.WithError(err).Error("reservation hold failed", map[string]interface{}{"place": rec.Name})
		return withFollowUp("Something's wrong, I couldn't create the reservation.", rec), nil
	}

	if h.notifier != nil {
		h.notifier.ReservationConfirmed(ctx, notify.Reservation{
			PlaceName: rec.Name,
			Address:   rec.Address,
			Start:     start,
			PartySize: partySize,
		})
	}

	return withFollowUp(fmt.Sprintf("I've created a reservation at %s on %s for %d.",
		rec.Name, start.Format(reservationDateLayout), partySize), rec), nil
}

func withFollowUp(reply string, rec place.Record) string {
	return fmt.Sprintf("%s Is there anything else I can tell you about %s?", reply, rec.Name)
}
