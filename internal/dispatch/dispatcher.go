// Package dispatch routes recognized intents to their handlers and
// owns the per-conversation dialog state between turns.
package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	commonErrors "github.com/johnny-stegall/Digital-Assistant/internal/common/errors"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/metrics"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/observability"
	"github.com/johnny-stegall/Digital-Assistant/internal/handlers/calendar"
	"github.com/johnny-stegall/Digital-Assistant/internal/handlers/navigator"
	"github.com/johnny-stegall/Digital-Assistant/internal/handlers/placedetails"
	"github.com/johnny-stegall/Digital-Assistant/internal/intent"
	"github.com/johnny-stegall/Digital-Assistant/internal/place"
	"github.com/johnny-stegall/Digital-Assistant/internal/session"
)

type Dispatcher struct {
	calendar  *calendar.Handler
	navigator *navigator.Handler
	details   *placedetails.Handler
	sessions  *session.Manager
	states    *stateRegistry
	obs       *observability.Observability
	log       logger.Logger

	// Origin for directions when the client reports no location.
	defaultOrigin place.Coordinates
}

func NewDispatcher(
	cal *calendar.Handler,
	nav *navigator.Handler,
	details *placedetails.Handler,
	sessions *session.Manager,
	obs *observability.Observability,
	defaultOrigin place.Coordinates,
	log logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		calendar:      cal,
		navigator:     nav,
		details:       details,
		sessions:      sessions,
		states:        newStateRegistry(),
		obs:           obs,
		defaultOrigin: defaultOrigin,
		log:           log,
	}
}

// Dispatch executes one conversational turn. It never panics or
// returns an error to the transport; every failure becomes a spoken
// reply.
func (d *Dispatcher) Dispatch(ctx context.Context, payload *intent.Payload) (reply Reply) {
	if payload.ConversationID == "" {
		payload.ConversationID = uuid.New().String()
	}
	reply.ConversationID = payload.ConversationID

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("turn panicked", map[string]interface{}{
				"intent": payload.IntentName,
				"panic":  r,
			})
			reply.Text = commonErrors.GenericApology
		}
		metrics.TurnDuration.WithLabelValues(payload.IntentName).Observe(time.Since(start).Seconds())
		if d.obs != nil {
			d.obs.RecordTurnDuration(ctx, payload.IntentName, time.Since(start))
		}
	}()

	text, out, err := d.route(ctx, payload)
	if err != nil {
		reply.Text = userReply(err)
		code := "internal"
		if ae, ok := commonErrors.AsAssistantError(err); ok {
			code = string(ae.Code)
		} else {
			d.log.WithError(err).Error("turn failed", map[string]interface{}{"intent": payload.IntentName})
		}
		metrics.IntentsFailed.WithLabelValues(payload.IntentName, code).Inc()
		if d.obs != nil {
			d.obs.RecordTurnProcessed(ctx, payload.IntentName, "error")
		}
		return reply
	}

	metrics.IntentsHandled.WithLabelValues(payload.IntentName).Inc()
	if d.obs != nil {
		d.obs.RecordTurnProcessed(ctx, payload.IntentName, "ok")
	}

	reply.Text = text
	reply.Places = out.Places
	reply.HasMore = out.HasMore
	reply.MapURL = out.MapURL
	return reply
}

func (d *Dispatcher) route(ctx context.Context, payload *intent.Payload) (string, navigator.Output, error) {
	state := d.states.get(payload.ConversationID)

	// A pending deletion hijacks the turn for its yes/no answer.
	if state.pendingDeletion != nil {
		pending := state.pendingDeletion
		state.pendingDeletion = nil
		if strings.EqualFold(strings.TrimSpace(payload.Utterance), "yes") {
			text, err := d.calendar.ExecuteDelete(ctx, pending)
			return text, navigator.Output{}, err
		}
		return "Okay, I'll leave your calendar alone.", navigator.Output{}, nil
	}

	switch payload.IntentName {
	case IntentCalendarCreateEvent:
		text, err := d.calendar.CreateEvent(ctx, payload)
		return text, navigator.Output{}, err

	case IntentCalendarDeleteEvent:
		pending, confirmation, err := d.calendar.ConfirmDeleteEvent(payload)
		if err != nil {
			return "", navigator.Output{}, err
		}
		state.pendingDeletion = pending
		return confirmation, navigator.Output{}, nil

	case IntentCalendarIsAvailable:
		text, err := d.calendar.IsAvailable(ctx, payload)
		return text, navigator.Output{}, err

	case IntentCalendarUpdateEvent:
		text, err := d.calendar.UpdateEvent(ctx, payload)
		return text, navigator.Output{}, err

	case IntentMapSearch:
		out, err := d.navigator.Search(ctx, payload)
		return out.Reply, out, err

	case IntentMapShow:
		out := d.navigator.ShowMap(payload)
		return out.Reply, out, nil

	case IntentMapNextPage:
		out, err := d.navigator.NextPage(ctx, payload)
		return out.Reply, out, err

	case IntentMapPreviousPage:
		out, err := d.navigator.PreviousPage(ctx, payload)
		return out.Reply, out, err

	case IntentMapRestartListing:
		out, err := d.navigator.RestartListing(ctx, payload)
		return out.Reply, out, err

	case IntentMapSelection:
		rec, out, err := d.navigator.SelectPlace(ctx, payload)
		if err == nil && rec.ID != "" {
			state.selectedPlace = &rec
		}
		return out.Reply, out, err

	case IntentPlaceCall, IntentPlaceGetAddress, IntentPlaceGetDirections,
		IntentPlaceGetHours, IntentPlaceGetMenu, IntentPlaceGetPhoneNumber,
		IntentPlaceGetPriceRange, IntentPlaceGetRating, IntentPlaceMakeReservation:
		return d.routePlaceDetail(ctx, payload, state)

	case IntentDialogEnd:
		if err := d.sessions.End(ctx, payload.ConversationID); err != nil {
			d.log.WithError(err).Warn("session teardown failed",
				map[string]interface{}{"conversation_id": payload.ConversationID})
		}
		d.states.drop(payload.ConversationID)
		return "Goodbye!", navigator.Output{}, nil

	default:
		return "", navigator.Output{}, commonErrors.NewUnknownIntent(payload.Utterance)
	}
}

func (d *Dispatcher) routePlaceDetail(ctx context.Context, payload *intent.Payload, state *conversationState) (string, navigator.Output, error) {
	if state.selectedPlace == nil {
		return "You haven't picked a place yet. Try searching for one first.", navigator.Output{}, nil
	}
	rec := *state.selectedPlace

	switch payload.IntentName {
	case IntentPlaceCall:
		return d.details.Call(rec), navigator.Output{}, nil
	case IntentPlaceGetAddress:
		return d.details.Address(rec), navigator.Output{}, nil
	case IntentPlaceGetDirections:
		return d.details.Directions(ctx, d.origin(payload), rec), navigator.Output{}, nil
	case IntentPlaceGetHours:
		return d.details.Hours(rec), navigator.Output{}, nil
	case IntentPlaceGetMenu:
		return d.details.Menu(rec), navigator.Output{}, nil
	case IntentPlaceGetPhoneNumber:
		return d.details.PhoneNumber(rec), navigator.Output{}, nil
	case IntentPlaceGetPriceRange:
		return d.details.PriceRange(rec), navigator.Output{}, nil
	case IntentPlaceGetRating:
		return d.details.Rating(rec), navigator.Output{}, nil
	default:
		text, err := d.details.MakeReservation(ctx, payload, rec)
		return text, navigator.Output{}, err
	}
}

func (d *Dispatcher) origin(payload *intent.Payload) place.Coordinates {
	if payload.Coordinates != "" {
		if coords, err := place.ParseCoordinates(payload.Coordinates); err == nil {
			return coords
		}
	}
	return d.defaultOrigin
}

// userReply maps any error to the text the user hears.
func userReply(err error) string {
	if ae, ok := commonErrors.AsAssistantError(err); ok {
		return ae.UserReply()
	}
	return commonErrors.GenericApology
}
