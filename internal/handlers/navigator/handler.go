// Package navigator handles the Map.* intents: place search,
// paginated listing navigation, selection, and map display.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	commonErrors "github.com/johnny-stegall/Digital-Assistant/internal/common/errors"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
	"github.com/johnny-stegall/Digital-Assistant/internal/intent"
	"github.com/johnny-stegall/Digital-Assistant/internal/place"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider"
	"github.com/johnny-stegall/Digital-Assistant/internal/session"
)

const followUpPrompt = "Would you like additional details on any of them?"

type Handler struct {
	config   *Config
	sessions *session.Manager
	maps     provider.Maps
	log      logger.Logger
}

func NewHandler(config *Config, sessions *session.Manager, maps provider.Maps, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		sessions: sessions,
		maps:     maps,
		log:      log.WithFields(map[string]interface{}{"handler": "navigator"}),
	}
}

// Search translates the utterance's entities into a provider query
// and loads the first page into the conversation's session.
func (h *Handler) Search(ctx context.Context, payload *intent.Payload) (Output, error) {
	query, limit := h.buildQuery(payload)

	view, err := h.sessions.Search(ctx, payload.ConversationID, query, limit)
	if err != nil {
		return Output{}, err
	}
	if len(view.Places) == 0 {
		return Output{Reply: "Sorry, I couldn't find anything."}, nil
	}
	return listing(view), nil
}

// NextPage advances the listing, fetching from the provider only past
// the last cached page.
func (h *Handler) NextPage(ctx context.Context, payload *intent.Payload) (Output, error) {
	view, err := h.sessions.NextPage(ctx, payload.ConversationID)
	if err != nil {
		return navigationOutcome(err)
	}
	return listing(view), nil
}

// PreviousPage steps back through cached pages.
func (h *Handler) PreviousPage(ctx context.Context, payload *intent.Payload) (Output, error) {
	view, err := h.sessions.PreviousPage(ctx, payload.ConversationID)
	if err != nil {
		return navigationOutcome(err)
	}
	return listing(view), nil
}

// RestartListing returns to the first page of results.
func (h *Handler) RestartListing(ctx context.Context, payload *intent.Payload) (Output, error) {
	view, err := h.sessions.Restart(ctx, payload.ConversationID)
	if err != nil {
		return navigationOutcome(err)
	}
	return listing(view), nil
}

// SelectPlace resolves the user's pick from the current page. The
// returned record becomes the conversation's selected place.
func (h *Handler) SelectPlace(ctx context.Context, payload *intent.Payload) (place.Record, Output, error) {
	sel := session.Selector{}
	if nameEnt := intent.FindFirst(payload.Entities, intent.KindPlaceName); nameEnt != nil {
		sel.Name = nameEnt.Text
	}
	if ordinalEnt := intent.FindFirst(payload.Entities, intent.KindOrdinal); ordinalEnt != nil {
		sel.Ordinal = parsePosition(ordinalEnt)
	}
	if numberEnt := intent.FindFirst(payload.Entities, intent.KindNumber); numberEnt != nil {
		sel.Number = parsePosition(numberEnt)
	}

	rec, err := h.sessions.SelectFromCurrentPage(ctx, payload.ConversationID, sel)
	if err != nil {
		if ae, ok := commonErrors.AsAssistantError(err); ok {
			return place.Record{}, Output{Reply: ae.UserReply()}, nil
		}
		if errors.Is(err, session.ErrEmptySession) {
			return place.Record{}, Output{Reply: "You haven't searched for anything yet."}, nil
		}
		return place.Record{}, Output{}, err
	}
	return rec, Output{Reply: fmt.Sprintf("What can I tell you about %s?", rec.Name)}, nil
}

// ShowMap renders a static map centered on the user's location.
func (h *Handler) ShowMap(payload *intent.Payload) Output {
	center := h.currentLocation(payload)
	url := h.maps.StaticMapURL(center, 18)
	if url == "" {
		return Output{Reply: "Sorry, I can't show maps right now."}
	}
	return Output{Reply: "Here's where you are.", MapURL: url}
}

// buildQuery applies the entity precedence chains: place type over
// place name for the subject, then the radius rules, then the
// location rules, then price adjectives.
func (h *Handler) buildQuery(payload *intent.Payload) (place.SearchQuery, int) {
	placeTypeEnt := intent.FindFirst(payload.Entities, intent.KindPlaceType)
	placeNameEnt := intent.FindFirst(payload.Entities, intent.KindPlaceName)
	poiEnt := intent.FindFirst(payload.Entities, intent.KindPOI)
	dimensionEnt := intent.FindFirst(payload.Entities, intent.KindDimension)
	durationEnt := intent.FindFirst(payload.Entities, intent.KindDuration)
	destinationEnt := intent.FindFirst(payload.Entities, intent.KindDestination)
	cityEnt := intent.FindFirst(payload.Entities, intent.KindCity)
	geographyEnt := intent.FindFirst(payload.Entities, intent.KindGeoPOI)
	adjacencyEnt := intent.FindFirst(payload.Entities, intent.KindProximity)
	priceEnt := intent.FindFirst(payload.Entities, intent.KindPrice)

	query := place.NewSearchQuery("")
	switch {
	case placeTypeEnt != nil:
		query.PointOfInterest = placeTypeEnt.Text
	case placeNameEnt != nil:
		query.PointOfInterest = placeNameEnt.Text
	case poiEnt != nil:
		query.PointOfInterest = poiEnt.Text
	}

	// Radius rules, first match wins.
	proximity := ""
	if adjacencyEnt != nil {
		proximity = strings.ToLower(adjacencyEnt.Text)
	}
	switch {
	case dimensionEnt != nil:
		query.RadiusMeters = convertToMeters(dimensionEnt.Text)
	case localProximity[proximity]:
		query.RadiusMeters = convertToMeters(h.config.LocalRadius)
	case durationEnt != nil:
		query.PointOfInterest += fmt.Sprintf(" within %s", durationEnt.Text)
	default:
		query.RadiusMeters = convertToMeters(h.config.LocalRadius)
	}

	// Location rules: a named area folds into the query text,
	// otherwise the search anchors to coordinates.
	switch {
	case destinationEnt != nil:
		query.PointOfInterest += fmt.Sprintf(" of %s", destinationEnt.Text)
	case cityEnt != nil:
		query.PointOfInterest += fmt.Sprintf(" of %s", cityEnt.Text)
	case geographyEnt != nil:
		query.PointOfInterest += fmt.Sprintf(" of %s", geographyEnt.Text)
	default:
		coords := h.currentLocation(payload)
		query.Coordinates = &coords
	}

	if priceEnt != nil {
		switch strings.ToLower(priceEnt.Text) {
		case "cheap":
			query.MaxPrice = 2
		case "cheapest":
			query.MaxPrice = 1
		case "expensive":
			query.MinPrice = 3
		}
	}

	limit := 0
	if closestProximity[proximity] {
		limit = 1
	}
	return query, limit
}

// currentLocation prefers the client-reported coordinates and falls
// back to the configured fixed location.
func (h *Handler) currentLocation(payload *intent.Payload) place.Coordinates {
	if payload.Coordinates != "" {
		if coords, err := place.ParseCoordinates(payload.Coordinates); err == nil {
			return coords
		}
		h.log.Warn("unusable client coordinates",
			map[string]interface{}{"coordinates": payload.Coordinates})
	}
	return h.config.CurrentCoordinates
}

func listing(view session.PageView) Output {
	var reply string
	if view.TotalPages == 1 {
		reply = fmt.Sprintf("I found at least %d places. %s", len(view.Places), followUpPrompt)
	} else {
		reply = fmt.Sprintf("I found another %d places. %s", len(view.Places), followUpPrompt)
	}
	return Output{Reply: reply, Places: view.Places, HasMore: view.HasMore}
}

// navigationOutcome maps the session outcomes that are conversational
// rather than failures.
func navigationOutcome(err error) (Output, error) {
	switch {
	case errors.Is(err, session.ErrFirstPage):
		return Output{Reply: "You're on the first page of results."}, nil
	case errors.Is(err, session.ErrEmptySession):
		return Output{Reply: "You haven't searched for anything yet."}, nil
	case commonErrors.IsCode(err, commonErrors.ErrCodeExhaustedPagination):
		ae, _ := commonErrors.AsAssistantError(err)
		return Output{Reply: ae.UserReply()}, nil
	default:
		return Output{}, err
	}
}

var magnitudePattern = regexp.MustCompile(`[0-9]+`)

// convertToMeters extracts the magnitude from a distance phrase and
// scales by the unit. Unrecognized phrases fall back to one
// kilometer.
func convertToMeters(distance string) int {
	factor := 1
	lower := strings.ToLower(distance)
	if strings.Contains(lower, "mile") {
		factor = 1609
	} else if strings.Contains(lower, "km") {
		factor = 1000
	}

	magnitude := magnitudePattern.FindString(distance)
	if magnitude == "" {
		return 1000
	}
	n, err := strconv.Atoi(magnitude)
	if err != nil {
		return 1000
	}
	return n * factor
}

func parsePosition(ent *intent.Entity) int {
	n, err := strconv.Atoi(ent.LastValue())
	if err != nil {
		return 0
	}
	return n
}
