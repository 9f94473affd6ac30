// Package intent models the structured payload produced by the language
// understanding service for one user utterance, and provides the lookup
// helpers every handler uses to pull typed entities out of it.
package intent

// Entity is a typed span extracted from the utterance. The recognizer may
// attach several candidate resolutions to one span; ResolvedValues is ordered
// by the recognizer, and by convention the last element is the most specific.
type Entity struct {
	Kind           string   `json:"kind"`
	Text           string   `json:"text"`
	ResolvedValues []string `json:"resolvedValues,omitempty"`
}

// LastValue returns the most specific resolution of the entity, or its raw
// text when the recognizer attached none. This is the single place the
// "last value wins" convention lives; call sites must not reimplement it.
func (e Entity) LastValue() string {
	if len(e.ResolvedValues) == 0 {
		return e.Text
	}
	return e.ResolvedValues[len(e.ResolvedValues)-1]
}

// Payload is the immutable result of interpreting one utterance.
type Payload struct {
	IntentName string   `json:"intentName"`
	Utterance  string   `json:"utterance,omitempty"`
	Entities   []Entity `json:"entities,omitempty"`

	// ConversationID keys all per-conversation state. Minted by the
	// dispatcher when the client omits it.
	ConversationID string `json:"conversationId,omitempty"`

	// Coordinates is the client-reported location ("lat,lng"), when the
	// channel provides one.
	Coordinates string `json:"coordinates,omitempty"`
}

// Entity kinds emitted by the recognizer.
const (
	KindDateTime    = "builtin.datetimeV2.datetime"
	KindDate        = "builtin.datetimeV2.date"
	KindTime        = "builtin.datetimeV2.time"
	KindDuration    = "builtin.datetimeV2.duration"
	KindDimension   = "builtin.dimension"
	KindOrdinal     = "builtin.ordinal"
	KindNumber      = "builtin.number"
	KindCity        = "builtin.geography.city"
	KindGeoPOI      = "builtin.geography.pointOfInterest"
	KindAppointment = "Calendar.Appointment"
	KindAttendee    = "Calendar.Attendee"
	KindTitle       = "Calendar.Title"
	KindLocation    = "Calendar.Location"
	KindPOI         = "Map.PointOfInterest"
	KindDestination = "Map.Destination"
	KindAdjective   = "Map.Adjective"
	KindProximity   = "Map.Proximity"
	KindPlaceName   = "Place.Name"
	KindPlaceType   = "Place.Type"
	KindPrice       = "Place.Price"
	KindRating      = "Place.Rating"
)

// FindFirst returns the first entity of the given kind, preserving the
// recognizer's emission order, or nil when none exists.
func FindFirst(entities []Entity, kind string) *Entity {
	for i := range entities {
		if entities[i].Kind == kind {
			return &entities[i]
		}
	}
	return nil
}

// FindAll returns every entity of the given kind in emission order. The
// result is empty, never nil-significant, when no entity matches.
func FindAll(entities []Entity, kind string) []Entity {
	var out []Entity
	for _, e := range entities {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
