package dispatch

import "github.com/johnny-stegall/Digital-Assistant/internal/place"

// Intent names the recognizer emits.
const (
	IntentCalendarCreateEvent = "Calendar.CreateEvent"
	IntentCalendarDeleteEvent = "Calendar.DeleteEvent"
	IntentCalendarIsAvailable = "Calendar.IsAvailable"
	IntentCalendarUpdateEvent = "Calendar.UpdateEvent"

	IntentMapSearch         = "Map.Search"
	IntentMapShow           = "Map.Show"
	IntentMapNextPage       = "Map.NextPage"
	IntentMapPreviousPage   = "Map.PreviousPage"
	IntentMapRestartListing = "Map.RestartListing"
	IntentMapSelection      = "Map.Selection"

	IntentPlaceCall            = "Place.Call"
	IntentPlaceGetAddress      = "Place.GetAddress"
	IntentPlaceGetDirections   = "Place.GetDirections"
	IntentPlaceGetHours        = "Place.GetHours"
	IntentPlaceGetMenu         = "Place.GetMenu"
	IntentPlaceGetPhoneNumber  = "Place.GetPhoneNumber"
	IntentPlaceGetPriceRange   = "Place.GetPriceRange"
	IntentPlaceGetRating       = "Place.GetRating"
	IntentPlaceMakeReservation = "Place.MakeReservation"

	IntentDialogEnd = "Dialog.End"
)

// Reply is one turn's outcome: the spoken text plus the structured
// listing payload for the presentation layer.
type Reply struct {
	ConversationID string         `json:"conversationId"`
	Text           string         `json:"text"`
	Places         []place.Record `json:"places,omitempty"`
	HasMore        bool           `json:"hasMore,omitempty"`
	MapURL         string         `json:"mapUrl,omitempty"`
}
