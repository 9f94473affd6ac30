package navigator

import "github.com/johnny-stegall/Digital-Assistant/internal/place"

// Output is a listing turn's result: the spoken reply plus the
// structured payload the presentation layer renders.
type Output struct {
	Reply   string         `json:"reply"`
	Places  []place.Record `json:"places,omitempty"`
	HasMore bool           `json:"hasMore"`
	MapURL  string         `json:"mapUrl,omitempty"`
}

// Proximity phrases that bound a search to the local radius.
var localProximity = map[string]bool{
	"nearby":   true,
	"near by":  true,
	"close by": true,
}

// Proximity phrases that keep only the single closest result.
var closestProximity = map[string]bool{
	"closest": true,
	"nearest": true,
}
