// Package place defines the shared place model returned by maps
// providers and consumed by search sessions and detail handlers.
package place

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PriceTierUnknown marks a place whose price level was not reported
// by the provider.
const PriceTierUnknown = -1

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String renders the pair in "lat,lng" form accepted by maps APIs.
func (c Coordinates) String() string {
	return fmt.Sprintf("%f,%f", c.Latitude, c.Longitude)
}

// ParseCoordinates parses a "lat,lng" string.
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("malformed coordinates %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("malformed latitude %q", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("malformed longitude %q", parts[1])
	}
	return Coordinates{Latitude: lat, Longitude: lng}, nil
}

// Period is one open/close span of a weekly schedule. Day uses
// time.Weekday numbering (Sunday = 0). Open and Close are "HHMM"
// strings in the place's local time. A day-0 open of "0000" with no
// close span means the place never closes.
type Period struct {
	Day   time.Weekday `json:"day"`
	Open  string       `json:"open"`
	Close string       `json:"close,omitempty"`
}

// Review is a single user review attached to a place.
type Review struct {
	Author string  `json:"author"`
	Rating float64 `json:"rating"`
	Text   string  `json:"text,omitempty"`
}

// Record is a normalized place. Fields left zero were not available
// from the provider; PriceTier uses PriceTierUnknown for that case so
// tier 0 (free) stays representable.
type Record struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Address       string      `json:"address"`
	Location      Coordinates `json:"location"`
	Rating        float64     `json:"rating"`
	PriceTier     int         `json:"priceTier"`
	OpenNow       bool        `json:"openNow"`
	Hours         []Period    `json:"hours,omitempty"`
	PhoneNumber   string      `json:"phoneNumber,omitempty"`
	Website       string      `json:"website,omitempty"`
	IconURL       string      `json:"iconUrl,omitempty"`
	DirectionsURL string      `json:"directionsUrl,omitempty"`
	Types         []string    `json:"types,omitempty"`
	Reviews       []Review    `json:"reviews,omitempty"`
}

// HoursFor returns the spans for one weekday. An empty result means
// the place is closed that day, unless Open24Hours reports true.
func (r *Record) HoursFor(day time.Weekday) []Period {
	var spans []Period
	for _, p := range r.Hours {
		if p.Day == day {
			spans = append(spans, p)
		}
	}
	return spans
}

// Open24Hours reports whether the schedule is the always-open
// sentinel: a single Sunday period opening at midnight with no close.
func (r *Record) Open24Hours() bool {
	return len(r.Hours) == 1 && r.Hours[0].Day == time.Sunday &&
		r.Hours[0].Open == "0000" && r.Hours[0].Close == ""
}

// MatchesName reports whether name refers to this place,
// case-insensitively and ignoring surrounding whitespace.
func (r *Record) MatchesName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(r.Name))
}

// SearchQuery describes one place search. MinPrice and MaxPrice are
// provider price tiers (0 to 4); PriceTierUnknown leaves the bound
// unset. PageToken continues a prior search when non-empty.
type SearchQuery struct {
	PointOfInterest string
	Coordinates     *Coordinates
	RadiusMeters    int
	MinPrice        int
	MaxPrice        int
	PageToken       string
}

// NewSearchQuery returns a query with unbounded price tiers.
func NewSearchQuery(pointOfInterest string) SearchQuery {
	return SearchQuery{
		PointOfInterest: pointOfInterest,
		MinPrice:        PriceTierUnknown,
		MaxPrice:        PriceTierUnknown,
	}
}

// ResultPage is one page of search results. NextPageToken is empty
// when the provider has no further pages.
type ResultPage struct {
	Places        []Record `json:"places"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}
