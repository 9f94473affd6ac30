// Package googlemaps implements place search and directions against
// the Google Maps web service APIs.
package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/johnny-stegall/Digital-Assistant/internal/common/config"
	commonErrors "github.com/johnny-stegall/Digital-Assistant/internal/common/errors"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/httpclient"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/metrics"
	"github.com/johnny-stegall/Digital-Assistant/internal/place"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider"
)

const (
	textSearchURL   = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	placeDetailsURL = "https://maps.googleapis.com/maps/api/place/details/json"
	staticMapURL    = "https://maps.googleapis.com/maps/api/staticmap"
	directionsURL   = "https://maps.googleapis.com/maps/api/directions/json"
	directionsLink  = "https://www.google.com/maps/dir"
)

// Photo attributions embed the real icon link inside an anchor tag.
var attributionHref = regexp.MustCompile(`<a href="(.+)">.+</a>`)

// Client calls the Google Maps text search, place details, static map
// and directions APIs. Search results are enriched with a details
// lookup per place.
type Client struct {
	cfg            config.ProvidersConfig
	currentAddress string
	http           *httpclient.Client
	log            logger.Logger
}

// New returns a Client. currentAddress anchors the directions links
// attached to each result.
func New(cfg config.ProvidersConfig, currentAddress string, log logger.Logger) *Client {
	timeout := time.Duration(cfg.GoogleMaps.Timeout) * time.Millisecond
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:            cfg,
		currentAddress: currentAddress,
		http:           httpclient.NewClient(timeout),
		log:            log,
	}
}

type searchResponse struct {
	NextPageToken string      `json:"next_page_token"`
	Results       []placeJSON `json:"results"`
	Status        string      `json:"status"`
}

type placeJSON struct {
	FormattedAddress string   `json:"formatted_address"`
	Icon             string   `json:"icon"`
	Name             string   `json:"name"`
	PlaceID          string   `json:"place_id"`
	PriceLevel       *int     `json:"price_level"`
	Rating           float64  `json:"rating"`
	Types            []string `json:"types"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	OpeningHours *struct {
		OpenNow bool `json:"open_now"`
	} `json:"opening_hours"`
	Photos []struct {
		HTMLAttributions []string `json:"html_attributions"`
	} `json:"photos"`
}

type detailsResponse struct {
	Result *struct {
		FormattedPhoneNumber string `json:"formatted_phone_number"`
		URL                  string `json:"url"`
		OpeningHours         *struct {
			Periods []periodJSON `json:"periods"`
		} `json:"opening_hours"`
		Reviews []struct {
			AuthorName string  `json:"author_name"`
			Rating     float64 `json:"rating"`
			Text       string  `json:"text"`
		} `json:"reviews"`
	} `json:"result"`
}

type periodJSON struct {
	Open *struct {
		Day  int    `json:"day"`
		Time string `json:"time"`
	} `json:"open"`
	Close *struct {
		Day  int    `json:"day"`
		Time string `json:"time"`
	} `json:"close"`
}

// Search runs a text search and enriches each result with its place
// details.
func (c *Client) Search(ctx context.Context, query place.SearchQuery) (place.ResultPage, error) {
	metrics.ProviderCalls.WithLabelValues("googlemaps", "search").Inc()

	params := url.Values{}
	params.Set("key", c.cfg.GoogleMaps.APIKey)
	if query.PointOfInterest != "" {
		params.Set("query", query.PointOfInterest)
	}
	if query.RadiusMeters > 0 {
		params.Set("radius", strconv.Itoa(query.RadiusMeters))
	}
	if query.Coordinates != nil {
		params.Set("location", query.Coordinates.String())
	}
	if query.MinPrice != place.PriceTierUnknown {
		params.Set("minprice", strconv.Itoa(query.MinPrice))
	}
	if query.MaxPrice != place.PriceTierUnknown {
		params.Set("maxprice", strconv.Itoa(query.MaxPrice))
	}
	if query.PageToken != "" {
		params.Set("pagetoken", query.PageToken)
	}

	var resp searchResponse
	if err := c.getJSON(ctx, textSearchURL+"?"+params.Encode(), &resp); err != nil {
		return place.ResultPage{}, commonErrors.NewProviderFailure("googlemaps", err)
	}

	page := place.ResultPage{NextPageToken: resp.NextPageToken}
	for _, raw := range resp.Results {
		rec := c.toRecord(raw)
		if err := c.enrich(ctx, &rec); err != nil {
			c.log.WithError(err).Warn("place details lookup failed",
				map[string]interface{}{"place_id": rec.ID})
		}
		page.Places = append(page.Places, rec)
	}
	return page, nil
}

// Directions returns the distance and duration of the first route
// from origin to destination.
func (c *Client) Directions(ctx context.Context, origin place.Coordinates, destination string) (provider.RouteSummary, error) {
	metrics.ProviderCalls.WithLabelValues("googlemaps", "directions").Inc()

	params := url.Values{}
	params.Set("origin", origin.String())
	params.Set("destination", destination)
	params.Set("key", c.cfg.GoogleMaps.APIKey)

	var resp struct {
		Routes []struct {
			Legs []struct {
				Distance struct {
					Text string `json:"text"`
				} `json:"distance"`
				Duration struct {
					Text string `json:"text"`
				} `json:"duration"`
			} `json:"legs"`
		} `json:"routes"`
	}
	if err := c.getJSON(ctx, directionsURL+"?"+params.Encode(), &resp); err != nil {
		return provider.RouteSummary{}, commonErrors.NewProviderFailure("googlemaps", err)
	}
	if len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return provider.RouteSummary{}, commonErrors.NewProviderFailure("googlemaps",
			fmt.Errorf("no route to %q", destination))
	}
	leg := resp.Routes[0].Legs[0]
	return provider.RouteSummary{Distance: leg.Distance.Text, Duration: leg.Duration.Text}, nil
}

// StaticMapURL builds a static map link centered on the given point.
func (c *Client) StaticMapURL(center place.Coordinates, zoom int) string {
	params := url.Values{}
	params.Set("key", c.cfg.GoogleMaps.APIKey)
	params.Set("center", center.String())
	params.Set("zoom", strconv.Itoa(zoom))
	params.Set("size", "600x600")
	return staticMapURL + "?" + params.Encode()
}

func (c *Client) toRecord(raw placeJSON) place.Record {
	rec := place.Record{
		ID:        raw.PlaceID,
		Name:      raw.Name,
		Address:   raw.FormattedAddress,
		Rating:    raw.Rating,
		PriceTier: place.PriceTierUnknown,
		Types:     raw.Types,
		Location: place.Coordinates{
			Latitude:  raw.Geometry.Location.Lat,
			Longitude: raw.Geometry.Location.Lng,
		},
		DirectionsURL: fmt.Sprintf("%s/%s/%s/", directionsLink,
			url.PathEscape(c.currentAddress), url.PathEscape(raw.FormattedAddress)),
	}
	if raw.PriceLevel != nil {
		rec.PriceTier = *raw.PriceLevel
	}
	if raw.OpeningHours != nil {
		rec.OpenNow = raw.OpeningHours.OpenNow
	}
	rec.IconURL = raw.Icon
	if len(raw.Photos) > 0 && len(raw.Photos[0].HTMLAttributions) > 0 {
		if m := attributionHref.FindStringSubmatch(raw.Photos[0].HTMLAttributions[0]); m != nil {
			rec.IconURL = m[1]
		}
	}
	return rec
}

// enrich fills in the detail-only fields of rec. rec keeps its search
// fields even when the lookup fails.
func (c *Client) enrich(ctx context.Context, rec *place.Record) error {
	metrics.ProviderCalls.WithLabelValues("googlemaps", "details").Inc()

	params := url.Values{}
	params.Set("key", c.cfg.GoogleMaps.PlacesAPIKey)
	params.Set("placeid", rec.ID)

	var resp detailsResponse
	if err := c.getJSON(ctx, placeDetailsURL+"?"+params.Encode(), &resp); err != nil {
		return err
	}
	if resp.Result == nil {
		return nil
	}
	rec.PhoneNumber = resp.Result.FormattedPhoneNumber
	rec.Website = resp.Result.URL
	if resp.Result.OpeningHours != nil {
		for _, p := range resp.Result.OpeningHours.Periods {
			if p.Open == nil {
				continue
			}
			period := place.Period{Day: time.Weekday(p.Open.Day), Open: p.Open.Time}
			if p.Close != nil {
				period.Close = p.Close.Time
			}
			rec.Hours = append(rec.Hours, period)
		}
	}
	for _, rv := range resp.Result.Reviews {
		rec.Reviews = append(rec.Reviews, place.Review{
			Author: rv.AuthorName,
			Rating: rv.Rating,
			Text:   rv.Text,
		})
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
