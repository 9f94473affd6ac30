// Package googlecalendar implements the calendar capability against
// the Google Calendar v3 REST API using a bearer access token.
package googlecalendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/johnny-stegall/Digital-Assistant/internal/common/config"
	commonErrors "github.com/johnny-stegall/Digital-Assistant/internal/common/errors"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/httpclient"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/metrics"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider"
)

const baseURL = "https://www.googleapis.com/calendar/v3/calendars"

// Conflicts are checked against events within eight hours of the
// requested start on either side.
const conflictWindow = 8 * time.Hour

// Attendee names are mapped to addresses in a placeholder directory
// domain until a real directory lookup exists.
const attendeeDomain = "bogus-email.com"

var timeNow = time.Now

// Client talks to one Google calendar identified by CalendarID.
type Client struct {
	cfg  config.ProvidersConfig
	http *httpclient.Client
	log  logger.Logger
}

func New(cfg config.ProvidersConfig, log logger.Logger) *Client {
	timeout := time.Duration(cfg.GoogleCalendar.Timeout) * time.Millisecond
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: httpclient.NewClient(timeout), log: log}
}

type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventJSON struct {
	ID          string     `json:"id,omitempty"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       eventTime  `json:"start"`
	End         eventTime  `json:"end"`
	Attendees   []attendee `json:"attendees,omitempty"`
}

type attendee struct {
	Email string `json:"email"`
}

// CreateEvent inserts ev and returns the created event ID. A missing
// location is stored as "TBD".
func (c *Client) CreateEvent(ctx context.Context, ev provider.Event) (string, error) {
	metrics.ProviderCalls.WithLabelValues("googlecalendar", "create_event").Inc()

	location := ev.Location
	if location == "" {
		location = "TBD"
	}
	body := eventJSON{
		Summary:     ev.Title,
		Description: ev.Title,
		Location:    location,
		Start: eventTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: c.cfg.GoogleCalendar.TimeZone,
		},
		End: eventTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: c.cfg.GoogleCalendar.TimeZone,
		},
	}
	for _, name := range ev.Attendees {
		body.Attendees = append(body.Attendees, attendee{Email: resolveEmail(name)})
	}

	var created eventJSON
	err := c.do(ctx, http.MethodPost, c.eventsURL(""), body, &created)
	if err != nil {
		return "", commonErrors.NewProviderFailure("googlecalendar", err)
	}
	return created.ID, nil
}

// DeleteEvent finds the event matching ref among upcoming events and
// deletes it. provider.ErrEventNotFound is returned when nothing
// matches.
func (c *Client) DeleteEvent(ctx context.Context, ref provider.EventRef) error {
	metrics.ProviderCalls.WithLabelValues("googlecalendar", "delete_event").Inc()

	events, err := c.listEvents(ctx, timeNow(), timeNow().AddDate(0, 0, 7))
	if err != nil {
		return commonErrors.NewProviderFailure("googlecalendar", err)
	}

	for _, ev := range events {
		if !matchesRef(ev, ref) {
			continue
		}
		if err := c.do(ctx, http.MethodDelete, c.eventsURL(ev.ID), nil, nil); err != nil {
			return commonErrors.NewProviderFailure("googlecalendar", err)
		}
		return nil
	}
	return provider.ErrEventNotFound
}

// IsAvailable reports whether no event overlaps the span. Spans in
// the past are never available.
func (c *Client) IsAvailable(ctx context.Context, start, end time.Time) (bool, error) {
	metrics.ProviderCalls.WithLabelValues("googlecalendar", "is_available").Inc()

	if start.Before(timeNow()) {
		return false, nil
	}

	events, err := c.listEvents(ctx, start.Add(-conflictWindow), start.Add(conflictWindow))
	if err != nil {
		return false, commonErrors.NewProviderFailure("googlecalendar", err)
	}

	for _, ev := range events {
		evStart, okStart := parseEventTime(ev.Start)
		evEnd, okEnd := parseEventTime(ev.End)
		if !okStart || !okEnd {
			continue
		}
		if evStart.Equal(start) {
			return false, nil
		}
		if evStart.After(start) && evStart.Before(end) {
			return false, nil
		}
		if evEnd.After(start) && evEnd.Before(end) {
			return false, nil
		}
	}
	return true, nil
}

// UpdateEvent is not implemented by this backend.
func (c *Client) UpdateEvent(ctx context.Context, ev provider.Event) error {
	return provider.ErrNotSupported
}

func (c *Client) listEvents(ctx context.Context, timeMin, timeMax time.Time) ([]eventJSON, error) {
	params := url.Values{}
	params.Set("timeMin", timeMin.UTC().Format(time.RFC3339))
	params.Set("timeMax", timeMax.UTC().Format(time.RFC3339))
	params.Set("maxResults", "100")
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")

	var resp struct {
		Items []eventJSON `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, c.eventsURL("")+"?"+params.Encode(), nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) eventsURL(eventID string) string {
	u := fmt.Sprintf("%s/%s/events", baseURL, url.PathEscape(c.calendarID()))
	if eventID != "" {
		u += "/" + url.PathEscape(eventID)
	}
	return u
}

func (c *Client) calendarID() string {
	if c.cfg.GoogleCalendar.CalendarID != "" {
		return c.cfg.GoogleCalendar.CalendarID
	}
	return "primary"
}

func (c *Client) do(ctx context.Context, method, rawURL string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, rawURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.GoogleCalendar.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// matchesRef matches by start time when the reference carries one,
// otherwise by case-insensitive title.
func matchesRef(ev eventJSON, ref provider.EventRef) bool {
	if ref.ByTitle() {
		return strings.EqualFold(ev.Summary, ref.Title)
	}
	start, ok := parseEventTime(ev.Start)
	return ok && start.Equal(ref.Start)
}

func parseEventTime(et eventTime) (time.Time, bool) {
	if et.DateTime != "" {
		t, err := time.Parse(time.RFC3339, et.DateTime)
		return t, err == nil
	}
	if et.Date != "" {
		t, err := time.Parse("2006-01-02", et.Date)
		return t, err == nil
	}
	return time.Time{}, false
}

func resolveEmail(name string) string {
	tokens := strings.Fields(name)
	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return tokens[0] + "@" + attendeeDomain
	default:
		return tokens[0] + "." + tokens[1] + "@" + attendeeDomain
	}
}
