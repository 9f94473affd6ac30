package navigator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
	"github.com/johnny-stegall/Digital-Assistant/internal/intent"
	"github.com/johnny-stegall/Digital-Assistant/internal/place"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider"
	"github.com/johnny-stegall/Digital-Assistant/internal/session"
)

type fakeMaps struct {
	lastQuery place.SearchQuery
	responses []place.ResultPage
}

func (f *fakeMaps) Search(ctx context.Context, query place.SearchQuery) (place.ResultPage, error) {
	f.lastQuery = query
	if len(f.responses) == 0 {
		return place.ResultPage{}, nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeMaps) Directions(ctx context.Context, origin place.Coordinates, destination string) (provider.RouteSummary, error) {
	return provider.RouteSummary{Distance: "3 miles", Duration: "9 minutes"}, nil
}

func (f *fakeMaps) StaticMapURL(center place.Coordinates, zoom int) string {
	return "https://maps.example.com/static?center=" + center.String()
}

func testRecords(names ...string) []place.Record {
	out := make([]place.Record, len(names))
	for i, name := range names {
		out[i] = place.Record{ID: name, Name: name}
	}
	return out
}

func newTestHandler(t *testing.T, maps *fakeMaps) *Handler {
	t.Helper()
	cfg := &Config{
		CurrentCoordinates: place.Coordinates{Latitude: 33.078855, Longitude: -96.826350},
		LocalRadius:        "5 miles",
	}
	log := logger.NewNoOpLogger()
	sessions := session.NewManager(session.NewMemoryStore(), maps, log)
	return NewHandler(cfg, sessions, maps, log)
}

func payloadWith(entities ...intent.Entity) *intent.Payload {
	return &intent.Payload{ConversationID: "conversation-1", Entities: entities}
}

func entity(kind, text string, values ...string) intent.Entity {
	return intent.Entity{Kind: kind, Text: text, ResolvedValues: values}
}

func TestSearch_QueryConstruction(t *testing.T) {
	tests := []struct {
		name     string
		entities []intent.Entity
		check    func(t *testing.T, q place.SearchQuery)
	}{
		{
			name: "place type with explicit distance",
			entities: []intent.Entity{
				entity(intent.KindPlaceType, "steakhouse"),
				entity(intent.KindDimension, "2 miles"),
			},
			check: func(t *testing.T, q place.SearchQuery) {
				assert.Equal(t, "steakhouse", q.PointOfInterest)
				assert.Equal(t, 3218, q.RadiusMeters)
				require.NotNil(t, q.Coordinates)
			},
		},
		{
			name: "nearby proximity applies the local radius",
			entities: []intent.Entity{
				entity(intent.KindPlaceType, "coffee"),
				entity(intent.KindProximity, "nearby"),
			},
			check: func(t *testing.T, q place.SearchQuery) {
				assert.Equal(t, 8045, q.RadiusMeters)
			},
		},
		{
			name: "duration folds into the query text",
			entities: []intent.Entity{
				entity(intent.KindPlaceType, "gas station"),
				entity(intent.KindDuration, "10 minutes", "600"),
			},
			check: func(t *testing.T, q place.SearchQuery) {
				assert.Equal(t, "gas station within 10 minutes", q.PointOfInterest)
				assert.Zero(t, q.RadiusMeters)
			},
		},
		{
			name: "city folds into the query and drops coordinates",
			entities: []intent.Entity{
				entity(intent.KindPlaceType, "tacos"),
				entity(intent.KindCity, "Plano"),
			},
			check: func(t *testing.T, q place.SearchQuery) {
				assert.Equal(t, "tacos of Plano", q.PointOfInterest)
				assert.Nil(t, q.Coordinates)
			},
		},
		{
			name: "cheap caps the price tier",
			entities: []intent.Entity{
				entity(intent.KindPlaceType, "pizza"),
				entity(intent.KindPrice, "cheap"),
			},
			check: func(t *testing.T, q place.SearchQuery) {
				assert.Equal(t, 2, q.MaxPrice)
				assert.Equal(t, place.PriceTierUnknown, q.MinPrice)
			},
		},
		{
			name: "expensive raises the price floor",
			entities: []intent.Entity{
				entity(intent.KindPlaceType, "sushi"),
				entity(intent.KindPrice, "expensive"),
			},
			check: func(t *testing.T, q place.SearchQuery) {
				assert.Equal(t, 3, q.MinPrice)
				assert.Equal(t, place.PriceTierUnknown, q.MaxPrice)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maps := &fakeMaps{responses: []place.ResultPage{{Places: testRecords("First")}}}
			h := newTestHandler(t, maps)

			_, err := h.Search(context.Background(), payloadWith(tt.entities...))
			require.NoError(t, err)
			tt.check(t, maps.lastQuery)
		})
	}
}

func TestSearch_ListsPlaces(t *testing.T) {
	maps := &fakeMaps{responses: []place.ResultPage{
		{Places: testRecords("Alinea", "Bavette's"), NextPageToken: "token-1"},
	}}
	h := newTestHandler(t, maps)

	out, err := h.Search(context.Background(), payloadWith(entity(intent.KindPlaceType, "restaurant")))
	require.NoError(t, err)
	assert.Equal(t, "I found at least 2 places. Would you like additional details on any of them?", out.Reply)
	assert.Len(t, out.Places, 2)
	assert.True(t, out.HasMore)
}

func TestSearch_NothingFound(t *testing.T) {
	maps := &fakeMaps{}
	h := newTestHandler(t, maps)

	out, err := h.Search(context.Background(), payloadWith(entity(intent.KindPlaceType, "unicorn rides")))
	require.NoError(t, err)
	assert.Equal(t, "Sorry, I couldn't find anything.", out.Reply)
	assert.Empty(t, out.Places)
}

func TestSearch_ClosestKeepsOneResult(t *testing.T) {
	maps := &fakeMaps{responses: []place.ResultPage{
		{Places: testRecords("Alinea", "Bavette's", "Ceres"), NextPageToken: "token-1"},
	}}
	h := newTestHandler(t, maps)

	out, err := h.Search(context.Background(), payloadWith(
		entity(intent.KindPlaceType, "gas station"),
		entity(intent.KindProximity, "closest"),
	))
	require.NoError(t, err)
	require.Len(t, out.Places, 1)
	assert.Equal(t, "Alinea", out.Places[0].Name)
	assert.False(t, out.HasMore)
}

func TestPagination_Replies(t *testing.T) {
	maps := &fakeMaps{responses: []place.ResultPage{
		{Places: testRecords("Alinea"), NextPageToken: "token-1"},
		{Places: testRecords("Bavette's", "Ceres")},
	}}
	h := newTestHandler(t, maps)
	ctx := context.Background()
	payload := payloadWith(entity(intent.KindPlaceType, "restaurant"))

	_, err := h.Search(ctx, payload)
	require.NoError(t, err)

	out, err := h.PreviousPage(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, "You're on the first page of results.", out.Reply)

	out, err = h.NextPage(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, "I found another 2 places. Would you like additional details on any of them?", out.Reply)

	out, err = h.NextPage(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, "There's no more results.", out.Reply)

	out, err = h.RestartListing(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, "I found another 1 places. Would you like additional details on any of them?", out.Reply)
	assert.Equal(t, "Alinea", out.Places[0].Name)
}

func TestPagination_WithoutSearch(t *testing.T) {
	h := newTestHandler(t, &fakeMaps{})

	out, err := h.NextPage(context.Background(), payloadWith())
	require.NoError(t, err)
	assert.Equal(t, "You haven't searched for anything yet.", out.Reply)
}

func TestSelectPlace(t *testing.T) {
	maps := &fakeMaps{responses: []place.ResultPage{
		{Places: testRecords("Alinea", "Bavette's", "Ceres")},
	}}
	h := newTestHandler(t, maps)
	ctx := context.Background()

	_, err := h.Search(ctx, payloadWith(entity(intent.KindPlaceType, "restaurant")))
	require.NoError(t, err)

	rec, out, err := h.SelectPlace(ctx, payloadWith(entity(intent.KindOrdinal, "second", "2")))
	require.NoError(t, err)
	assert.Equal(t, "Bavette's", rec.Name)
	assert.Equal(t, "What can I tell you about Bavette's?", out.Reply)

	rec, out, err = h.SelectPlace(ctx, payloadWith(entity(intent.KindPlaceName, "ceres")))
	require.NoError(t, err)
	assert.Equal(t, "Ceres", rec.Name)

	_, out, err = h.SelectPlace(ctx, payloadWith(entity(intent.KindNumber, "7", "7")))
	require.NoError(t, err)
	assert.Equal(t, "I'm sorry, I didn't understand that. Can you try again?", out.Reply)
}

func TestShowMap(t *testing.T) {
	h := newTestHandler(t, &fakeMaps{})

	out := h.ShowMap(payloadWith())
	assert.Equal(t, "Here's where you are.", out.Reply)
	assert.Contains(t, out.MapURL, "maps.example.com")
}
