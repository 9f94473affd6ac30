// Package elasticplaces implements place search against a local
// Elasticsearch index, for deployments without Google Maps access.
package elasticplaces

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/johnny-stegall/Digital-Assistant/internal/common/database"
	commonErrors "github.com/johnny-stegall/Digital-Assistant/internal/common/errors"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/metrics"
	"github.com/johnny-stegall/Digital-Assistant/internal/place"
	"github.com/johnny-stegall/Digital-Assistant/internal/provider"
)

const pageSize = 20

// Client searches a place index. Pagination uses search_after; the
// continuation token encodes the sort values of the last hit of the
// prior page.
type Client struct {
	es    *database.ElasticsearchClient
	index string
	log   logger.Logger
}

func New(es *database.ElasticsearchClient, index string, log logger.Logger) *Client {
	return &Client{es: es, index: index, log: log}
}

type document struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	PriceTier   *int     `json:"price_tier"`
	Rating      float64  `json:"rating"`
	OpenNow     bool     `json:"open_now"`
	PhoneNumber string   `json:"phone_number"`
	Website     string   `json:"website"`
	Types       []string `json:"types"`
	Location    struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
}

type searchResult struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source document        `json:"_source"`
			Sort   json.RawMessage `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a match query over the index with optional price and
// geo-distance filters.
func (c *Client) Search(ctx context.Context, query place.SearchQuery) (place.ResultPage, error) {
	metrics.ProviderCalls.WithLabelValues("elasticsearch", "search").Inc()

	body, err := buildQuery(query)
	if err != nil {
		return place.ResultPage{}, commonErrors.NewProviderFailure("elasticsearch", err)
	}

	res, err := c.es.Client.Search(
		c.es.Client.Search.WithContext(ctx),
		c.es.Client.Search.WithIndex(c.index),
		c.es.Client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return place.ResultPage{}, commonErrors.NewProviderFailure("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return place.ResultPage{}, commonErrors.NewProviderFailure("elasticsearch",
			fmt.Errorf("search failed: %s: %s", res.Status(), raw))
	}

	var result searchResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return place.ResultPage{}, commonErrors.NewProviderFailure("elasticsearch", err)
	}

	page := place.ResultPage{}
	for _, hit := range result.Hits.Hits {
		page.Places = append(page.Places, toRecord(hit.ID, hit.Source))
	}
	if len(result.Hits.Hits) == pageSize {
		last := result.Hits.Hits[len(result.Hits.Hits)-1]
		page.NextPageToken = encodeToken(last.Sort)
	}
	return page, nil
}

// Directions is not served by the index.
func (c *Client) Directions(ctx context.Context, origin place.Coordinates, destination string) (provider.RouteSummary, error) {
	return provider.RouteSummary{}, provider.ErrNotSupported
}

// StaticMapURL is not served by the index.
func (c *Client) StaticMapURL(center place.Coordinates, zoom int) string {
	return ""
}

func buildQuery(query place.SearchQuery) ([]byte, error) {
	must := []map[string]interface{}{
		{"match": map[string]interface{}{"name": query.PointOfInterest}},
	}
	var filter []map[string]interface{}

	priceRange := map[string]interface{}{}
	if query.MinPrice != place.PriceTierUnknown {
		priceRange["gte"] = query.MinPrice
	}
	if query.MaxPrice != place.PriceTierUnknown {
		priceRange["lte"] = query.MaxPrice
	}
	if len(priceRange) > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"price_tier": priceRange},
		})
	}
	if query.Coordinates != nil && query.RadiusMeters > 0 {
		filter = append(filter, map[string]interface{}{
			"geo_distance": map[string]interface{}{
				"distance": fmt.Sprintf("%dm", query.RadiusMeters),
				"location": map[string]interface{}{
					"lat": query.Coordinates.Latitude,
					"lon": query.Coordinates.Longitude,
				},
			},
		})
	}

	body := map[string]interface{}{
		"size": pageSize,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": []map[string]interface{}{
			{"rating": map[string]interface{}{"order": "desc"}},
			{"_id": map[string]interface{}{"order": "asc"}},
		},
	}

	if query.PageToken != "" {
		after, err := decodeToken(query.PageToken)
		if err != nil {
			return nil, fmt.Errorf("bad continuation token: %w", err)
		}
		body["search_after"] = after
	}
	return json.Marshal(body)
}

func toRecord(id string, doc document) place.Record {
	rec := place.Record{
		ID:          id,
		Name:        doc.Name,
		Address:     doc.Address,
		Rating:      doc.Rating,
		PriceTier:   place.PriceTierUnknown,
		OpenNow:     doc.OpenNow,
		PhoneNumber: doc.PhoneNumber,
		Website:     doc.Website,
		Types:       doc.Types,
		Location: place.Coordinates{
			Latitude:  doc.Location.Lat,
			Longitude: doc.Location.Lon,
		},
	}
	if doc.PriceTier != nil {
		rec.PriceTier = *doc.PriceTier
	}
	return rec
}

func encodeToken(sort json.RawMessage) string {
	return base64.URLEncoding.EncodeToString(sort)
}

func decodeToken(token string) (json.RawMessage, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	var values []interface{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}
