package places

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/benvon/datenight/internal/models"
	"github.com/benvon/datenight/internal/services/upstream"
)

const (
	// DefaultBaseURL is the Google Maps web service host
	DefaultBaseURL = "https://maps.googleapis.com"
	// DefaultRadiusMeters is used when a search does not name a radius
	DefaultRadiusMeters = 10000
	// PhotoMaxWidth is the width requested for place photos
	PhotoMaxWidth = 400
)

// ErrEmptyQuery is returned when a search has no text
var ErrEmptyQuery = errors.New("query is required")

// Query is a text search around a point
type Query struct {
	Text         string
	Lat          float64
	Lng          float64
	RadiusMeters int
}

// Provider searches for places matching free text
type Provider interface {
	TextSearch(ctx context.Context, q Query) ([]models.Place, error)
}

// Live queries the Google Places Text Search API
type Live struct {
	BaseURL string
	client  *http.Client
	apiKey  string
}

// NewLive creates a live provider. client is shared with the other providers.
func NewLive(client *http.Client, apiKey string) *Live {
	return &Live{BaseURL: DefaultBaseURL, client: client, apiKey: apiKey}
}

type textSearchResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []googlePlace `json:"results"`
}

type googlePlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           float64  `json:"rating"`
	PriceLevel       *int     `json:"price_level"`
	Types            []string `json:"types"`
	Photos           []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
	Geometry *struct {
		Location *models.Location `json:"location"`
	} `json:"geometry"`
}

// TextSearch runs one text search. ZERO_RESULTS is an empty answer, any other non-OK status an error.
func (l *Live) TextSearch(ctx context.Context, q Query) ([]models.Place, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, ErrEmptyQuery
	}
	if q.RadiusMeters <= 0 {
		q.RadiusMeters = DefaultRadiusMeters
	}

	params := url.Values{}
	params.Set("query", q.Text)
	params.Set("location", strconv.FormatFloat(q.Lat, 'f', -1, 64)+","+strconv.FormatFloat(q.Lng, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(q.RadiusMeters))
	params.Set("key", l.apiKey)

	var resp textSearchResponse
	reqURL := strings.TrimRight(l.BaseURL, "/") + "/maps/api/place/textsearch/json?" + params.Encode()
	if err := upstream.GetJSON(ctx, l.client, reqURL, nil, &resp); err != nil {
		return nil, fmt.Errorf("places text search failed: %w", err)
	}

	switch resp.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return nil, fmt.Errorf("places text search returned %s: %s", resp.Status, resp.ErrorMessage)
	}

	out := make([]models.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		p := models.Place{
			ID:         r.PlaceID,
			Name:       r.Name,
			Address:    r.FormattedAddress,
			Rating:     r.Rating,
			PriceLevel: r.PriceLevel,
			Types:      r.Types,
			Photos:     make([]string, 0, len(r.Photos)),
		}
		for _, ph := range r.Photos {
			p.Photos = append(p.Photos, l.PhotoURL(ph.PhotoReference))
		}
		if r.Geometry != nil && r.Geometry.Location != nil {
			loc := *r.Geometry.Location
			p.Location = &loc
		}
		out = append(out, p)
	}
	return out, nil
}

// PhotoURL builds the photo endpoint URL for a photo reference
func (l *Live) PhotoURL(reference string) string {
	params := url.Values{}
	params.Set("maxwidth", strconv.Itoa(PhotoMaxWidth))
	params.Set("photoreference", reference)
	params.Set("key", l.apiKey)
	return strings.TrimRight(l.BaseURL, "/") + "/maps/api/place/photo?" + params.Encode()
}
