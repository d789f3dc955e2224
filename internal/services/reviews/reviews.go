package reviews

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
	// DefaultBaseURL is the Yelp Fusion API host
	DefaultBaseURL = "https://api.yelp.com"
	// SearchLimit caps the businesses returned by Search
	SearchLimit = 20
)

// ErrMissingParams is returned when a search lacks a term or a location
var ErrMissingParams = errors.New("term and location are required")

// Provider looks up review data for businesses
type Provider interface {
	Search(ctx context.Context, term, location string) ([]models.Business, error)
	Match(ctx context.Context, name, address string) (*models.ReviewSummary, error)
}

// Live queries the Yelp Fusion business search API
type Live struct {
	BaseURL string
	client  *http.Client
	apiKey  string
}

// NewLive creates a live provider. client is shared with the other providers.
func NewLive(client *http.Client, apiKey string) *Live {
	return &Live{BaseURL: DefaultBaseURL, client: client, apiKey: apiKey}
}

type searchResponse struct {
	Businesses []models.Business `json:"businesses"`
}

// Search returns businesses matching term near location
func (l *Live) Search(ctx context.Context, term, location string) ([]models.Business, error) {
	if strings.TrimSpace(term) == "" || strings.TrimSpace(location) == "" {
		return nil, ErrMissingParams
	}
	return l.search(ctx, term, location, SearchLimit)
}

// Match returns the review summary of the best match for name at address. No match is an empty summary.
func (l *Live) Match(ctx context.Context, name, address string) (*models.ReviewSummary, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(address) == "" {
		return nil, ErrMissingParams
	}
	found, err := l.search(ctx, name, address, 1)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return &models.ReviewSummary{}, nil
	}
	return Summarize(found[0]), nil
}

func (l *Live) search(ctx context.Context, term, location string, limit int) ([]models.Business, error) {
	params := url.Values{}
	params.Set("term", term)
	params.Set("location", location)
	params.Set("limit", strconv.Itoa(limit))

	header := http.Header{}
	header.Set("Authorization", "Bearer "+l.apiKey)

	var resp searchResponse
	reqURL := strings.TrimRight(l.BaseURL, "/") + "/v3/businesses/search?" + params.Encode()
	if err := upstream.GetJSON(ctx, l.client, reqURL, header, &resp); err != nil {
		return nil, fmt.Errorf("business search failed: %w", err)
	}
	return resp.Businesses, nil
}

// Summarize reduces a business to the fields merged into a venue
func Summarize(b models.Business) *models.ReviewSummary {
	rating := b.Rating
	count := b.ReviewCount
	return &models.ReviewSummary{
		ReviewRating: &rating,
		Reviews:      &count,
		Price:        b.Price,
		URL:          b.URL,
	}
}
