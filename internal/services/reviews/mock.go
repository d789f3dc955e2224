package reviews

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/benvon/datenight/internal/models"
	"github.com/benvon/datenight/internal/services/upstream"
)

const (
	defaultMockTerm = "Restaurant"
	mockLat         = 40.2338
	mockLng         = -111.6585
)

type mockEntry struct {
	name     string
	rating   float64
	price    string
	category string
}

var mockCatalogue = map[string][]mockEntry{
	"Restaurant": {
		{"The Local Bistro", 4.5, "$$", "restaurant"},
		{"Farm to Table", 4.2, "$$$", "restaurant"},
		{"Urban Plate", 4.0, "$$", "restaurant"},
	},
	"Coffee Shop": {
		{"Brew & Beans", 4.8, "$", "coffee"},
		{"Morning Fix", 4.3, "$", "coffee"},
		{"Caffeine Corner", 4.1, "$", "coffee"},
	},
	"Movie Theater": {
		{"Cinema Center", 4.2, "$$", "entertainment"},
		{"Downtown Movies", 3.9, "$$", "entertainment"},
	},
	"Museum": {
		{"City Art Museum", 4.6, "$$", "arts"},
		{"Historical Museum", 4.4, "$", "arts"},
	},
	"Park": {
		{"Central Park", 4.8, "Free", "outdoors"},
		{"Riverside Park", 4.5, "Free", "outdoors"},
	},
}

// Mock serves a fixed catalogue. Fields a real provider would vary are derived from
// the business name and term so repeated calls agree.
type Mock struct{}

// NewMock creates a mock provider
func NewMock() *Mock {
	return &Mock{}
}

// Search returns the catalogue entries for term, or the restaurant entries for an unknown term
func (Mock) Search(_ context.Context, term, location string) ([]models.Business, error) {
	if strings.TrimSpace(term) == "" || strings.TrimSpace(location) == "" {
		return nil, ErrMissingParams
	}
	return mockBusinesses(term, location), nil
}

// Match picks a catalogue business for name, so every place gets plausible review data
func (Mock) Match(_ context.Context, name, address string) (*models.ReviewSummary, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(address) == "" {
		return nil, ErrMissingParams
	}
	rng := upstream.Seeded("match", name, address)
	entries := mockCatalogue[defaultMockTerm]
	e := entries[rng.IntN(len(entries))]
	rating := e.rating
	count := rng.IntN(200) + 50
	return &models.ReviewSummary{
		ReviewRating: &rating,
		Reviews:      &count,
		Price:        e.price,
		URL:          "https://example.com",
	}, nil
}

func mockBusinesses(term, location string) []models.Business {
	entries, ok := mockCatalogue[term]
	if !ok {
		entries = mockCatalogue[defaultMockTerm]
	}

	out := make([]models.Business, 0, len(entries))
	for i, e := range entries {
		rng := upstream.Seeded("search", term, e.name)
		street := fmt.Sprintf("%d Main St", rng.IntN(999)+1)
		out = append(out, models.Business{
			ID:          fmt.Sprintf("mock-%s-%d", term, i),
			Name:        e.name,
			Rating:      e.rating,
			ReviewCount: rng.IntN(200) + 50,
			Price:       e.price,
			URL:         "https://example.com",
			ImageURL:    "https://placehold.co/400x300/random?text=" + url.QueryEscape(e.name),
			Categories:  []models.BusinessCategory{{Title: e.category}},
			Location: models.BusinessLocation{
				Address1:       street,
				City:           location,
				State:          "UT",
				ZipCode:        "84043",
				DisplayAddress: []string{street, location},
			},
			Coordinates: models.Coordinates{
				Latitude:  mockLat + (rng.Float64()*0.1 - 0.05),
				Longitude: mockLng + (rng.Float64()*0.1 - 0.05),
			},
			Phone:        fmt.Sprintf("+1%d", rng.IntN(1000000000)+1000000000),
			DisplayPhone: fmt.Sprintf("(%d) %d-%d", rng.IntN(900)+100, rng.IntN(900)+100, rng.IntN(9000)+1000),
		})
	}
	return out
}
