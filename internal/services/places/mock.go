package places

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/benvon/datenight/internal/models"
	"github.com/benvon/datenight/internal/services/upstream"
)

const mockResultCount = 6

var mockStreets = []string{"Main St", "Center St", "State St", "University Ave", "Canyon Rd", "Timpanogos Hwy"}

var mockSuffixes = []string{"House", "Co.", "Collective", "Spot", "Corner", "Place", "Hub", "Lounge"}

// Mock returns deterministic places scattered around the search point
type Mock struct{}

// NewMock creates a mock provider
func NewMock() *Mock {
	return &Mock{}
}

// TextSearch answers the same query with the same places
func (Mock) TextSearch(_ context.Context, q Query) ([]models.Place, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if q.RadiusMeters <= 0 {
		q.RadiusMeters = DefaultRadiusMeters
	}

	rng := upstream.Seeded("places", strings.ToLower(text))
	// one degree of latitude is about 111 km
	spread := float64(q.RadiusMeters) / 111000

	out := make([]models.Place, 0, mockResultCount)
	for i := range mockResultCount {
		name := fmt.Sprintf("%s %s", titleCase(text), mockSuffixes[rng.IntN(len(mockSuffixes))])
		level := rng.IntN(4) + 1
		out = append(out, models.Place{
			ID:         fmt.Sprintf("mock-place-%x-%d", rng.Uint32(), i),
			Name:       name,
			Address:    fmt.Sprintf("%d %s, Lehi, UT 84043", rng.IntN(999)+1, mockStreets[rng.IntN(len(mockStreets))]),
			Rating:     float64(30+rng.IntN(21)) / 10,
			PriceLevel: &level,
			Photos:     []string{"https://placehold.co/400x300?text=" + url.QueryEscape(name)},
			Location: &models.Location{
				Lat: q.Lat + (rng.Float64()*2-1)*spread/2,
				Lng: q.Lng + (rng.Float64()*2-1)*spread/2,
			},
			Types: []string{"point_of_interest", "establishment"},
		})
	}
	return out, nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
