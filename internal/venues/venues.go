// Package venues merges place results with review data and shapes them into pages.
package venues

import (
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/benvon/datenight/internal/geo"
	"github.com/benvon/datenight/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	// PricePerTier converts a price tier or price level into an estimated cost per person
	PricePerTier = 15
	// DefaultPageSize is used when a request does not name a page size
	DefaultPageSize = 10
	// MaxPageSize caps a single page
	MaxPageSize = 50
	// enrichConcurrency bounds the review lookups in flight for one listing
	enrichConcurrency = 8
)

// Matcher finds review data for a place by name and address
type Matcher interface {
	Match(ctx context.Context, name, address string) (*models.ReviewSummary, error)
}

// Page is one slice of a listing
type Page struct {
	Items      []models.Venue `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// Enrich turns places into venues with their distance from origin and, where the
// matcher answers, review data. Places sharing a name and address share one lookup.
// A failed lookup leaves its venues un-enriched and is reported to onError when set.
func Enrich(ctx context.Context, origin models.Location, places []models.Place, matcher Matcher, onError func(models.Place, error)) []models.Venue {
	out := make([]models.Venue, len(places))
	for i, p := range places {
		out[i] = models.Venue{Place: p}
		if p.Location != nil && !origin.IsZero() {
			out[i].DistanceMeters = geo.DistanceMeters(origin, *p.Location)
		}
	}
	if matcher == nil || len(places) == 0 {
		return out
	}

	keys := make([]string, 0, len(places))
	first := make(map[string]int, len(places))
	for i, p := range places {
		k := matchKey(p)
		if _, ok := first[k]; !ok {
			first[k] = i
			keys = append(keys, k)
		}
	}

	summaries := make([]*models.ReviewSummary, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i, k := range keys {
		p := places[first[k]]
		g.Go(func() error {
			sum, err := matcher.Match(gctx, p.Name, p.Address)
			if err != nil {
				if onError != nil {
					onError(p, err)
				}
				return nil
			}
			summaries[i] = sum
			return nil
		})
	}
	_ = g.Wait()

	byKey := make(map[string]*models.ReviewSummary, len(keys))
	for i, k := range keys {
		byKey[k] = summaries[i]
	}
	for i := range out {
		if sum := byKey[matchKey(places[i])]; sum != nil {
			out[i].ReviewSummary = *sum
		}
	}
	return out
}

func matchKey(p models.Place) string {
	return strings.ToLower(strings.TrimSpace(p.Name)) + "\x00" + strings.ToLower(strings.TrimSpace(p.Address))
}

// EstimatedPrice is the review price tier length times PricePerTier, else the price
// level times PricePerTier, else 0
func EstimatedPrice(v models.Venue) int {
	if v.Price != "" {
		return utf8.RuneCountInString(v.Price) * PricePerTier
	}
	if v.PriceLevel != nil {
		return *v.PriceLevel * PricePerTier
	}
	return 0
}

// Keep reports whether v passes prefs. Venues with unknown distance pass the distance check.
func Keep(v models.Venue, prefs models.Preferences) bool {
	price := EstimatedPrice(v)
	if price < prefs.PriceRangeMin || price > prefs.PriceRangeMax {
		return false
	}
	return v.DistanceMeters == 0 || geo.MetersToMiles(v.DistanceMeters) <= prefs.MaxDistanceMiles
}

// Filter returns the venues that pass prefs, in input order
func Filter(venues []models.Venue, prefs models.Preferences) []models.Venue {
	out := make([]models.Venue, 0, len(venues))
	for _, v := range venues {
		if Keep(v, prefs) {
			out = append(out, v)
		}
	}
	return out
}

// MarkFavorites sets Favorite on every venue whose id is in ids
func MarkFavorites(venues []models.Venue, ids map[string]bool) {
	for i := range venues {
		venues[i].Favorite = ids[venues[i].ID]
	}
}

// Sort orders favorites first, then by ascending distance with unknown distances
// last. Equal venues keep their input order.
func Sort(venues []models.Venue) {
	slices.SortStableFunc(venues, compare)
}

func compare(a, b models.Venue) int {
	if a.Favorite != b.Favorite {
		if a.Favorite {
			return -1
		}
		return 1
	}
	switch {
	case a.DistanceMeters == b.DistanceMeters:
		return 0
	case a.DistanceMeters == 0:
		return 1
	case b.DistanceMeters == 0:
		return -1
	case a.DistanceMeters < b.DistanceMeters:
		return -1
	default:
		return 1
	}
}

// Paginate returns page (1-based) of venues. Out of range pages are empty.
func Paginate(venues []models.Venue, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)
	page = max(page, 1)

	total := len(venues)
	p := Page{
		Items:      []models.Venue{},
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	start := (page - 1) * pageSize
	if start >= total {
		return p
	}
	end := min(start+pageSize, total)
	p.Items = slices.Clone(venues[start:end])
	return p
}

// List filters, marks favorites, sorts and paginates without modifying venues
func List(venues []models.Venue, prefs models.Preferences, favorites map[string]bool, page, pageSize int) Page {
	kept := Filter(venues, prefs)
	MarkFavorites(kept, favorites)
	Sort(kept)
	return Paginate(kept, page, pageSize)
}
