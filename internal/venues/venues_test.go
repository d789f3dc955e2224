package venues

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/benvon/datenight/internal/models"
)

func intPtr(i int) *int { return &i }

type fakeMatcher struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (f *fakeMatcher) Match(_ context.Context, name, _ string) (*models.ReviewSummary, error) {
	f.calls.Add(1)
	if f.fail[name] {
		return nil, errors.New("upstream down")
	}
	rating := 4.5
	return &models.ReviewSummary{ReviewRating: &rating, Price: "$$"}, nil
}

func TestEnrich(t *testing.T) {
	t.Parallel()
	origin := models.Location{Lat: 40.3916, Lng: -111.8508}
	places := []models.Place{
		{ID: "a", Name: "Alpha", Address: "1 Main", Location: &models.Location{Lat: 40.40, Lng: -111.85}},
		{ID: "b", Name: "Broken", Address: "2 Main", Location: &models.Location{Lat: 40.41, Lng: -111.85}},
		{ID: "c", Name: "alpha", Address: "1 main "},
	}
	m := &fakeMatcher{fail: map[string]bool{"Broken": true}}

	var mu sync.Mutex
	var failed []string
	got := Enrich(context.Background(), origin, places, m, func(p models.Place, _ error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, p.ID)
	})

	if len(got) != 3 {
		t.Fatalf("Enrich() returned %d venues, want 3", len(got))
	}
	if m.calls.Load() != 2 {
		t.Errorf("Match called %d times, want 2 (one per distinct name+address)", m.calls.Load())
	}
	if got[0].ReviewRating == nil || got[0].Price != "$$" {
		t.Errorf("venue a not enriched: %+v", got[0])
	}
	if got[2].ReviewRating == nil {
		t.Error("venue c should share the lookup of venue a")
	}
	if got[1].ReviewRating != nil {
		t.Error("failed lookup should leave venue b un-enriched")
	}
	if len(failed) != 1 || failed[0] != "b" {
		t.Errorf("onError saw %v, want [b]", failed)
	}
	if got[0].DistanceMeters <= 0 || got[2].DistanceMeters != 0 {
		t.Errorf("distances = %v, %v, want positive and unknown", got[0].DistanceMeters, got[2].DistanceMeters)
	}
	if got[0].Name != "Alpha" || got[0].ID != "a" {
		t.Errorf("place fields not carried: %+v", got[0].Place)
	}
}

func TestEstimatedPrice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		v    models.Venue
		want int
	}{
		{"tier wins", models.Venue{Place: models.Place{PriceLevel: intPtr(4)}, ReviewSummary: models.ReviewSummary{Price: "$$"}}, 30},
		{"level", models.Venue{Place: models.Place{PriceLevel: intPtr(3)}}, 45},
		{"unknown", models.Venue{}, 0},
	}
	for _, tt := range tests {
		if got := EstimatedPrice(tt.v); got != tt.want {
			t.Errorf("%s: EstimatedPrice() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()
	prefs := models.Preferences{PriceRangeMin: 15, PriceRangeMax: 45, MaxDistanceMiles: 5}
	venues := []models.Venue{
		{Place: models.Place{ID: "cheap-near", PriceLevel: intPtr(1)}, DistanceMeters: 1000},
		{Place: models.Place{ID: "free"}, DistanceMeters: 1000},
		{Place: models.Place{ID: "pricey", PriceLevel: intPtr(4)}, DistanceMeters: 1000},
		{Place: models.Place{ID: "far", PriceLevel: intPtr(2)}, DistanceMeters: 5 * 1609.34 * 1.01},
		{Place: models.Place{ID: "edge", PriceLevel: intPtr(3)}, DistanceMeters: 4.99 * 1609.34},
		{Place: models.Place{ID: "unknown-distance", PriceLevel: intPtr(2)}},
	}
	got := Filter(venues, prefs)
	want := []string{"cheap-near", "edge", "unknown-distance"}
	if len(got) != len(want) {
		t.Fatalf("Filter() kept %d venues, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Filter()[%d] = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestSort(t *testing.T) {
	t.Parallel()
	venues := []models.Venue{
		{Place: models.Place{ID: "unknown1"}},
		{Place: models.Place{ID: "far"}, DistanceMeters: 900},
		{Place: models.Place{ID: "fav-far"}, DistanceMeters: 800, Favorite: true},
		{Place: models.Place{ID: "near"}, DistanceMeters: 100},
		{Place: models.Place{ID: "tie-a"}, DistanceMeters: 500},
		{Place: models.Place{ID: "fav-unknown"}, Favorite: true},
		{Place: models.Place{ID: "tie-b"}, DistanceMeters: 500},
		{Place: models.Place{ID: "unknown2"}},
		{Place: models.Place{ID: "fav-near"}, DistanceMeters: 10, Favorite: true},
	}
	Sort(venues)
	want := []string{"fav-near", "fav-far", "fav-unknown", "near", "tie-a", "tie-b", "far", "unknown1", "unknown2"}
	for i, id := range want {
		if venues[i].ID != id {
			t.Errorf("Sort()[%d] = %q, want %q", i, venues[i].ID, id)
		}
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()
	venues := make([]models.Venue, 23)
	tests := []struct {
		page, size         int
		wantItems, wantLen int
		wantPage, wantSize int
		wantPages          int
	}{
		{1, 10, 10, 23, 1, 10, 3},
		{3, 10, 3, 23, 3, 10, 3},
		{4, 10, 0, 23, 4, 10, 3},
		{0, 0, 10, 23, 1, DefaultPageSize, 3},
		{1, 500, 23, 23, 1, MaxPageSize, 1},
	}
	for _, tt := range tests {
		p := Paginate(venues, tt.page, tt.size)
		if len(p.Items) != tt.wantItems || p.Total != tt.wantLen || p.Page != tt.wantPage || p.PageSize != tt.wantSize || p.TotalPages != tt.wantPages {
			t.Errorf("Paginate(%d, %d) = items %d total %d page %d size %d pages %d", tt.page, tt.size, len(p.Items), p.Total, p.Page, p.PageSize, p.TotalPages)
		}
		if p.Items == nil {
			t.Errorf("Paginate(%d, %d).Items is nil", tt.page, tt.size)
		}
	}
	if empty := Paginate(nil, 1, 10); empty.TotalPages != 0 || len(empty.Items) != 0 {
		t.Errorf("Paginate(nil) = %+v", empty)
	}
}

func TestList_Idempotent(t *testing.T) {
	t.Parallel()
	venues := []models.Venue{
		{Place: models.Place{ID: "a", PriceLevel: intPtr(2)}, DistanceMeters: 3000},
		{Place: models.Place{ID: "b", PriceLevel: intPtr(1)}, DistanceMeters: 1000},
		{Place: models.Place{ID: "c", PriceLevel: intPtr(2)}},
		{Place: models.Place{ID: "d", PriceLevel: intPtr(2)}, DistanceMeters: 2000},
	}
	prefs := models.DefaultPreferences()
	favs := map[string]bool{"a": true}

	first := List(venues, prefs, favs, 1, 10)
	second := List(venues, prefs, favs, 1, 10)
	want := []string{"a", "b", "d", "c"}
	for i, id := range want {
		if first.Items[i].ID != id || second.Items[i].ID != id {
			t.Errorf("List()[%d] = %q / %q, want %q", i, first.Items[i].ID, second.Items[i].ID, id)
		}
	}
	if venues[0].Favorite || venues[0].ID != "a" || venues[1].ID != "b" {
		t.Error("List() modified its input")
	}
}

func TestList_RandomizedOrdering(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(7, 11))
	prefs := models.Preferences{PriceRangeMin: 0, PriceRangeMax: 200, MaxDistanceMiles: 50}

	for run := range 2000 {
		n := rng.IntN(25)
		venues := make([]models.Venue, n)
		favs := make(map[string]bool)
		for i := range venues {
			id := fmt.Sprintf("v%d", i)
			venues[i] = models.Venue{Place: models.Place{ID: id, PriceLevel: intPtr(rng.IntN(5))}}
			if rng.IntN(4) > 0 {
				venues[i].DistanceMeters = float64(1 + rng.IntN(40000))
			}
			if rng.IntN(3) == 0 {
				favs[id] = true
			}
		}

		first := List(venues, prefs, favs, 1, MaxPageSize)
		second := List(venues, prefs, favs, 1, MaxPageSize)
		if len(first.Items) != len(second.Items) {
			t.Fatalf("run %d: List() lengths differ: %d vs %d", run, len(first.Items), len(second.Items))
		}
		for i := range first.Items {
			if first.Items[i].ID != second.Items[i].ID {
				t.Fatalf("run %d: List() not idempotent at %d: %q vs %q", run, i, first.Items[i].ID, second.Items[i].ID)
			}
		}

		for i := 1; i < len(first.Items); i++ {
			prev, cur := first.Items[i-1], first.Items[i]
			if cur.Favorite && !prev.Favorite {
				t.Fatalf("run %d: favorite %q listed after non-favorite %q", run, cur.ID, prev.ID)
			}
			if cur.Favorite != prev.Favorite {
				continue
			}
			if prev.DistanceMeters == 0 && cur.DistanceMeters != 0 {
				t.Fatalf("run %d: known distance %q listed after unknown %q", run, cur.ID, prev.ID)
			}
			if cur.DistanceMeters != 0 && cur.DistanceMeters < prev.DistanceMeters {
				t.Fatalf("run %d: %q (%v m) listed after %q (%v m)", run, cur.ID, cur.DistanceMeters, prev.ID, prev.DistanceMeters)
			}
		}
	}
}
