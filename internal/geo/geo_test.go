package geo

import (
	"math"
	"testing"

	"github.com/benvon/datenight/internal/models"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	fallback := models.Location{Lat: 40.3916, Lng: -111.8508}
	tests := []struct {
		name        string
		lat, lng    string
		want        models.Location
		wantDefault bool
	}{
		{"both valid", "40.2338", "-111.6585", models.Location{Lat: 40.2338, Lng: -111.6585}, false},
		{"missing", "", "", fallback, true},
		{"garbage lat", "north", "-111.6585", models.Location{Lat: 40.3916, Lng: -111.6585}, true},
		{"zero lng", "40.2338", "0", models.Location{Lat: 40.2338, Lng: -111.8508}, true},
		{"out of range", "95", "200", fallback, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, usedDefault := Resolve(tt.lat, tt.lng, fallback)
			if got != tt.want || usedDefault != tt.wantDefault {
				t.Errorf("Resolve(%q, %q) = %v, %v, want %v, %v", tt.lat, tt.lng, got, usedDefault, tt.want, tt.wantDefault)
			}
		})
	}
}

func TestDistanceMeters(t *testing.T) {
	t.Parallel()
	lehi := models.Location{Lat: 40.3916, Lng: -111.8508}
	provo := models.Location{Lat: 40.2338, Lng: -111.6585}

	if d := DistanceMeters(lehi, lehi); d != 0 {
		t.Errorf("DistanceMeters(same) = %v, want 0", d)
	}
	d := DistanceMeters(lehi, provo)
	if math.Abs(d-24000) > 1500 {
		t.Errorf("DistanceMeters(Lehi, Provo) = %v, want about 24 km", d)
	}
	if back := DistanceMeters(provo, lehi); math.Abs(back-d) > 1e-6 {
		t.Errorf("DistanceMeters is not symmetric: %v vs %v", d, back)
	}
	if mi := MetersToMiles(MetersPerMile * 3); math.Abs(mi-3) > 1e-9 {
		t.Errorf("MetersToMiles() = %v, want 3", mi)
	}
}
