package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/benvon/datenight/internal/config"
	"github.com/benvon/datenight/internal/services/places"
	"github.com/benvon/datenight/internal/services/reviews"
	"github.com/benvon/datenight/internal/services/upstream"
	"github.com/benvon/datenight/internal/services/weather"
	"github.com/spf13/cobra"
)

// ConfigLoader returns the service configuration
type ConfigLoader func() (*config.Config, error)

// NewProvidersCmd creates the providers command
func NewProvidersCmd(load ConfigLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Inspect the place, review and weather providers",
	}
	cmd.AddCommand(newProvidersTestCmd(load))
	return cmd
}

// providerCheck is one live call made by providers test
type providerCheck struct {
	name string
	live bool
	run  func(ctx context.Context) (string, error)
}

func newProvidersTestCmd(load ConfigLoader) *cobra.Command {
	var query, location string
	var lat, lng float64

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test provider configuration",
		Long:  "Run one sample request against every provider the server would use, live or mock, and report the outcome.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cmd.Flags().Changed("lat") {
				lat = cfg.DefaultLat
			}
			if !cmd.Flags().Changed("lng") {
				lng = cfg.DefaultLng
			}
			client := upstream.NewHTTPClient(cfg.ProviderTimeout)

			checks := []providerCheck{
				placesCheck(cfg, client, places.Query{Text: query, Lat: lat, Lng: lng, RadiusMeters: places.DefaultRadiusMeters}),
				reviewsCheck(cfg, client, query, location),
				weatherCheck(cfg, client, lat, lng),
			}
			failed := runChecks(cmd.Context(), cmd.OutOrStdout(), checks)
			if failed > 0 {
				return fmt.Errorf("%d provider check(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "query", "coffee", "Search text for places and reviews")
	cmd.Flags().StringVar(&location, "location", "Lehi, UT", "Location for the review search")
	cmd.Flags().Float64Var(&lat, "lat", config.DefaultLat, "Latitude for place and weather lookups")
	cmd.Flags().Float64Var(&lng, "lng", config.DefaultLng, "Longitude for place and weather lookups")
	return cmd
}

func placesCheck(cfg *config.Config, client *http.Client, q places.Query) providerCheck {
	var p places.Provider = places.NewMock()
	live := cfg.UsesLiveProvider(cfg.GoogleMapsAPIKey)
	if live {
		p = places.NewLive(client, cfg.GoogleMapsAPIKey)
	}
	return providerCheck{name: "places", live: live, run: func(ctx context.Context) (string, error) {
		found, err := p.TextSearch(ctx, q)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d places for %q", len(found), q.Text), nil
	}}
}

func reviewsCheck(cfg *config.Config, client *http.Client, term, location string) providerCheck {
	var p reviews.Provider = reviews.NewMock()
	live := cfg.UsesLiveProvider(cfg.YelpAPIKey)
	if live {
		p = reviews.NewLive(client, cfg.YelpAPIKey)
	}
	return providerCheck{name: "reviews", live: live, run: func(ctx context.Context) (string, error) {
		found, err := p.Search(ctx, term, location)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d businesses for %q in %s", len(found), term, location), nil
	}}
}

func weatherCheck(cfg *config.Config, client *http.Client, lat, lng float64) providerCheck {
	var p weather.Provider = weather.NewMock()
	live := cfg.UsesLiveProvider(cfg.OpenWeatherAPIKey)
	if live {
		p = weather.NewLive(client, cfg.OpenWeatherAPIKey)
	}
	return providerCheck{name: "weather", live: live, run: func(ctx context.Context) (string, error) {
		w, err := p.Current(ctx, lat, lng)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%.0f°F, %s in %s", w.Temperature, w.Description, w.Location), nil
	}}
}

// runChecks prints one line per check and returns the number that failed
func runChecks(ctx context.Context, out io.Writer, checks []providerCheck) int {
	failed := 0
	for _, c := range checks {
		mode := "mock"
		if c.live {
			mode = "live"
		}
		start := time.Now()
		summary, err := c.run(ctx)
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s (%s): %v\n", c.name, mode, err)
			continue
		}
		fmt.Fprintf(out, "✓ %s (%s): %s [%s]\n", c.name, mode, summary, elapsed)
	}
	return failed
}
