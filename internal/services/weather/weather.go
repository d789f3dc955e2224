package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/benvon/datenight/internal/models"
	"github.com/benvon/datenight/internal/services/upstream"
)

// DefaultBaseURL is the OpenWeatherMap API host
const DefaultBaseURL = "https://api.openweathermap.org"

// Provider reports current conditions at a point
type Provider interface {
	Current(ctx context.Context, lat, lng float64) (*models.Weather, error)
}

// Fallback is served when the provider cannot be reached
func Fallback(location string) *models.Weather {
	if location == "" {
		location = "Your area"
	}
	return &models.Weather{
		Location:    location,
		Temperature: 72,
		Description: "clear sky",
		Icon:        "01d",
		Fallback:    true,
	}
}

// Live queries the OpenWeatherMap current weather endpoint in imperial units
type Live struct {
	BaseURL string
	client  *http.Client
	apiKey  string
}

// NewLive creates a live provider. client is shared with the other providers.
func NewLive(client *http.Client, apiKey string) *Live {
	return &Live{BaseURL: DefaultBaseURL, client: client, apiKey: apiKey}
}

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

// Current fetches the conditions at lat, lng
func (l *Live) Current(ctx context.Context, lat, lng float64) (*models.Weather, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("units", "imperial")
	params.Set("appid", l.apiKey)

	var resp currentResponse
	reqURL := strings.TrimRight(l.BaseURL, "/") + "/data/2.5/weather?" + params.Encode()
	if err := upstream.GetJSON(ctx, l.client, reqURL, nil, &resp); err != nil {
		return nil, fmt.Errorf("weather lookup failed: %w", err)
	}
	if len(resp.Weather) == 0 {
		return nil, errors.New("weather lookup returned no conditions")
	}

	return &models.Weather{
		Location:    resp.Name,
		Temperature: math.Round(resp.Main.Temp),
		Description: resp.Weather[0].Description,
		Icon:        resp.Weather[0].Icon,
	}, nil
}

// Mock reports fixed fair weather without calling out
type Mock struct{}

// NewMock creates a mock provider
func NewMock() *Mock {
	return &Mock{}
}

// Current returns the fallback conditions, not flagged as a fallback
func (Mock) Current(_ context.Context, lat, lng float64) (*models.Weather, error) {
	w := Fallback(fmt.Sprintf("%.4f, %.4f", lat, lng))
	w.Fallback = false
	return w, nil
}
