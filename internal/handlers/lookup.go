package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/benvon/datenight/internal/database"
	"github.com/benvon/datenight/internal/geo"
	logpkg "github.com/benvon/datenight/internal/logger"
	"github.com/benvon/datenight/internal/models"
	"github.com/benvon/datenight/internal/request"
	"github.com/benvon/datenight/internal/services/places"
	"github.com/benvon/datenight/internal/services/reviews"
	"github.com/benvon/datenight/internal/services/weather"
	"github.com/benvon/datenight/internal/telemetry"
	"github.com/benvon/datenight/internal/venues"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	msgQueryRequired   = "Query parameter is required"
	msgTermAndLocation = "Term and location parameters are required"
	msgFetchPlaces     = "Failed to fetch places"
	msgFetchReviews    = "Failed to fetch review data"
)

// LookupHandler proxies place, review and weather lookups and builds venue listings
type LookupHandler struct {
	places      places.Provider
	reviews     reviews.Provider
	weather     weather.Provider
	favorites   *database.FavoriteRepository
	preferences *database.PreferencesRepository
	origin      models.Location
	rep         Reporter
}

// NewLookupHandler creates a lookup handler. origin is used when a request has no usable coordinates.
func NewLookupHandler(
	placesProvider places.Provider,
	reviewsProvider reviews.Provider,
	weatherProvider weather.Provider,
	favorites *database.FavoriteRepository,
	preferences *database.PreferencesRepository,
	origin models.Location,
	rep Reporter,
) *LookupHandler {
	return &LookupHandler{
		places:      placesProvider,
		reviews:     reviewsProvider,
		weather:     weatherProvider,
		favorites:   favorites,
		preferences: preferences,
		origin:      origin,
		rep:         rep,
	}
}

// RegisterRoutes registers lookup routes on a router that already has the /api prefix.
// /venues expects optional authentication to be applied by the caller.
func (h *LookupHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/places", h.Places).Methods(http.MethodGet)
	r.HandleFunc("/yelp", h.Reviews).Methods(http.MethodGet)
	r.HandleFunc("/weather", h.Weather).Methods(http.MethodGet)
}

// RegisterVenueRoutes registers the venue listing route
func (h *LookupHandler) RegisterVenueRoutes(r *mux.Router) {
	r.HandleFunc("/venues", h.Venues).Methods(http.MethodGet)
}

func (h *LookupHandler) searchQuery(r *http.Request) places.Query {
	q := r.URL.Query()
	loc, _ := geo.Resolve(q.Get("lat"), q.Get("lng"), h.origin)
	radius := intParam(r, "radius", places.DefaultRadiusMeters)
	if radius <= 0 {
		radius = places.DefaultRadiusMeters
	}
	return places.Query{
		Text:         strings.TrimSpace(q.Get("query")),
		Lat:          loc.Lat,
		Lng:          loc.Lng,
		RadiusMeters: radius,
	}
}

// Places handles GET /api/places
func (h *LookupHandler) Places(w http.ResponseWriter, r *http.Request) {
	query := h.searchQuery(r)
	if query.Text == "" {
		respondError(w, http.StatusBadRequest, msgQueryRequired)
		return
	}

	found, err := h.searchPlaces(r.Context(), query)
	if err != nil {
		h.rep.ServerError(w, r, "places_lookup_failed", msgFetchPlaces, err)
		return
	}
	respondJSON(w, http.StatusOK, found)
}

// Reviews handles GET /api/yelp. term and location search businesses; name and
// address return the merged review summary of the best match, {} when none.
func (h *LookupHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, address := strings.TrimSpace(q.Get("name")), strings.TrimSpace(q.Get("address"))
	if name != "" && address != "" {
		ctx, span := telemetry.StartSpan(r.Context(), "reviews.match")
		sum, err := h.reviews.Match(ctx, name, address)
		telemetry.EndSpan(span, err)
		if err != nil {
			h.rep.Logger.Warn("review_match_failed",
				zap.String("name", logpkg.SanitizeString(name, logpkg.MaxQueryLength)),
				zap.String("error", logpkg.SanitizeError(err)),
			)
			respondJSON(w, http.StatusOK, models.ReviewSummary{})
			return
		}
		respondJSON(w, http.StatusOK, sum)
		return
	}

	term, location := strings.TrimSpace(q.Get("term")), strings.TrimSpace(q.Get("location"))
	if term == "" || location == "" {
		respondError(w, http.StatusBadRequest, msgTermAndLocation)
		return
	}
	ctx, span := telemetry.StartSpan(r.Context(), "reviews.search", attribute.String("term", term))
	found, err := h.reviews.Search(ctx, term, location)
	telemetry.EndSpan(span, err)
	if err != nil {
		if errors.Is(err, reviews.ErrMissingParams) {
			respondError(w, http.StatusBadRequest, msgTermAndLocation)
			return
		}
		h.rep.ServerError(w, r, "review_search_failed", msgFetchReviews, err)
		return
	}
	if found == nil {
		found = []models.Business{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"businesses": found})
}

// Weather handles GET /api/weather. Provider failures are answered with fallback conditions.
func (h *LookupHandler) Weather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc, _ := geo.Resolve(q.Get("lat"), q.Get("lng"), h.origin)

	ctx, span := telemetry.StartSpan(r.Context(), "weather.current")
	current, err := h.weather.Current(ctx, loc.Lat, loc.Lng)
	telemetry.EndSpan(span, err)
	if err != nil {
		h.rep.Logger.Warn("weather_lookup_failed", zap.String("error", logpkg.SanitizeError(err)))
		current = weather.Fallback("")
	}
	respondJSON(w, http.StatusOK, current)
}

// Venues handles GET /api/venues: search, enrich with review data, then filter, sort
// and paginate. Signed-in users get their stored preferences and favorites; query
// parameters override the preferences.
func (h *LookupHandler) Venues(w http.ResponseWriter, r *http.Request) {
	query := h.searchQuery(r)
	if query.Text == "" {
		respondError(w, http.StatusBadRequest, msgQueryRequired)
		return
	}

	prefs := models.DefaultPreferences()
	var favorites map[string]bool
	if user := request.UserFromContext(r); user != nil {
		stored, err := h.preferences.Get(r.Context(), user.ID)
		if err != nil {
			h.rep.ServerError(w, r, "preferences_lookup_failed", msgFetchPlaces, err)
			return
		}
		prefs = stored
		category := r.URL.Query().Get("category")
		if category == "" {
			category = query.Text
		}
		favorites, err = h.favorites.IDs(r.Context(), user.ID, category)
		if err != nil {
			h.rep.ServerError(w, r, "favorites_lookup_failed", msgFetchPlaces, err)
			return
		}
	}
	prefs = overridePreferences(r, prefs)

	found, err := h.searchPlaces(r.Context(), query)
	if err != nil {
		h.rep.ServerError(w, r, "places_lookup_failed", msgFetchPlaces, err)
		return
	}

	origin := models.Location{Lat: query.Lat, Lng: query.Lng}
	ctx, span := telemetry.StartSpan(r.Context(), "venues.enrich", attribute.Int("places", len(found)))
	enriched := venues.Enrich(ctx, origin, found, h.reviews, func(p models.Place, err error) {
		h.rep.Logger.Warn("venue_enrichment_failed",
			zap.String("place_id", logpkg.SanitizeString(p.ID, logpkg.MaxUserIDLength)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
	})
	telemetry.EndSpan(span, nil)

	page := venues.List(enriched, prefs, favorites,
		intParam(r, "page", 1),
		intParam(r, "page_size", venues.DefaultPageSize))
	respondJSON(w, http.StatusOK, page)
}

func (h *LookupHandler) searchPlaces(ctx context.Context, query places.Query) ([]models.Place, error) {
	ctx, span := telemetry.StartSpan(ctx, "places.text_search", attribute.Int("radius_meters", query.RadiusMeters))
	found, err := h.places.TextSearch(ctx, query)
	telemetry.EndSpan(span, err)
	return found, err
}

func overridePreferences(r *http.Request, p models.Preferences) models.Preferences {
	if v, ok := floatParam(r, "min_price"); ok {
		p.PriceRangeMin = int(v)
	}
	if v, ok := floatParam(r, "max_price"); ok {
		p.PriceRangeMax = int(v)
	}
	if v, ok := floatParam(r, "max_distance"); ok && v > 0 {
		p.MaxDistanceMiles = v
	}
	return p
}
