package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/datenight/internal/database"
	"github.com/benvon/datenight/internal/models"
	"github.com/benvon/datenight/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var preferenceMessages = map[string]string{
	"price_range_min.gte":      "Minimum price cannot be negative",
	"price_range_min.lte":      "Minimum price cannot exceed 200",
	"price_range_max.gte":      "Maximum price cannot be negative",
	"price_range_max.lte":      "Maximum price cannot exceed 200",
	"price_range_max.gtefield": "Maximum price must be at least the minimum price",
	"max_distance_miles.gte":   "Maximum distance must be at least 1 mile",
	"max_distance_miles.lte":   "Maximum distance cannot exceed 50 miles",
}

var dateMessages = map[string]string{
	"title.notblank": "Title is required",
	"title.max":      "Title cannot be longer than 255 characters",
	"date.required":  "Date is required",
}

// AccountHandler serves the per-user preferences, favorites and saved dates
type AccountHandler struct {
	preferences *database.PreferencesRepository
	favorites   *database.FavoriteRepository
	dates       *database.DateEventRepository
	rep         Reporter
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(
	preferences *database.PreferencesRepository,
	favorites *database.FavoriteRepository,
	dates *database.DateEventRepository,
	rep Reporter,
) *AccountHandler {
	return &AccountHandler{preferences: preferences, favorites: favorites, dates: dates, rep: rep}
}

// RegisterRoutes registers account routes; every one of them requires a session
// The router should already have the /api prefix
func (h *AccountHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/preferences", h.GetPreferences).Methods(http.MethodGet)
	r.HandleFunc("/preferences", h.UpdatePreferences).Methods(http.MethodPut)

	r.HandleFunc("/favorites", h.ListFavorites).Methods(http.MethodGet)
	r.HandleFunc("/favorites", h.AddFavorite).Methods(http.MethodPost)
	r.HandleFunc("/favorites/{category}/{venueID}", h.RemoveFavorite).Methods(http.MethodDelete)

	r.HandleFunc("/dates", h.ListDates).Methods(http.MethodGet)
	r.HandleFunc("/dates", h.CreateDate).Methods(http.MethodPost)
	r.HandleFunc("/dates/{id}", h.DeleteDate).Methods(http.MethodDelete)
}

// GetPreferences returns the stored preferences or the defaults
func (h *AccountHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.preferences.Get(r.Context(), currentUserID(r))
	if err != nil {
		h.rep.ServerError(w, r, "preferences_lookup_failed", "Failed to load preferences", err)
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences replaces the stored preferences
func (h *AccountHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	prefs := models.DefaultPreferences()
	if !decodeJSON(w, r, &prefs) {
		return
	}
	if err := validation.Validate.Struct(prefs); err != nil {
		respondErrors(w, http.StatusBadRequest, validation.Messages(err, preferenceMessages))
		return
	}

	if err := h.preferences.Set(r.Context(), currentUserID(r), &prefs); err != nil {
		h.rep.ServerError(w, r, "preferences_save_failed", "Failed to save preferences", err)
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

// ListFavorites returns the favorites saved under ?category
func (h *AccountHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		respondError(w, http.StatusBadRequest, "Category parameter is required")
		return
	}

	favorites, err := h.favorites.List(r.Context(), currentUserID(r), category)
	if err != nil {
		h.rep.ServerError(w, r, "favorites_lookup_failed", "Failed to load favorites", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"favorites": favorites})
}

// AddFavorite saves a venue under a category. Saving the same venue again refreshes it.
func (h *AccountHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string       `json:"category"`
		Venue    models.Venue `json:"venue"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Category) == "" || strings.TrimSpace(body.Venue.ID) == "" {
		respondError(w, http.StatusBadRequest, "Category and venue id are required")
		return
	}

	fav := &models.Favorite{
		UserID:   currentUserID(r),
		Category: body.Category,
		VenueID:  strings.TrimSpace(body.Venue.ID),
		Venue:    body.Venue,
	}
	if err := h.favorites.Upsert(r.Context(), fav); err != nil {
		h.rep.ServerError(w, r, "favorite_save_failed", "Failed to save favorite", err)
		return
	}
	respondJSON(w, http.StatusCreated, fav)
}

// RemoveFavorite deletes one favorite
func (h *AccountHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := h.favorites.Delete(r.Context(), currentUserID(r), vars["category"], vars["venueID"])
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Favorite not found")
		return
	}
	if err != nil {
		h.rep.ServerError(w, r, "favorite_delete_failed", "Failed to remove favorite", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dateInput is the body of POST /api/dates
type dateInput struct {
	Title       string           `json:"title" validate:"notblank,max=255"`
	Description *string          `json:"description"`
	Location    *string          `json:"location"`
	Date        time.Time        `json:"date" validate:"required"`
	Weather     json.RawMessage  `json:"weather"`
	Coordinates *models.Location `json:"coordinates"`
}

// ListDates returns the user's saved plans ordered by date
func (h *AccountHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	events, err := h.dates.ListByUser(r.Context(), currentUserID(r))
	if err != nil {
		h.rep.ServerError(w, r, "dates_lookup_failed", "Failed to load dates", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"dates": events})
}

// CreateDate saves a plan
func (h *AccountHandler) CreateDate(w http.ResponseWriter, r *http.Request) {
	var in dateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.Title = validation.SanitizeText(in.Title)
	if err := validation.Validate.Struct(in); err != nil {
		respondErrors(w, http.StatusBadRequest, validation.Messages(err, dateMessages))
		return
	}
	if string(in.Weather) == "null" {
		in.Weather = nil
	}

	event := &models.DateEvent{
		UserID:      currentUserID(r),
		Title:       in.Title,
		Description: trimmedOrNil(in.Description),
		Location:    trimmedOrNil(in.Location),
		Date:        in.Date,
		Weather:     in.Weather,
		Coordinates: in.Coordinates,
	}
	if err := h.dates.Create(r.Context(), event); err != nil {
		h.rep.ServerError(w, r, "date_save_failed", "Failed to save date", err)
		return
	}
	respondJSON(w, http.StatusCreated, event)
}

// DeleteDate removes one of the user's plans
func (h *AccountHandler) DeleteDate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date id")
		return
	}
	err = h.dates.Delete(r.Context(), id, currentUserID(r))
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Date not found")
		return
	}
	if err != nil {
		h.rep.ServerError(w, r, "date_delete_failed", "Failed to remove date", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := validation.SanitizeText(*s)
	if v == "" {
		return nil
	}
	return &v
}
