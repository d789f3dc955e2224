package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/benvon/datenight/internal/catalog"
	"github.com/benvon/datenight/internal/database"
	"github.com/benvon/datenight/internal/request"
	"github.com/benvon/datenight/internal/validation"
	"github.com/benvon/datenight/internal/wheel"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	msgIdeaRequired = "Idea parameter is required"
	msgNoOptions    = "Add at least one idea before spinning"
)

// IdeaHandler serves the idea catalog, the user's idea list and wheel spins
type IdeaHandler struct {
	catalog *catalog.Catalog
	ideas   *database.IdeaRepository
	rep     Reporter
	// newRand supplies the spin randomness; nil uses the wheel's own source
	newRand func() wheel.RandomSource
}

// NewIdeaHandler creates a new idea handler
func NewIdeaHandler(c *catalog.Catalog, ideas *database.IdeaRepository, rep Reporter) *IdeaHandler {
	return &IdeaHandler{catalog: c, ideas: ideas, rep: rep}
}

// RegisterRoutes registers the public idea routes
// The router should already have the /api prefix
func (h *IdeaHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ideas/categories", h.Categories).Methods(http.MethodGet)
	r.HandleFunc("/ideas/describe", h.Describe).Methods(http.MethodGet)
}

// RegisterSpinRoutes registers the wheel route, which honours an optional session
func (h *IdeaHandler) RegisterSpinRoutes(r *mux.Router) {
	r.HandleFunc("/wheel/spin", h.Spin).Methods(http.MethodPost)
}

// RegisterProtectedRoutes registers the per-user idea list routes
func (h *IdeaHandler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/ideas", h.List).Methods(http.MethodGet)
	r.HandleFunc("/ideas", h.Add).Methods(http.MethodPost)
	r.HandleFunc("/ideas/{index}", h.Remove).Methods(http.MethodDelete)
}

// Categories returns the built-in idea categories
func (h *IdeaHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"categories": h.catalog.Categories})
}

// Describe returns the description and tips for one idea
func (h *IdeaHandler) Describe(w http.ResponseWriter, r *http.Request) {
	idea := strings.TrimSpace(r.URL.Query().Get("idea"))
	if idea == "" {
		respondError(w, http.StatusBadRequest, msgIdeaRequired)
		return
	}
	respondJSON(w, http.StatusOK, h.catalog.Describe(idea))
}

type ideasResponse struct {
	Ideas []string `json:"ideas"`
}

// List returns the user's idea list, seeded with the defaults until first saved
func (h *IdeaHandler) List(w http.ResponseWriter, r *http.Request) {
	list, ok := h.load(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, ideasResponse{Ideas: list.Snapshot()})
}

// Add appends one idea to the user's list
func (h *IdeaHandler) Add(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Idea string `json:"idea"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := validation.ValidateIdea(body.Idea); err != nil {
		respondError(w, http.StatusBadRequest, capitalize(err.Error()))
		return
	}

	idea := validation.SanitizeText(body.Idea)
	h.update(w, r, http.StatusCreated, func(list *wheel.IdeaList) {
		list.Append(idea)
	})
}

// Remove deletes the idea at a position. An out of range index leaves the list unchanged.
func (h *IdeaHandler) Remove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Index must be a number")
		return
	}

	h.update(w, r, http.StatusOK, func(list *wheel.IdeaList) {
		list.Remove(index)
	})
}

// Spin runs one server-side spin. Options come from the body, then the signed-in user's
// saved list, then the default list.
func (h *IdeaHandler) Spin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Options []string `json:"options"`
	}
	if err := decodeOptionalJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	labels, ok := h.spinLabels(w, r, body.Options)
	if !ok {
		return
	}

	var opts []wheel.Option
	if h.newRand != nil {
		opts = append(opts, wheel.WithRand(h.newRand()))
	}
	wh, err := wheel.New(labels, opts...)
	if err != nil {
		h.rep.ServerError(w, r, "wheel_setup_failed", "Failed to spin the wheel", err)
		return
	}
	result, err := wh.Simulate()
	if err != nil {
		if errors.Is(err, wheel.ErrNoOptions) {
			respondError(w, http.StatusBadRequest, msgNoOptions)
			return
		}
		h.rep.ServerError(w, r, "wheel_spin_failed", "Failed to spin the wheel", err)
		return
	}

	h.rep.Logger.Debug("wheel_spun",
		zap.Int("options", len(labels)),
		zap.Int("index", result.Index),
		zap.Int("ticks", result.Ticks),
	)
	respondJSON(w, http.StatusOK, result)
}

func (h *IdeaHandler) spinLabels(w http.ResponseWriter, r *http.Request, requested []string) ([]string, bool) {
	if requested != nil {
		labels := make([]string, 0, len(requested))
		for _, o := range requested {
			if validation.ValidateIdea(o) == nil {
				labels = append(labels, validation.SanitizeText(o))
			}
		}
		return labels, true
	}
	if request.UserFromContext(r) != nil {
		list, ok := h.load(w, r)
		if !ok {
			return nil, false
		}
		return list.Snapshot(), true
	}
	return wheel.DefaultIdeas(), true
}

func (h *IdeaHandler) load(w http.ResponseWriter, r *http.Request) (*wheel.IdeaList, bool) {
	userID := currentUserID(r)
	stored, found, err := h.ideas.Get(r.Context(), userID)
	if err != nil {
		h.rep.ServerError(w, r, "ideas_lookup_failed", "Failed to load ideas", err)
		return nil, false
	}
	if !found {
		return wheel.NewIdeaList(wheel.DefaultIdeas()...), true
	}
	return wheel.NewIdeaList(stored...), true
}

// update applies change to the user's stored list in one transaction and responds with the result
func (h *IdeaHandler) update(w http.ResponseWriter, r *http.Request, status int, change func(list *wheel.IdeaList)) {
	ideas, err := h.ideas.Update(r.Context(), currentUserID(r), wheel.DefaultIdeas(), func(current []string) []string {
		list := wheel.NewIdeaList(current...)
		change(list)
		return list.Snapshot()
	})
	if err != nil {
		h.rep.ServerError(w, r, "ideas_save_failed", "Failed to save ideas", err)
		return
	}
	respondJSON(w, status, ideasResponse{Ideas: ideas})
}

// currentUserID returns the session user's id; routes using it sit behind Auth
func currentUserID(r *http.Request) uuid.UUID {
	if user := request.UserFromContext(r); user != nil {
		return user.ID
	}
	return uuid.Nil
}

// decodeOptionalJSON decodes a body that may be absent
func decodeOptionalJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
