package handlers

import (
	"errors"
	"net/http"

	logpkg "github.com/benvon/datenight/internal/logger"
	"github.com/benvon/datenight/internal/request"
	"github.com/benvon/datenight/internal/services/auth"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	msgEmailTaken         = "User with this email already exists"
	msgInvalidCredentials = "Invalid login credentials"
	msgUnauthorized       = "Please authenticate."
)

// AuthHandler handles account sign-up, login and session requests
type AuthHandler struct {
	service *auth.Service
	rep     Reporter
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *auth.Service, rep Reporter) *AuthHandler {
	return &AuthHandler{service: service, rep: rep}
}

// RegisterRoutes registers the public auth routes
// The router should already have the /api/auth prefix
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
}

// RegisterProtectedRoutes registers the routes that need a session
func (h *AuthHandler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.Me).Methods(http.MethodGet)
	r.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	result, err := h.service.Register(r.Context(), in)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			respondError(w, http.StatusBadRequest, verr.Messages[0])
		case errors.Is(err, auth.ErrEmailTaken):
			respondError(w, http.StatusBadRequest, msgEmailTaken)
		default:
			h.rep.ServerError(w, r, "registration_failed", "Registration failed", err)
		}
		return
	}

	h.rep.Logger.Info("user_registered", zap.String("user_id", logpkg.SanitizeUserID(result.User.ID.String())))
	respondJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}

	result, err := h.service.Login(r.Context(), in)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			respondErrors(w, http.StatusBadRequest, verr.Messages)
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.rep.Logger.Warn("login_failed",
				zap.String("email", logpkg.SanitizeEmail(in.Email)),
				zap.String("ip", request.ClientIP(r)),
			)
			respondError(w, http.StatusUnauthorized, msgInvalidCredentials)
		default:
			h.rep.ServerError(w, r, "login_error", "Login failed", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Me returns the signed-in user without credentials
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, user.Public())
}

// Logout revokes the token the request was made with
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := request.SessionFromContext(r)
	if sess == nil {
		respondError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	if err := h.service.Logout(r.Context(), sess); err != nil {
		h.rep.ServerError(w, r, "logout_failed", "Logout failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
