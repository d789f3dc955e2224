package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benvon/datenight/internal/database"
	"github.com/benvon/datenight/internal/models"
	"github.com/benvon/datenight/internal/request"
	"github.com/benvon/datenight/internal/session"
	"github.com/benvon/datenight/internal/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// RegisterTokenTTL is the lifetime of the token handed out at sign-up
	RegisterTokenTTL = 24 * time.Hour
	// LoginTokenTTL is the lifetime of the token handed out at login
	LoginTokenTTL = 7 * 24 * time.Hour

	// BcryptCost is the work factor for stored password hashes
	BcryptCost = 10

	minUsernameLength = 3
	maxUsernameLength = 30
)

var (
	// ErrEmailTaken is returned when registering an email that already has an account
	ErrEmailTaken = errors.New("user with this email already exists")
	// ErrInvalidCredentials is returned for an unknown email, a wrong password or a disabled account
	ErrInvalidCredentials = errors.New("invalid login credentials")
	// ErrInvalidToken is returned for a malformed, expired or revoked bearer token
	ErrInvalidToken = errors.New("invalid or expired token")
)

// ValidationError lists every input problem found in a request
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Users is the account storage the service needs
type Users interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// RegisterInput is the sign-up request body
type RegisterInput struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"min=6,max=72"`
	FirstName *string `json:"first_name" validate:"omitnil,notblank"`
	LastName  *string `json:"last_name" validate:"omitnil,notblank"`
}

// LoginInput is the login request body
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Result is returned by Register and Login
type Result struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

var registerMessages = map[string]string{
	"email.required":      "Please enter a valid email address",
	"email.email":         "Please enter a valid email address",
	"password.min":        "Password must be at least 6 characters long",
	"password.max":        "Password cannot be longer than 72 characters",
	"first_name.notblank": "First name cannot be empty if provided",
	"last_name.notblank":  "Last name cannot be empty if provided",
}

var loginMessages = map[string]string{
	"email.required":    "Email is required",
	"email.email":       "Email is required",
	"password.required": "Password is required",
}

// Service registers and authenticates users with password credentials and signed bearer tokens
type Service struct {
	users  Users
	store  session.Store
	tokens *TokenIssuer
	cost   int
	now    func() time.Time
}

// NewService creates an auth service
func NewService(users Users, store session.Store, tokens *TokenIssuer) *Service {
	return &Service{
		users:  users,
		store:  store,
		tokens: tokens,
		cost:   BcryptCost,
		now:    time.Now,
	}
}

// Register creates an account and returns a token valid for RegisterTokenTTL
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = trimOptional(in.FirstName)
	in.LastName = trimOptional(in.LastName)
	if err := validation.Validate.Struct(in); err != nil {
		return nil, &ValidationError{Messages: validation.Messages(err, registerMessages)}
	}

	taken, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	username, err := s.uniqueUsername(ctx, in.Email)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			if exists, _ := s.users.EmailExists(ctx, in.Email); exists {
				return nil, ErrEmailTaken
			}
		}
		return nil, err
	}

	return s.result(user, RegisterTokenTTL)
}

// Login verifies credentials, stamps last_login and returns a token valid for LoginTokenTTL
func (s *Service) Login(ctx context.Context, in LoginInput) (*Result, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Validate.Struct(in); err != nil {
		return nil, &ValidationError{Messages: validation.Messages(err, loginMessages)}
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	return s.result(user, LoginTokenTTL)
}

// Authenticate turns a bearer token into a session. Revoked tokens and disabled
// or deleted accounts are rejected with ErrInvalidToken.
func (s *Service) Authenticate(ctx context.Context, raw string) (*request.Session, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	revoked, err := s.store.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", ErrInvalidToken)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account disabled", ErrInvalidToken)
	}

	return &request.Session{
		Token:     raw,
		TokenID:   claims.TokenID,
		User:      user,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Logout revokes the session's token until it would have expired
func (s *Service) Logout(ctx context.Context, sess *request.Session) error {
	if sess == nil || sess.TokenID == "" {
		return nil
	}
	return s.store.Revoke(ctx, sess.TokenID, sess.ExpiresAt)
}

func (s *Service) result(user *models.User, ttl time.Duration) (*Result, error) {
	token, _, err := s.tokens.Issue(user.ID, ttl)
	if err != nil {
		return nil, err
	}
	return &Result{Token: token, User: user.Public()}, nil
}

// uniqueUsername derives a username from the email local part, then appends 1, 2, ...
// until it no longer collides, truncating the base so the result stays within 30 characters.
func (s *Service) uniqueUsername(ctx context.Context, email string) (string, error) {
	base := BaseUsername(email)
	candidate := base
	for counter := 1; ; counter++ {
		exists, err := s.users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = WithCounter(base, counter)
	}
}

// BaseUsername is the email local part padded with zeros to 3 characters and cut to 30
func BaseUsername(email string) string {
	local, _, _ := strings.Cut(email, "@")
	name := []rune(local)
	for len(name) < minUsernameLength {
		name = append(name, '0')
	}
	if len(name) > maxUsernameLength {
		name = name[:maxUsernameLength]
	}
	return string(name)
}

// WithCounter appends counter to base, shortening base when the result would exceed 30 characters
func WithCounter(base string, counter int) string {
	suffix := strconv.Itoa(counter)
	name := []rune(base)
	if len(name)+len(suffix) > maxUsernameLength {
		name = name[:maxUsernameLength-len(suffix)]
	}
	return string(name) + suffix
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
