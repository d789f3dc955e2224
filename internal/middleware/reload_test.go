package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/benvon/datenight/internal/models"
	"go.uber.org/zap"
)

type fakeCORSSource struct {
	cfg *models.CorsConfig
	err error
}

func (f fakeCORSSource) Get(context.Context) (*models.CorsConfig, error) {
	return f.cfg, f.err
}

func preflight(h http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/places", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCORSReloader(t *testing.T) {
	t.Parallel()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	fallback := []string{"http://localhost:5173", "http://localhost:5174"}

	tests := []struct {
		name        string
		source      fakeCORSSource
		origin      string
		wantAllowed bool
	}{
		{"fallback allows dev origin", fakeCORSSource{}, "http://localhost:5174", true},
		{"fallback rejects other", fakeCORSSource{}, "https://evil.example", false},
		{"stored config wins", fakeCORSSource{cfg: &models.CorsConfig{AllowedOrigins: "https://app.example/", AllowCredentials: true, MaxAge: 60}}, "https://app.example", true},
		{"stored config replaces fallback", fakeCORSSource{cfg: &models.CorsConfig{AllowedOrigins: "https://app.example"}}, "http://localhost:5173", false},
		{"db error uses fallback", fakeCORSSource{err: errors.New("db down")}, "http://localhost:5173", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewCORSReloader(tt.source, fallback, zap.NewNop(), 0).Middleware()(ok)
			w := preflight(h, tt.origin)
			got := w.Header().Get("Access-Control-Allow-Origin") == tt.origin
			if got != tt.wantAllowed {
				t.Errorf("origin %s allowed = %v, want %v", tt.origin, got, tt.wantAllowed)
			}
		})
	}
}

type fakeRateSource struct {
	mu    sync.Mutex
	rate  string
	saved []string
}

func (f *fakeRateSource) Get(context.Context) (*models.RatelimitConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rate == "" {
		return nil, nil
	}
	return &models.RatelimitConfig{Rate: f.rate}, nil
}

func (f *fakeRateSource) Set(_ context.Context, c *models.RatelimitConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, c.Rate)
	return nil
}

func TestRateLimitReloader(t *testing.T) {
	t.Parallel()
	store, err := NewLimiterStore(nil)
	if err != nil {
		t.Fatalf("NewLimiterStore() error = %v", err)
	}
	src := &fakeRateSource{rate: "2-15M"}
	rl := NewRateLimitReloader(store, src, "", zap.NewNop(), 0)
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	if got := rl.Rate(); got.Limit != 2 || got.Period != 15*time.Minute {
		t.Fatalf("Rate() = %+v, want 2 per 15m", got)
	}

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/places", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 200 429]", codes)
	}

	other := httptest.NewRequest(http.MethodGet, "/api/places", nil)
	other.RemoteAddr = "10.0.0.2:5555"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, other)
	if w.Code != http.StatusOK {
		t.Errorf("second client status = %d, want 200", w.Code)
	}
}

func TestRateLimitReloader_SeedsDefault(t *testing.T) {
	t.Parallel()
	store, _ := NewLimiterStore(nil)
	src := &fakeRateSource{}
	rl := NewRateLimitReloader(store, src, "", zap.NewNop(), 0)
	rl.Middleware()(http.NotFoundHandler())

	if len(src.saved) != 1 || src.saved[0] != models.DefaultRateLimit {
		t.Errorf("saved = %v, want [%s]", src.saved, models.DefaultRateLimit)
	}
	if got := rl.Rate(); got.Limit != 100 || got.Period != 15*time.Minute {
		t.Errorf("Rate() = %+v, want 100 per 15m", got)
	}
}

func TestRateLimitReloader_BadStoredRate(t *testing.T) {
	t.Parallel()
	store, _ := NewLimiterStore(nil)
	rl := NewRateLimitReloader(store, &fakeRateSource{rate: "lots"}, "5-M", zap.NewNop(), 0)
	rl.Middleware()(http.NotFoundHandler())
	if got := rl.Rate(); got.Limit != 5 || got.Period != time.Minute {
		t.Errorf("Rate() = %+v, want fallback 5 per minute", got)
	}
}

func TestRateLimitReloader_PicksUpStoredChange(t *testing.T) {
	t.Parallel()
	store, _ := NewLimiterStore(nil)
	src := &fakeRateSource{rate: "10-M"}
	rl := NewRateLimitReloader(store, src, "", zap.NewNop(), 0)
	rl.Middleware()(http.NotFoundHandler())

	src.mu.Lock()
	src.rate = "3-H"
	src.mu.Unlock()
	rl.load(context.Background())

	if got := rl.Rate(); got.Limit != 3 || got.Period != time.Hour {
		t.Errorf("Rate() = %+v, want 3 per hour", got)
	}
}

func TestSwapHandler(t *testing.T) {
	t.Parallel()
	s := &swapHandler{next: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusAccepted || s.installed() {
		t.Fatalf("before install: code = %d, installed = %v", w.Code, s.installed())
	}

	s.install(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w = httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("after install: code = %d, want %d", w.Code, http.StatusTeapot)
	}
}

func TestReloadEvery_StopsOnCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	loads := make(chan struct{}, 8)
	done := make(chan struct{})
	go func() {
		reloadEvery(ctx, time.Millisecond, func(context.Context) {
			select {
			case loads <- struct{}{}:
			default:
			}
		})
		close(done)
	}()

	select {
	case <-loads:
	case <-time.After(time.Second):
		t.Fatal("load was never called")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reloadEvery did not return after cancel")
	}
}

func TestReloadEvery_DisabledInterval(t *testing.T) {
	t.Parallel()
	called := false
	reloadEvery(context.Background(), 0, func(context.Context) { called = true })
	if called {
		t.Error("load called with a zero interval")
	}
}
