package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetJSON(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if r.Header.Get("Authorization") != "Bearer k" {
				t.Errorf("Authorization = %q, want Bearer k", r.Header.Get("Authorization"))
			}
			_, _ = w.Write([]byte(`{"name":"x"}`))
		case "/bad":
			_, _ = w.Write([]byte(`{`))
		default:
			http.Error(w, "nope", http.StatusForbidden)
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(0)
	var out struct {
		Name string `json:"name"`
	}
	if err := GetJSON(context.Background(), client, srv.URL+"/ok", http.Header{"Authorization": {"Bearer k"}}, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out.Name != "x" {
		t.Errorf("GetJSON() decoded name = %q, want x", out.Name)
	}

	if err := GetJSON(context.Background(), client, srv.URL+"/bad", nil, &out); err == nil {
		t.Error("GetJSON() with malformed body error = nil")
	}

	err := GetJSON(context.Background(), client, srv.URL+"/denied", nil, &out)
	var serr *StatusError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusForbidden {
		t.Errorf("GetJSON() error = %v, want StatusError 403", err)
	}
}

func TestSeeded(t *testing.T) {
	t.Parallel()
	a := Seeded("Restaurant", "Provo").IntN(1000)
	b := Seeded("Restaurant", "Provo").IntN(1000)
	if a != b {
		t.Errorf("Seeded() not deterministic: %d != %d", a, b)
	}
	if NewHTTPClient(0).Timeout != DefaultTimeout {
		t.Errorf("NewHTTPClient(0).Timeout = %v, want %v", NewHTTPClient(0).Timeout, DefaultTimeout)
	}
}
