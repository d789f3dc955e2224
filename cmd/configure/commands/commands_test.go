package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/benvon/datenight/internal/config"
	"github.com/benvon/datenight/internal/database"
	"github.com/benvon/datenight/internal/models"
	"github.com/spf13/cobra"
)

func testOpener(t *testing.T) (Opener, *database.DB) {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return func(context.Context) (*database.DB, func(), error) { return db, func() {}, nil }, db
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCorsCmd(t *testing.T) {
	t.Parallel()
	open, db := testOpener(t)

	out, err := execute(t, NewCorsCmd(open), "list")
	if err != nil || !strings.Contains(out, "No CORS configuration") {
		t.Fatalf("empty list = %q, %v", out, err)
	}

	if _, err := execute(t, NewCorsCmd(open), "set", "--origins", " , "); err == nil {
		t.Error("set with blank origins error = nil, want error")
	}
	if _, err := execute(t, NewCorsCmd(open), "set", "--origins", "https://a.example, https://b.example", "--max-age", "600"); err != nil {
		t.Fatalf("set error = %v", err)
	}

	stored, err := database.NewCorsConfigRepository(db).Get(context.Background())
	if err != nil || stored == nil {
		t.Fatalf("Get() = %v, %v", stored, err)
	}
	if stored.AllowedOrigins != "https://a.example,https://b.example" || stored.MaxAge != 600 || !stored.AllowCredentials {
		t.Errorf("stored = %+v", stored)
	}

	out, _ = execute(t, NewCorsCmd(open), "list")
	if !strings.Contains(out, "https://a.example, https://b.example") {
		t.Errorf("list = %q", out)
	}
}

func TestRatelimitCmd(t *testing.T) {
	t.Parallel()
	open, _ := testOpener(t)

	if _, err := execute(t, NewRatelimitCmd(open), "set", "--rate", "lots"); err == nil {
		t.Error("invalid rate error = nil, want error")
	}
	if _, err := execute(t, NewRatelimitCmd(open), "set", "--rate", "50-15M"); err != nil {
		t.Fatalf("set error = %v", err)
	}
	out, err := execute(t, NewRatelimitCmd(open), "list")
	if err != nil || !strings.Contains(out, "50 requests per 15m0s") {
		t.Errorf("list = %q, %v", out, err)
	}
}

func TestUsersCmd(t *testing.T) {
	t.Parallel()
	open, db := testOpener(t)
	users := database.NewUserRepository(db)

	out, err := execute(t, NewUsersCmd(open), "list")
	if err != nil || !strings.Contains(out, "No users registered") {
		t.Fatalf("empty list = %q, %v", out, err)
	}

	if err := users.Create(context.Background(), &models.User{
		Username: "jane", Email: "jane@example.com", PasswordHash: "x", IsActive: true,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := execute(t, NewUsersCmd(open), "disable", "JANE@example.com"); err != nil {
		t.Fatalf("disable error = %v", err)
	}
	u, err := users.GetByEmail(context.Background(), "jane@example.com")
	if err != nil || u.IsActive {
		t.Errorf("after disable = %+v, %v", u, err)
	}

	out, _ = execute(t, NewUsersCmd(open), "list")
	if !strings.Contains(out, "jane@example.com") || !strings.Contains(out, "false") || !strings.Contains(out, "never") {
		t.Errorf("list = %q", out)
	}

	if _, err := execute(t, NewUsersCmd(open), "enable", "jane@example.com"); err != nil {
		t.Fatalf("enable error = %v", err)
	}
	if _, err := execute(t, NewUsersCmd(open), "enable", "nobody@example.com"); err == nil {
		t.Error("enable unknown user error = nil, want error")
	}
	if _, err := execute(t, NewUsersCmd(open), "disable"); err == nil {
		t.Error("disable without email error = nil, want error")
	}
}

func TestProvidersTest_Mock(t *testing.T) {
	t.Parallel()
	load := func() (*config.Config, error) {
		return &config.Config{ProviderMode: config.ProviderModeMock, DefaultLat: 40.39, DefaultLng: -111.85}, nil
	}

	out, err := execute(t, NewProvidersCmd(load), "test", "--query", "Museum")
	if err != nil {
		t.Fatalf("providers test error = %v, output %q", err, out)
	}
	for _, want := range []string{"✓ places (mock)", "✓ reviews (mock)", "✓ weather (mock)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}
