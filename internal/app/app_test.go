package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api/apitest"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/config"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/session"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
	"github.com/rs/zerolog"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		APIURL:         url,
		RequestTimeout: 5 * time.Second,
		StorageDriver:  config.StorageSQLite,
		Poll:           config.PollConfig{ChatInterval: time.Hour},
	}
}

func newTestApp(t *testing.T, url, dir string) *App {
	t.Helper()
	a, err := New(context.Background(), testConfig(url), dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSessionSurvivesRestart(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	dir := t.TempDir()
	ctx := context.Background()

	a := newTestApp(t, srv.URL, dir)
	if err := a.RequireAuth(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("RequireAuth() = %v, want ErrNotAuthenticated", err)
	}
	if _, err := a.Mutations.Login(ctx, models.Credentials{Email: apitest.Email, Password: apitest.Password}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	raw, ok, err := a.KV.Get(ctx, session.DocumentsCompleteKey)
	if err != nil || !ok || string(raw) != "false" {
		t.Errorf("documents flag = %q, %v, %v; want \"false\" stored", raw, ok, err)
	}
	a.Close()

	b := newTestApp(t, srv.URL, dir)
	if err := b.RequireAuth(); err != nil {
		t.Fatalf("RequireAuth() after restart = %v", err)
	}
	if b.Session.Token() != apitest.Token {
		t.Errorf("Token() = %q, want %q", b.Session.Token(), apitest.Token)
	}
}

func TestAuthFailureEndsSession(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	ctx := context.Background()

	a := newTestApp(t, srv.URL, t.TempDir())
	if _, err := a.Mutations.Login(ctx, models.Credentials{Email: apitest.Email, Password: apitest.Password}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := a.Resources.Jobs(ctx, nil); err != nil {
		t.Fatalf("Jobs() error = %v", err)
	}

	srv.RevokeTokens()
	_, err := a.Resources.Quota(ctx)
	if !errors.Is(err, api.ErrSessionExpired) {
		t.Fatalf("Quota() error = %v, want ErrSessionExpired", err)
	}
	if !a.SessionExpired() {
		t.Error("SessionExpired() = false after 401")
	}
	if a.Session.IsAuthenticated() {
		t.Error("session still authenticated after 401")
	}
	if a.Cache.Len() != 0 {
		t.Errorf("cache holds %d entries after 401", a.Cache.Len())
	}
}

func TestMutationsAreJournaled(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	ctx := context.Background()

	a := newTestApp(t, srv.URL, t.TempDir())
	if _, err := a.Mutations.Login(ctx, models.Credentials{Email: apitest.Email, Password: apitest.Password}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := a.Mutations.TransitionJob(ctx, 1, api.JobClose); err != nil {
		t.Fatalf("TransitionJob() error = %v", err)
	}

	entries, err := a.Journal.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Name != "transition-job" || !entries[0].Succeeded {
		t.Errorf("newest entry = %+v", entries[0])
	}
}

func TestRedisDriverNeedsServer(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.StorageDriver = config.StorageRedis
	cfg.RedisURL = "not-a-redis-url"

	if _, err := New(context.Background(), cfg, t.TempDir(), zerolog.Nop()); err == nil {
		t.Fatal("expected error for bad redis url")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level   string
		verbose bool
		want    zerolog.Level
	}{
		{"", false, zerolog.WarnLevel},
		{"info", false, zerolog.InfoLevel},
		{"nonsense", false, zerolog.WarnLevel},
		{"error", true, zerolog.DebugLevel},
	}
	for _, tt := range tests {
		if got := NewLogger(tt.level, tt.verbose).GetLevel(); got != tt.want {
			t.Errorf("NewLogger(%q, %v) level = %v, want %v", tt.level, tt.verbose, got, tt.want)
		}
	}
}

func TestRequireVerified(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	ctx := context.Background()

	a := newTestApp(t, srv.URL, t.TempDir())
	if err := a.RequireVerified(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("RequireVerified() signed out = %v, want ErrNotAuthenticated", err)
	}

	if _, err := a.Mutations.Login(ctx, models.Credentials{Email: apitest.Email, Password: apitest.Password}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := a.RequireVerified(); err != nil {
		t.Errorf("RequireVerified() for verified company = %v", err)
	}

	reg := models.Registration{Email: "baru@nusantara.test", Password: "rahasia123", CompanyName: "PT Baru"}
	if _, err := a.Mutations.Register(ctx, reg); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := a.RequireVerified(); !errors.Is(err, ErrNotVerified) {
		t.Errorf("RequireVerified() for pending company = %v, want ErrNotVerified", err)
	}
}

func TestSessionLogsCarryComponentOnce(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()

	var buf bytes.Buffer
	a, err := New(context.Background(), testConfig(srv.URL), t.TempDir(), zerolog.New(&buf))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	buf.Reset()
	a.Session.SetAuth("", nil)
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a warning for SetAuth without token")
	}
	if n := strings.Count(line, `"component":"session"`); n != 1 {
		t.Errorf("component field appears %d times in %s", n, line)
	}
}
