package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/api"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/cache"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/config"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/database"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/mutation"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/poller"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/resource"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// App is the dependency container for the CLI application
type App struct {
	DB          *sql.DB
	Redis       *redis.Client
	Config      *config.Config
	HTTPClient  *http.Client
	Logger      zerolog.Logger
	KV          session.KV
	Session     *session.Store
	Preferences *session.Preferences
	Client      *api.Client
	Cache       *cache.Cache
	Resources   *resource.Resources
	Mutations   *mutation.Mutations
	Journal     *database.Journal

	expired atomic.Bool
}

// NewApp loads the config file and wires the application around it
func NewApp(ctx context.Context, verbose bool) (*App, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	logger := NewLogger(config.AppConfig.LogLevel, verbose)
	return New(ctx, config.AppConfig, config.Dir(), logger)
}

// NewLogger returns a console logger on stderr. verbose forces debug level.
func NewLogger(level string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}

// New wires an App from cfg, keeping local data in dataDir
func New(ctx context.Context, cfg *config.Config, dataDir string, logger zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	// The journal lives in sqlite whichever driver holds the session
	db, err := database.Open(filepath.Join(dataDir, "karir.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	a.DB = db
	a.Journal = database.NewJournal(db)

	switch cfg.StorageDriver {
	case config.StorageRedis:
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.Redis = rdb
		a.KV = database.NewRedisStore(rdb, cfg.RedisPrefix)
	default:
		a.KV = database.NewSQLiteStore(db)
	}

	a.Session = session.NewStore(ctx, a.KV, logger)
	a.Preferences = session.NewPreferences(ctx, a.KV, logger)

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = api.DefaultTimeout
	}
	a.HTTPClient = &http.Client{Timeout: timeout}

	a.Cache = cache.New(
		cache.WithPolicy(cfg.Policy()),
		cache.WithGC(cfg.Cache.GCAfter),
		cache.WithLogger(logger.With().Str("component", "cache").Logger()),
		cache.WithBaseContext(ctx),
	)

	a.Client = api.NewClient(cfg.APIURL, a.HTTPClient, a.Session,
		api.WithLogger(logger.With().Str("component", "api").Logger()),
		api.WithAuthFailureHandler(api.AuthFailureFunc(a.handleAuthFailure)),
	)
	resource.Register(a.Cache, a.Client)
	a.Resources = resource.New(a.Cache)

	coord := mutation.NewCoordinator(a.Cache,
		mutation.WithRecorder(a.Journal),
		mutation.WithLogger(logger.With().Str("component", "mutation").Logger()),
	)
	a.Mutations = mutation.New(coord, a.Client, a.Session, a.Cache, logger)
	return a, nil
}

func (a *App) handleAuthFailure() {
	a.expired.Store(true)
	a.Session.Logout()
	a.Cache.Clear()
}

// SessionExpired reports whether the server rejected the token during this run
func (a *App) SessionExpired() bool {
	return a.expired.Load()
}

// RequireAuth returns ErrNotAuthenticated when no company is signed in
func (a *App) RequireAuth() error {
	if !a.Session.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// RequireVerified returns ErrNotVerified unless the signed-in company has
// passed verification
func (a *App) RequireVerified() error {
	if err := a.RequireAuth(); err != nil {
		return err
	}
	if company, _ := a.Session.Company(); !company.Verified() {
		return fmt.Errorf("%w (status %s)", ErrNotVerified, company.VerificationStatus)
	}
	return nil
}

// Poller returns a poller refreshing the chat inbox and the profile while
// signed in
func (a *App) Poller() *poller.Poller {
	tasks := []poller.Task{
		poller.Refetch(a.Cache, cache.ChatConversations, nil, a.Config.Poll.ChatInterval),
		{
			Name:  "profile",
			Every: a.Config.Poll.ProfileInterval,
			Run: func(ctx context.Context) error {
				_, err := a.Mutations.RefreshProfile(ctx)
				return err
			},
		},
	}
	return poller.New(tasks,
		poller.WithGuard(a.Session.IsAuthenticated),
		poller.WithLogger(a.Logger.With().Str("component", "poller").Logger()),
	)
}

// Close closes all resources
func (a *App) Close() error {
	if a.Cache != nil {
		a.Cache.Clear()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
