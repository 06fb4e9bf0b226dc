package wire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/prompt-hub/internal/adapter/bleveindex"
	githubadapter "github.com/alanyang/prompt-hub/internal/adapter/github"
	"github.com/alanyang/prompt-hub/internal/adapter/memory"
	pgdb "github.com/alanyang/prompt-hub/internal/adapter/postgres"
	pgcatalog "github.com/alanyang/prompt-hub/internal/adapter/postgres/catalog"
	pgeventbus "github.com/alanyang/prompt-hub/internal/adapter/postgres/eventbus"
	pgrating "github.com/alanyang/prompt-hub/internal/adapter/postgres/rating"
	redisadapter "github.com/alanyang/prompt-hub/internal/adapter/redis"
	"github.com/alanyang/prompt-hub/internal/adapter/securestore"
	"github.com/alanyang/prompt-hub/internal/adapter/sqlite"
	"github.com/alanyang/prompt-hub/internal/adapter/static"

	"github.com/alanyang/prompt-hub/internal/config"
	portcache "github.com/alanyang/prompt-hub/internal/port/cache"
	portcatalog "github.com/alanyang/prompt-hub/internal/port/catalog"
	porteventbus "github.com/alanyang/prompt-hub/internal/port/eventbus"
	portkv "github.com/alanyang/prompt-hub/internal/port/kv"
	portrating "github.com/alanyang/prompt-hub/internal/port/rating"

	"github.com/alanyang/prompt-hub/internal/service/analytics"
	catalogsvc "github.com/alanyang/prompt-hub/internal/service/catalog"
	"github.com/alanyang/prompt-hub/internal/service/csrf"
	"github.com/alanyang/prompt-hub/internal/service/fault"
	"github.com/alanyang/prompt-hub/internal/service/gistsync"
	"github.com/alanyang/prompt-hub/internal/service/library"

	"github.com/alanyang/prompt-hub/internal/transport"
	mcptransport "github.com/alanyang/prompt-hub/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Server    *http.Server
	Library   *library.Service
	GistSync  *gistsync.Service
	MCPServer *mcptransport.Server

	closers []io.Closer
}

// Close releases stores and connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg config.Config) (_ *App, err error) {
	app := &App{}
	defer func() {
		if err != nil {
			app.Close() //nolint:errcheck
		}
	}()

	// ── Local state ──────────────────────────────────────────────────────────
	var kv portkv.Store
	if cfg.UsesMemoryState() {
		kv = memory.NewKV()
	} else {
		store, err := sqlite.Open(cfg.StateDBPath)
		if err != nil {
			return nil, fmt.Errorf("opening state store: %w", err)
		}
		app.closers = append(app.closers, store)
		kv = store
	}

	secure, err := buildSecureStore(cfg, kv)
	if err != nil {
		return nil, err
	}

	// ── Catalog cache ────────────────────────────────────────────────────────
	var cache portcache.Cache = memory.NewCache()
	if cfg.RedisURL != "" {
		client, err := redisadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		app.closers = append(app.closers, client)
		cache = redisadapter.New(client, "prompthub:")
	}

	// ── Database ─────────────────────────────────────────────────────────────
	var (
		remote   portcatalog.Source
		ratings  portrating.Repository
		eventBus porteventbus.EventBus = memory.NewEventBus()
	)
	if cfg.DatabaseURL != "" {
		pool, err := connectDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, closerFunc(func() error { pool.Close(); return nil }))
		remote = pgcatalog.New(pool)
		ratings = pgrating.New(pool)
		eventBus = pgeventbus.New(pool)
	} else {
		slog.Info("DATABASE_URL not set; serving the bundled catalog with local ratings")
	}

	fallback := static.Embedded()
	if cfg.CatalogFile != "" {
		fallback = static.File(cfg.CatalogFile)
	}

	index, err := bleveindex.New()
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}
	app.closers = append(app.closers, index)

	// ── Services ─────────────────────────────────────────────────────────────
	tracker := analytics.NewService(kv, slog.Default())
	reporter := fault.NewReporter(tracker)

	catalog := catalogsvc.NewService(remote, fallback, cache, catalogsvc.Config{
		Language: cfg.CatalogLanguage,
		CacheTTL: cfg.CatalogCacheTTL,
	})

	lib := library.NewService(catalog, kv, ratings, index, eventBus, tracker, library.Config{UserID: cfg.UserID})
	if err := lib.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading library: %w", err)
	}

	gistSvc := gistsync.NewService(secure, githubadapter.Factory(cfg.GitHubAPIURL), lib, reporter)
	gistSvc.Load(ctx)
	if !gistSvc.IsAuthenticated() && cfg.GitHubToken != "" {
		if err := gistSvc.Login(ctx, cfg.GitHubToken); err != nil {
			slog.WarnContext(ctx, "GITHUB_TOKEN rejected; continuing signed out", "error", err)
		}
	}

	var csrfSvc *csrf.Service
	if cfg.CSRFProtection {
		csrfSvc = csrf.NewService(secure)
		if err := csrfSvc.Init(ctx); err != nil {
			return nil, fmt.Errorf("initializing csrf token: %w", err)
		}
	}

	var mcpServer *mcptransport.Server
	if cfg.MCPEnabled {
		mcpServer = mcptransport.New(mcptransport.NewSessionRegistry(), lib, cfg.UserID)
	}

	// ── Transport ─────────────────────────────────────────────────────────────
	router := transport.NewRouter(ctx, lib, gistSvc, tracker, csrfSvc, mcpServer, eventBus)

	app.Server = &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}
	app.Library = lib
	app.GistSync = gistSvc
	app.MCPServer = mcpServer

	slog.Info("application wired",
		"port", cfg.Port,
		"database", cfg.DatabaseURL != "",
		"redis", cfg.RedisURL != "",
		"encrypted_secrets", secure.Encrypted(),
		"csrf", csrfSvc != nil,
		"mcp", mcpServer != nil,
	)

	// ── Background jobs ──────────────────────────────────────────────────────
	startBackground(ctx, cfg, app)

	return app, nil
}

func connectDatabase(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pool, err := pgdb.Connect(ctx, cfg.DatabaseURL, pgdb.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MaxConnLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return pool, nil
}

// buildSecureStore derives a persistent key from SECURE_STORAGE_SECRET. Without
// a secret the key lives only for this process, so secrets stored by an
// earlier run cannot be read back.
func buildSecureStore(cfg config.Config, kv portkv.Store) (*securestore.Store, error) {
	if cfg.SecureStorageSecret != "" {
		key, err := securestore.DeriveKey(cfg.SecureStorageSecret, cfg.SecureStorageSaltPath)
		if err != nil {
			return nil, fmt.Errorf("deriving secure storage key: %w", err)
		}
		return securestore.New(kv, key), nil
	}
	slog.Warn("SECURE_STORAGE_SECRET not set; secrets are encrypted with a per-process key")
	key, err := securestore.SessionKey()
	if err != nil {
		return nil, err
	}
	return securestore.New(kv, key), nil
}
