package wire

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyang/prompt-hub/internal/adapter/static"
	"github.com/alanyang/prompt-hub/internal/config"
)

// startBackground launches the long-running jobs that keep the library in
// step with the outside world. All of them stop when ctx is cancelled.
func startBackground(ctx context.Context, cfg config.Config, app *App) {
	if cfg.CatalogWatch && cfg.CatalogFile != "" {
		go watchCatalog(ctx, cfg.CatalogFile, app)
	}
	if cfg.TokenCheckInterval > 0 {
		go checkTokenPeriodically(ctx, cfg.TokenCheckInterval, app)
	}
}

// watchCatalog reloads the system templates whenever the catalog file changes.
func watchCatalog(ctx context.Context, path string, app *App) {
	slog.Info("watching catalog file", "path", path)
	err := static.Watch(ctx, path, static.DefaultDebounce, func(ctx context.Context) {
		if err := app.Library.Refresh(ctx); err != nil {
			slog.ErrorContext(ctx, "catalog reload failed", "path", path, "error", err)
			return
		}
		slog.InfoContext(ctx, "catalog reloaded", "path", path, "prompts", len(app.Library.Prompts()))
	})
	if err != nil && ctx.Err() == nil {
		slog.Error("catalog watcher stopped", "path", path, "error", err)
	}
}

// checkTokenPeriodically re-validates the GitHub token so that one nearing
// expiry is extended, and a revoked one signs the workspace out.
func checkTokenPeriodically(ctx context.Context, every time.Duration, app *App) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !app.GistSync.IsAuthenticated() {
				continue
			}
			if !app.GistSync.CheckTokenValidity(ctx) {
				slog.WarnContext(ctx, "github token no longer valid; signed out")
			}
		}
	}
}
