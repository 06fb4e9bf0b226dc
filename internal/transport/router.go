package transport

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/prompt-hub/internal/domain/event"
	porteventbus "github.com/alanyang/prompt-hub/internal/port/eventbus"
	"github.com/alanyang/prompt-hub/internal/service/analytics"
	"github.com/alanyang/prompt-hub/internal/service/csrf"
	"github.com/alanyang/prompt-hub/internal/service/gistsync"
	"github.com/alanyang/prompt-hub/internal/service/library"

	folderhandler "github.com/alanyang/prompt-hub/internal/transport/folder"
	githubhandler "github.com/alanyang/prompt-hub/internal/transport/github"
	mcptransport "github.com/alanyang/prompt-hub/internal/transport/mcp"
	prompthandler "github.com/alanyang/prompt-hub/internal/transport/prompt"
	savedhandler "github.com/alanyang/prompt-hub/internal/transport/saved"
	settingshandler "github.com/alanyang/prompt-hub/internal/transport/settings"
	templatehandler "github.com/alanyang/prompt-hub/internal/transport/template"
	wshandler "github.com/alanyang/prompt-hub/internal/transport/ws"
)

// NewRouter mounts the REST API under /api, the change feed on /api/ws and,
// when mcpSrv is non-nil, the MCP endpoint on /mcp. csrfSvc may be nil, which
// disables token checks on mutating requests.
func NewRouter(
	ctx context.Context,
	lib *library.Service,
	gistSvc *gistsync.Service,
	tracker *analytics.Service,
	csrfSvc *csrf.Service,
	mcpSrv *mcptransport.Server,
	eventBus porteventbus.EventBus,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	api := r.Group("/api")
	if csrfSvc != nil {
		api.Use(CSRFMiddleware(csrfSvc))
	}

	prompthandler.Register(api, lib)
	templatehandler.Register(api.Group("/templates"), lib)
	savedhandler.Register(api.Group("/saved"), lib, tracker)
	folderhandler.Register(api.Group("/folders"), lib)
	githubhandler.Register(api.Group("/github"), gistSvc)
	settingshandler.Register(api.Group("/settings"), tracker, csrfSvc)

	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))

	if mcpSrv != nil {
		r.Any("/mcp", gin.WrapH(mcpSrv.Handler()))
	}

	// Bridge: one subscription per domain channel. Every event reaches the
	// WebSocket clients; event.Type in the payload lets the client filter.
	for _, ch := range event.Channels {
		c := ch
		if _, err := eventBus.Subscribe(ctx, c, func(ctx context.Context, e event.Event) {
			hub.Broadcast(e)
			if mcpSrv != nil {
				forwardToMCP(ctx, mcpSrv, e)
			}
		}); err != nil {
			slog.Error("failed to subscribe channel to WS hub", "channel", c, "error", err)
		}
	}

	return r
}

// templateEvents change the set of MCP prompts.
var templateEvents = map[event.Type]bool{
	event.TypeTemplateCreated:  true,
	event.TypeTemplateUpdated:  true,
	event.TypeTemplateDeleted:  true,
	event.TypeCatalogRefreshed: true,
	event.TypeLibraryImported:  true,
}

func forwardToMCP(ctx context.Context, srv *mcptransport.Server, e event.Event) {
	if templateEvents[e.Type] {
		srv.Prompts().Sync()
	}
	if err := srv.Registry().Broadcast(ctx, e); err != nil {
		slog.WarnContext(ctx, "mcp: notification failed", "type", e.Type, "error", err)
	}
}
