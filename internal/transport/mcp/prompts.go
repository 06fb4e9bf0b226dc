package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/service/library"
)

// PromptSync mirrors the library's templates as MCP native prompts. Each
// template variable becomes a prompt argument; getting the prompt renders it.
//
// [SRP] Prompt registration only. Separated from server lifecycle and tools.
type PromptSync struct {
	srv *mcpserver.MCPServer
	lib *library.Service

	mu    sync.Mutex
	names map[string]bool
}

// RegisterPrompts registers every current template and returns the syncer so
// later library changes can be mirrored with Sync.
func RegisterPrompts(s *mcpserver.MCPServer, lib *library.Service) *PromptSync {
	p := &PromptSync{srv: s, lib: lib, names: make(map[string]bool)}
	p.Sync()
	return p
}

// Sync adds or replaces one MCP prompt per template and deletes prompts whose
// template is gone. Saved prompts are not exposed.
func (p *PromptSync) Sync() {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := make(map[string]bool)
	for _, tmpl := range p.lib.Prompts() {
		if tmpl.Type == domainprompt.TypeLocal {
			continue
		}
		current[tmpl.ID] = true
		p.srv.AddPrompt(newPrompt(tmpl), promptHandler(tmpl.ID, p.lib))
	}

	var stale []string
	for name := range p.names {
		if !current[name] {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		sort.Strings(stale)
		p.srv.DeletePrompts(stale...)
	}
	p.names = current
}

// Names returns the registered prompt names, sorted.
func (p *PromptSync) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.names))
	for name := range p.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func newPrompt(tmpl domainprompt.Prompt) mcpmcp.Prompt {
	desc := tmpl.Description
	if desc == "" {
		desc = tmpl.Title
	}
	opts := []mcpmcp.PromptOption{mcpmcp.WithPromptDescription(desc)}
	for _, v := range tmpl.Variables {
		argDesc := v.Description
		if argDesc == "" {
			argDesc = v.Name
		}
		opts = append(opts, mcpmcp.WithArgument(v.ID, mcpmcp.ArgumentDescription(argDesc)))
	}
	return mcpmcp.NewPrompt(tmpl.ID, opts...)
}

func promptHandler(id string, lib *library.Service) mcpserver.PromptHandlerFunc {
	return func(_ context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		tmpl, err := lib.Prompt(id)
		if err != nil {
			return nil, fmt.Errorf("get prompt %s: %w", id, err)
		}
		text, err := lib.Render(id, req.Params.Arguments)
		if err != nil {
			return nil, fmt.Errorf("render prompt %s: %w", id, err)
		}

		return mcpmcp.NewGetPromptResult(
			tmpl.Title,
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: text,
					},
				),
			},
		), nil
	}
}
