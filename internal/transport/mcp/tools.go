package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domainprompt "github.com/alanyang/prompt-hub/internal/domain/prompt"
	"github.com/alanyang/prompt-hub/internal/service/library"
)

// defaultSearchLimit caps search_prompts when the caller passes no limit.
const defaultSearchLimit = 20

// RegisterTools registers all MCP tools on the server.
// [SRP] Tool registration only.
// [OCP] Add a new tool by adding a new AddTool call. server.go never changes.
func RegisterTools(s *mcpserver.MCPServer, lib *library.Service, userID string) {
	s.AddTool(mcpmcp.NewTool("list_prompts",
		mcpmcp.WithDescription("List system templates, custom templates and saved prompts. All filters are optional and combine with AND."),
		mcpmcp.WithString("query", mcpmcp.Description("Case-insensitive match on title or description")),
		mcpmcp.WithString("category", mcpmcp.Description("Exact category")),
		mcpmcp.WithString("tags", mcpmcp.Description("Comma-separated tags; a prompt must carry all of them")),
	), listPromptsHandler(lib))

	s.AddTool(mcpmcp.NewTool("get_prompt",
		mcpmcp.WithDescription("Return one prompt with its content, variables and rating counts."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Prompt id")),
	), getPromptHandler(lib))

	s.AddTool(mcpmcp.NewTool("render_prompt",
		mcpmcp.WithDescription("Substitute values into a prompt's {variable} placeholders and return the text. Missing values are left as placeholders."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Prompt id")),
		mcpmcp.WithObject("values", mcpmcp.Description("Map of variable id to value")),
	), renderPromptHandler(lib))

	s.AddTool(mcpmcp.NewTool("search_prompts",
		mcpmcp.WithDescription("Full-text search over titles, descriptions, content and tags, best match first."),
		mcpmcp.WithString("query", mcpmcp.Required(), mcpmcp.Description("Search terms")),
		mcpmcp.WithNumber("limit", mcpmcp.Description("Maximum number of results (default 20)")),
	), searchPromptsHandler(lib))

	s.AddTool(mcpmcp.NewTool("extract_variables",
		mcpmcp.WithDescription("List the {variable} placeholders found in a piece of text."),
		mcpmcp.WithString("content", mcpmcp.Required(), mcpmcp.Description("Prompt text")),
	), extractVariablesHandler(lib))

	s.AddTool(mcpmcp.NewTool("save_prompt",
		mcpmcp.WithDescription("Save a prompt to the local library. Returns the saved prompt with its new id."),
		mcpmcp.WithString("title", mcpmcp.Required(), mcpmcp.Description("Prompt title")),
		mcpmcp.WithString("content", mcpmcp.Required(), mcpmcp.Description("Prompt text")),
		mcpmcp.WithString("description", mcpmcp.Description("Short description")),
		mcpmcp.WithString("category", mcpmcp.Description("Category")),
		mcpmcp.WithString("tags", mcpmcp.Description("Comma-separated tags")),
		mcpmcp.WithString("original_prompt_id", mcpmcp.Description("Template this prompt was derived from")),
	), savePromptHandler(lib))

	s.AddTool(mcpmcp.NewTool("rate_prompt",
		mcpmcp.WithDescription("Record a thumbs-up or thumbs-down vote. Returns the prompt with updated counts."),
		mcpmcp.WithString("id", mcpmcp.Required(), mcpmcp.Description("Prompt id")),
		mcpmcp.WithBoolean("positive", mcpmcp.Required(), mcpmcp.Description("true for thumbs-up")),
	), ratePromptHandler(lib, userID))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func listPromptsHandler(lib *library.Service) mcpserver.ToolHandlerFunc {
	return func(_ context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		f := domainprompt.Filter{
			Search:   mcpmcp.ParseString(req, "query", ""),
			Category: mcpmcp.ParseString(req, "category", ""),
			Tags:     splitTags(mcpmcp.ParseString(req, "tags", "")),
		}
		return jsonResult(lib.Filter(f))
	}
}

func getPromptHandler(lib *library.Service) mcpserver.ToolHandlerFunc {
	return func(_ context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		p, err := lib.Prompt(mcpmcp.ParseString(req, "id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(p)
	}
}

func renderPromptHandler(lib *library.Service) mcpserver.ToolHandlerFunc {
	return func(_ context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		raw := mcpmcp.ParseStringMap(req, "values", map[string]any{})
		values := make(map[string]string, len(raw))
		for k, v := range raw {
			values[k] = fmt.Sprint(v)
		}

		text, err := lib.Render(mcpmcp.ParseString(req, "id", ""), values)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return mcpmcp.NewToolResultText(text), nil
	}
}

func searchPromptsHandler(lib *library.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		query := mcpmcp.ParseString(req, "query", "")
		if strings.TrimSpace(query) == "" {
			return mcpmcp.NewToolResultText("error: query must not be empty"), nil
		}
		limit := mcpmcp.ParseInt(req, "limit", defaultSearchLimit)
		if limit <= 0 {
			limit = defaultSearchLimit
		}

		hits, err := lib.Search(ctx, query, limit)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(hits)
	}
}

func extractVariablesHandler(lib *library.Service) mcpserver.ToolHandlerFunc {
	return func(_ context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		return jsonResult(lib.ExtractVariables(mcpmcp.ParseString(req, "content", "")))
	}
}

func savePromptHandler(lib *library.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		title := mcpmcp.ParseString(req, "title", "")
		content := mcpmcp.ParseString(req, "content", "")
		if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
			return mcpmcp.NewToolResultText("error: title and content are required"), nil
		}

		saved, err := lib.SavePrompt(ctx, domainprompt.Prompt{
			Title:            title,
			Content:          content,
			Description:      mcpmcp.ParseString(req, "description", ""),
			Category:         mcpmcp.ParseString(req, "category", ""),
			Tags:             splitTags(mcpmcp.ParseString(req, "tags", "")),
			Variables:        lib.ExtractVariables(content),
			OriginalPromptID: mcpmcp.ParseString(req, "original_prompt_id", ""),
		})
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(saved)
	}
}

func ratePromptHandler(lib *library.Service, userID string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		id := mcpmcp.ParseString(req, "id", "")
		positive := mcpmcp.ParseBoolean(req, "positive", true)

		p, err := lib.Rate(ctx, id, positive, userID)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		return jsonResult(p)
	}
}

func jsonResult(v any) (*mcpmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
	}
	return mcpmcp.NewToolResultText(string(data)), nil
}

func splitTags(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
