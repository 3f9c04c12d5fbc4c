package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcrae/bitbucket-mcp/apps/server/internal/bitbucket"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/config"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/session"
)

// WorkspacesTool lists every workspace the session can see.
type WorkspacesTool struct {
	base
}

func NewWorkspacesTool(client *bitbucket.Client, sessions *session.Manager, cfg config.Config, log *slog.Logger) *WorkspacesTool {
	return &WorkspacesTool{base: newBase(client, sessions, cfg, log)}
}

func (t *WorkspacesTool) Definition() mcp.Tool {
	return mcp.NewTool("get_workspaces",
		mcp.WithDescription("List the Bitbucket workspaces the authenticated user has access to."),
	)
}

func (t *WorkspacesTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.execute(ctx))
}

func (t *WorkspacesTool) execute(ctx context.Context) map[string]any {
	creds, fail := t.ensureSession(ctx)
	if fail != nil {
		return fail
	}

	workspaces, err := t.client.Workspaces(ctx, creds)
	if err != nil {
		return failureFromError("get workspaces", err)
	}
	return map[string]any{
		"success":    true,
		"workspaces": workspaces,
		"count":      len(workspaces),
	}
}
