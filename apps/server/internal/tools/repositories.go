package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcrae/bitbucket-mcp/apps/server/internal/bitbucket"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/config"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/session"
)

// RepositoriesTool lists repositories, optionally scoped to one workspace,
// aggregating every page of the listing.
type RepositoriesTool struct {
	base
}

func NewRepositoriesTool(client *bitbucket.Client, sessions *session.Manager, cfg config.Config, log *slog.Logger) *RepositoriesTool {
	return &RepositoriesTool{base: newBase(client, sessions, cfg, log)}
}

func (t *RepositoriesTool) Definition() mcp.Tool {
	return mcp.NewTool("get_repositories",
		mcp.WithDescription("List repositories, newest-updated first. Without a workspace, lists the repositories visible to the authenticated user."),
		mcp.WithString("workspace",
			mcp.Description("Workspace slug (optional)"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Number of repositories per page"),
			mcp.DefaultNumber(50),
		),
	)
}

func (t *RepositoriesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspace := req.GetString("workspace", "")
	pageSize := req.GetInt("page_size", t.cfg.PageSize)
	return jsonResult(t.execute(ctx, workspace, pageSize))
}

func (t *RepositoriesTool) execute(ctx context.Context, workspace string, pageSize int) map[string]any {
	creds, fail := t.ensureSession(ctx)
	if fail != nil {
		return fail
	}
	if pageSize <= 0 {
		pageSize = t.cfg.PageSize
	}

	repos, err := t.client.Repositories(ctx, creds, workspace, pageSize)
	if err != nil {
		return failureFromError("get repositories", err)
	}
	return map[string]any{
		"success":      true,
		"repositories": repos,
		"count":        len(repos),
	}
}
