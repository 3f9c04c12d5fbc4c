package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcrae/bitbucket-mcp/apps/server/internal/bitbucket"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/config"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/session"
)

// CodebaseTool fetches a repository's directory tree with inline content for
// text files.
type CodebaseTool struct {
	base
}

func NewCodebaseTool(client *bitbucket.Client, sessions *session.Manager, cfg config.Config, log *slog.Logger) *CodebaseTool {
	return &CodebaseTool{base: newBase(client, sessions, cfg, log)}
}

func (t *CodebaseTool) Definition() mcp.Tool {
	return mcp.NewTool("get_repository_codebase",
		mcp.WithDescription("Fetch the directory structure of a repository, with inline content for text and code files."),
		mcp.WithString("workspace",
			mcp.Required(),
			mcp.Description("Workspace slug"),
		),
		mcp.WithString("repo_slug",
			mcp.Required(),
			mcp.Description("Repository slug"),
		),
		mcp.WithString("branch",
			mcp.Description("Branch name"),
			mcp.DefaultString("main"),
		),
		mcp.WithString("path",
			mcp.Description("Path within the repository (default: root)"),
		),
	)
}

func (t *CodebaseTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspace, err := req.RequireString("workspace")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repoSlug, err := req.RequireString("repo_slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	branch := req.GetString("branch", "main")
	path := req.GetString("path", "")
	return jsonResult(t.execute(ctx, workspace, repoSlug, branch, path))
}

func (t *CodebaseTool) execute(ctx context.Context, workspace, repoSlug, branch, path string) map[string]any {
	creds, fail := t.ensureSession(ctx)
	if fail != nil {
		return fail
	}

	ref := bitbucket.RepoRef{Workspace: workspace, Slug: repoSlug, Branch: branch}
	tree, err := t.client.FetchTree(ctx, creds, ref, path)
	if err != nil {
		return failureFromError("get codebase structure", err)
	}
	return map[string]any{
		"success":    true,
		"workspace":  workspace,
		"repository": repoSlug,
		"branch":     branch,
		"structure":  tree,
	}
}
