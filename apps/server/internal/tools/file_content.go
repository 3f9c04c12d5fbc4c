package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcrae/bitbucket-mcp/apps/server/internal/bitbucket"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/config"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/session"
)

// FileContentTool fetches the raw content of a single file.
type FileContentTool struct {
	base
}

func NewFileContentTool(client *bitbucket.Client, sessions *session.Manager, cfg config.Config, log *slog.Logger) *FileContentTool {
	return &FileContentTool{base: newBase(client, sessions, cfg, log)}
}

func (t *FileContentTool) Definition() mcp.Tool {
	return mcp.NewTool("get_specific_file_content",
		mcp.WithDescription("Fetch the content of a single file from a repository."),
		mcp.WithString("workspace",
			mcp.Required(),
			mcp.Description("Workspace slug"),
		),
		mcp.WithString("repo_slug",
			mcp.Required(),
			mcp.Description("Repository slug"),
		),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the file within the repository"),
		),
		mcp.WithString("branch",
			mcp.Description("Branch name"),
			mcp.DefaultString("main"),
		),
	)
}

func (t *FileContentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspace, err := req.RequireString("workspace")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repoSlug, err := req.RequireString("repo_slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filePath, err := req.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	branch := req.GetString("branch", "main")
	return jsonResult(t.execute(ctx, workspace, repoSlug, filePath, branch))
}

func (t *FileContentTool) execute(ctx context.Context, workspace, repoSlug, filePath, branch string) map[string]any {
	creds, fail := t.ensureSession(ctx)
	if fail != nil {
		return fail
	}

	ref := bitbucket.RepoRef{Workspace: workspace, Slug: repoSlug, Branch: branch}
	content, err := t.client.FileContent(ctx, creds, ref, filePath)
	if err != nil {
		return failureFromError("fetch file "+filePath, err)
	}
	return map[string]any{
		"success":    true,
		"workspace":  workspace,
		"repository": repoSlug,
		"file_path":  filePath,
		"branch":     branch,
		"content":    content,
		"size":       len(content),
	}
}
