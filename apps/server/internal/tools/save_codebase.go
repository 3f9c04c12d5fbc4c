package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcrae/bitbucket-mcp/apps/server/internal/archive"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/bitbucket"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/config"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/session"
)

// SaveCodebaseTool fetches a repository tree and persists it as a JSON
// snapshot on local disk.
type SaveCodebaseTool struct {
	base
	now func() time.Time
}

func NewSaveCodebaseTool(client *bitbucket.Client, sessions *session.Manager, cfg config.Config, log *slog.Logger) *SaveCodebaseTool {
	return &SaveCodebaseTool{base: newBase(client, sessions, cfg, log), now: time.Now}
}

func (t *SaveCodebaseTool) Definition() mcp.Tool {
	return mcp.NewTool("save_codebase_to_file",
		mcp.WithDescription("Fetch a repository's codebase structure and save it to a local JSON file."),
		mcp.WithString("workspace",
			mcp.Required(),
			mcp.Description("Workspace slug"),
		),
		mcp.WithString("repo_slug",
			mcp.Required(),
			mcp.Description("Repository slug"),
		),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Local filename to save to"),
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

func (t *SaveCodebaseTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspace, err := req.RequireString("workspace")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repoSlug, err := req.RequireString("repo_slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	branch := req.GetString("branch", "main")
	path := req.GetString("path", "")
	return jsonResult(t.execute(ctx, workspace, repoSlug, filename, branch, path))
}

func (t *SaveCodebaseTool) execute(ctx context.Context, workspace, repoSlug, filename, branch, path string) map[string]any {
	creds, fail := t.ensureSession(ctx)
	if fail != nil {
		return fail
	}

	ref := bitbucket.RepoRef{Workspace: workspace, Slug: repoSlug, Branch: branch}
	tree, err := t.client.FetchTree(ctx, creds, ref, path)
	if err != nil {
		return failureFromError("get codebase structure", err)
	}

	snap := archive.Snapshot{
		Workspace:  workspace,
		Repository: repoSlug,
		Timestamp:  t.now(),
		Structure:  tree,
	}
	if err := archive.Write(filename, snap); err != nil {
		return failure(fmt.Sprintf("Error saving to file: %v", err))
	}

	t.log.Info("codebase snapshot saved", "filename", filename, "workspace", workspace, "repository", repoSlug)
	return map[string]any{
		"success":    true,
		"filename":   filename,
		"workspace":  workspace,
		"repository": repoSlug,
		"message":    fmt.Sprintf("Codebase structure saved to %s", filename),
	}
}
