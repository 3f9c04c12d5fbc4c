package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcrae/bitbucket-mcp/apps/server/internal/bitbucket"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/config"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/session"
)

// FilesListTool recursively lists every file path in a repository without
// fetching content, and filters a code-file subset by extension.
type FilesListTool struct {
	base
}

func NewFilesListTool(client *bitbucket.Client, sessions *session.Manager, cfg config.Config, log *slog.Logger) *FilesListTool {
	return &FilesListTool{base: newBase(client, sessions, cfg, log)}
}

func (t *FilesListTool) Definition() mcp.Tool {
	return mcp.NewTool("get_repository_files_list",
		mcp.WithDescription("List every file path in a repository (no content), plus the subset that looks like code or text files."),
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

func (t *FilesListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

func (t *FilesListTool) execute(ctx context.Context, workspace, repoSlug, branch, path string) map[string]any {
	creds, fail := t.ensureSession(ctx)
	if fail != nil {
		return fail
	}

	ref := bitbucket.RepoRef{Workspace: workspace, Slug: repoSlug, Branch: branch}
	allFiles, err := t.client.ListFiles(ctx, creds, ref, path)
	if err != nil {
		return failureFromError("get files list", err)
	}

	codeFiles := []string{}
	for _, f := range allFiles {
		if bitbucket.IsCodeFile(f) {
			codeFiles = append(codeFiles, f)
		}
	}

	return map[string]any{
		"success":          true,
		"workspace":        workspace,
		"repository":       repoSlug,
		"branch":           branch,
		"all_files":        allFiles,
		"code_files":       codeFiles,
		"total_files":      len(allFiles),
		"code_files_count": len(codeFiles),
	}
}
