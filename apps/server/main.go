// Command server runs the Bitbucket MCP server over stdio.
//
// It exposes Bitbucket Cloud REST operations (authentication, workspace and
// repository listing, recursive codebase retrieval) as MCP tools. Point it at
// a mock-bitbucket instance via BITBUCKET_API_URL for local development.
package main

import (
	"flag"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mcrae/bitbucket-mcp/apps/server/internal/bitbucket"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/config"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/session"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/tools"
	"github.com/mcrae/bitbucket-mcp/pkg/logging"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	configFile := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	log := logging.New()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if cfg.Token == "" {
		log.Warn("no BITBUCKET_TOKEN configured; authenticated tools will fail until one is set")
	}

	client := bitbucket.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, log)
	sessions := session.NewManager()

	s := server.NewMCPServer(
		"bitbucket-mcp",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	authenticate := tools.NewAuthenticateTool(client, sessions, cfg, log)
	s.AddTool(authenticate.Definition(), authenticate.Handle)

	workspaces := tools.NewWorkspacesTool(client, sessions, cfg, log)
	s.AddTool(workspaces.Definition(), workspaces.Handle)

	repositories := tools.NewRepositoriesTool(client, sessions, cfg, log)
	s.AddTool(repositories.Definition(), repositories.Handle)

	codebase := tools.NewCodebaseTool(client, sessions, cfg, log)
	s.AddTool(codebase.Definition(), codebase.Handle)

	fileContent := tools.NewFileContentTool(client, sessions, cfg, log)
	s.AddTool(fileContent.Definition(), fileContent.Handle)

	filesList := tools.NewFilesListTool(client, sessions, cfg, log)
	s.AddTool(filesList.Definition(), filesList.Handle)

	saveCodebase := tools.NewSaveCodebaseTool(client, sessions, cfg, log)
	s.AddTool(saveCodebase.Definition(), saveCodebase.Handle)

	log.Info("bitbucket-mcp starting", "version", version, "apiBaseURL", cfg.APIBaseURL)
	if err := server.ServeStdio(s); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}
