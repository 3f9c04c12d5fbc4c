// Package tools implements the MCP tools exposed by the server. Each tool is
// a struct with a Definition and a Handle method, registered against the MCP
// server in main.
//
// Every tool returns a JSON text result with the uniform envelope
// {"success": bool, ...}; domain failures never surface as protocol errors.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcrae/bitbucket-mcp/apps/server/internal/bitbucket"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/config"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/session"
)

const notAuthenticatedMsg = "Not authenticated. Please authenticate first using authenticate_user or configure BITBUCKET_EMAIL."

// base carries the dependencies shared by every tool.
type base struct {
	client   *bitbucket.Client
	sessions *session.Manager
	cfg      config.Config
	log      *slog.Logger
}

func newBase(client *bitbucket.Client, sessions *session.Manager, cfg config.Config, log *slog.Logger) base {
	return base{client: client, sessions: sessions, cfg: cfg, log: log}
}

// ensureSession returns the active credentials. When no session exists yet
// and an email is configured, it authenticates first; otherwise it returns
// the unauthenticated failure envelope.
func (b *base) ensureSession(ctx context.Context) (bitbucket.Credentials, map[string]any) {
	if creds, ok := b.sessions.Current(); ok {
		return creds, nil
	}
	if b.cfg.Email == "" || b.cfg.Token == "" {
		return bitbucket.Credentials{}, failure(notAuthenticatedMsg)
	}

	creds := bitbucket.Credentials{Email: b.cfg.Email, Token: b.cfg.Token}
	if _, err := b.client.CurrentUser(ctx, creds); err != nil {
		return bitbucket.Credentials{}, authFailure(err)
	}
	b.sessions.Set(creds)
	b.log.Info("auto-authenticated", "email", b.cfg.Email)
	return creds, nil
}

// failure builds the uniform failure envelope.
func failure(msg string) map[string]any {
	return map[string]any{"success": false, "error": msg}
}

// failureFromError maps a client error onto the failure envelope. Remote
// non-2xx responses keep their status and body as error detail; everything
// else (network faults, timeouts) becomes a message-only failure.
func failureFromError(what string, err error) map[string]any {
	var remote *bitbucket.RemoteError
	if errors.As(err, &remote) {
		return map[string]any{
			"success": false,
			"error":   fmt.Sprintf("Failed to %s: %d", what, remote.StatusCode),
			"details": remote.Body,
		}
	}
	return failure(fmt.Sprintf("Error while trying to %s: %v", what, err))
}

func authFailure(err error) map[string]any {
	var remote *bitbucket.RemoteError
	if errors.As(err, &remote) {
		return map[string]any{
			"success": false,
			"error":   fmt.Sprintf("Authentication failed: %d", remote.StatusCode),
			"details": remote.Body,
		}
	}
	return failure(fmt.Sprintf("Exception during authentication: %v", err))
}

// jsonResult marshals an envelope into an MCP text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
