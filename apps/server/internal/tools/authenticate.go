package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcrae/bitbucket-mcp/apps/server/internal/bitbucket"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/config"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/session"
)

// AuthenticateTool validates credentials against GET /user and stores the
// session used by every other tool.
type AuthenticateTool struct {
	base
}

func NewAuthenticateTool(client *bitbucket.Client, sessions *session.Manager, cfg config.Config, log *slog.Logger) *AuthenticateTool {
	return &AuthenticateTool{base: newBase(client, sessions, cfg, log)}
}

func (t *AuthenticateTool) Definition() mcp.Tool {
	return mcp.NewTool("authenticate_user",
		mcp.WithDescription("Authenticate with Bitbucket using an email address and the configured token. Stores the session for subsequent tool calls."),
		mcp.WithString("email",
			mcp.Description("Bitbucket email address (optional, falls back to the configured BITBUCKET_EMAIL)"),
		),
	)
}

func (t *AuthenticateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.execute(ctx, req.GetString("email", "")))
}

func (t *AuthenticateTool) execute(ctx context.Context, email string) map[string]any {
	if email == "" {
		email = t.cfg.Email
	}
	if email == "" {
		return failure("No email provided and BITBUCKET_EMAIL not configured. Provide an email parameter or set BITBUCKET_EMAIL.")
	}
	if t.cfg.Token == "" {
		return failure("BITBUCKET_TOKEN is not configured.")
	}

	creds := bitbucket.Credentials{Email: email, Token: t.cfg.Token}
	user, err := t.client.CurrentUser(ctx, creds)
	if err != nil {
		return authFailure(err)
	}

	t.sessions.Set(creds)
	t.log.Info("authenticated", "username", user.Username)
	return map[string]any{
		"success": true,
		"user":    user,
		"message": fmt.Sprintf("Authenticated as: %s using email: %s", user.Username, email),
	}
}
