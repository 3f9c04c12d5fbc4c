package tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcrae/bitbucket-mcp/apps/server/internal/archive"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/bitbucket"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/config"
	"github.com/mcrae/bitbucket-mcp/apps/server/internal/session"
)

// env bundles a tool test fixture: a fake Bitbucket remote plus the wiring
// main would do.
type env struct {
	client   *bitbucket.Client
	sessions *session.Manager
	cfg      config.Config
	log      *slog.Logger
}

func newEnv(t *testing.T, handler http.HandlerFunc) env {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		Email:          "dev@acme.test",
		Token:          "secret",
		APIBaseURL:     ts.URL,
		RequestTimeout: 5 * time.Second,
		PageSize:       50,
	}
	return env{
		client:   bitbucket.NewClient(ts.URL, cfg.RequestTimeout, log),
		sessions: session.NewManager(),
		cfg:      cfg,
		log:      log,
	}
}

func okUser(w http.ResponseWriter) {
	_ = json.NewEncoder(w).Encode(map[string]string{"username": "devuser", "display_name": "Dev User"})
}

// TestAuthenticate_Success verifies a valid probe stores the session and
// returns the user envelope.
func TestAuthenticate_Success(t *testing.T) {
	e := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user", r.URL.Path)
		okUser(w)
	})
	tool := NewAuthenticateTool(e.client, e.sessions, e.cfg, e.log)

	got := tool.execute(context.Background(), "dev@acme.test")
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "Authenticated as: devuser using email: dev@acme.test", got["message"])

	creds, ok := e.sessions.Current()
	require.True(t, ok, "successful auth must store the session")
	assert.Equal(t, "dev@acme.test", creds.Email)
}

// TestAuthenticate_BadCredentials verifies a 401 maps onto the failure
// envelope with the remote body as details, and stores no session.
func TestAuthenticate_BadCredentials(t *testing.T) {
	e := newEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("token rejected"))
	})
	tool := NewAuthenticateTool(e.client, e.sessions, e.cfg, e.log)

	got := tool.execute(context.Background(), "dev@acme.test")
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "Authentication failed: 401", got["error"])
	assert.Equal(t, "token rejected", got["details"])

	_, ok := e.sessions.Current()
	assert.False(t, ok)
}

// TestAuthenticate_NoEmail verifies the no-email failure when neither an
// argument nor config provides one.
func TestAuthenticate_NoEmail(t *testing.T) {
	e := newEnv(t, func(w http.ResponseWriter, _ *http.Request) { okUser(w) })
	e.cfg.Email = ""
	tool := NewAuthenticateTool(e.client, e.sessions, e.cfg, e.log)

	got := tool.execute(context.Background(), "")
	assert.Equal(t, false, got["success"])
	assert.Contains(t, got["error"], "No email provided")
}

// TestWorkspaces_RequiresSession verifies the unauthenticated envelope when
// no session exists and no email is configured.
func TestWorkspaces_RequiresSession(t *testing.T) {
	e := newEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected without a session")
	})
	e.cfg.Email = ""
	tool := NewWorkspacesTool(e.client, e.sessions, e.cfg, e.log)

	got := tool.execute(context.Background())
	assert.Equal(t, false, got["success"])
	assert.Equal(t, notAuthenticatedMsg, got["error"])
}

// TestWorkspaces_AutoAuthenticates verifies the configured email is used to
// authenticate transparently on first use.
func TestWorkspaces_AutoAuthenticates(t *testing.T) {
	e := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			okUser(w)
		case "/workspaces":
			_, _ = w.Write([]byte(`{"values": [{"slug": "acme"}, {"slug": "acme-labs"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	tool := NewWorkspacesTool(e.client, e.sessions, e.cfg, e.log)

	got := tool.execute(context.Background())
	require.Equal(t, true, got["success"])
	assert.Equal(t, 2, got["count"])

	_, ok := e.sessions.Current()
	assert.True(t, ok, "auto-auth must store the session")
}

// TestRepositories verifies the listing envelope.
func TestRepositories(t *testing.T) {
	e := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			okUser(w)
		case "/repositories/acme":
			assert.Equal(t, "7", r.URL.Query().Get("pagelen"))
			_, _ = w.Write([]byte(`{"values": [{"slug": "billing-api"}, {"slug": "user-service"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	tool := NewRepositoriesTool(e.client, e.sessions, e.cfg, e.log)

	got := tool.execute(context.Background(), "acme", 7)
	require.Equal(t, true, got["success"])
	assert.Equal(t, 2, got["count"])
	repos, ok := got["repositories"].([]bitbucket.Repository)
	require.True(t, ok)
	assert.Equal(t, "billing-api", repos[0].Slug)
}

func srcFixture(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			okUser(w)
		case "/repositories/acme/billing-api/src/main/":
			_ = json.NewEncoder(w).Encode(map[string]any{"values": []map[string]any{
				{"type": "commit_file", "path": "README.md", "size": 14},
				{"type": "commit_file", "path": "logo.png", "size": 8},
			}})
		case "/repositories/acme/billing-api/src/main/README.md":
			_, _ = w.Write([]byte("# billing-api\n"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}
}

// TestCodebase verifies the tree envelope shape.
func TestCodebase(t *testing.T) {
	e := newEnv(t, srcFixture(t))
	tool := NewCodebaseTool(e.client, e.sessions, e.cfg, e.log)

	got := tool.execute(context.Background(), "acme", "billing-api", "main", "")
	require.Equal(t, true, got["success"])
	assert.Equal(t, "acme", got["workspace"])
	assert.Equal(t, "billing-api", got["repository"])
	assert.Equal(t, "main", got["branch"])

	tree, ok := got["structure"].(*bitbucket.TreeNode)
	require.True(t, ok)
	require.Len(t, tree.Children, 2)
	require.NotNil(t, tree.Children[0].Content)
	assert.Nil(t, tree.Children[1].Content)
}

// TestCodebase_RootFailure verifies a failing root listing produces the
// failure envelope with remote details.
func TestCodebase_RootFailure(t *testing.T) {
	e := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/user" {
			okUser(w)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("branch not found"))
	})
	tool := NewCodebaseTool(e.client, e.sessions, e.cfg, e.log)

	got := tool.execute(context.Background(), "acme", "billing-api", "gone", "")
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "Failed to get codebase structure: 404", got["error"])
	assert.Equal(t, "branch not found", got["details"])
}

// TestFileContent verifies the single-file envelope.
func TestFileContent(t *testing.T) {
	e := newEnv(t, srcFixture(t))
	tool := NewFileContentTool(e.client, e.sessions, e.cfg, e.log)

	got := tool.execute(context.Background(), "acme", "billing-api", "README.md", "main")
	require.Equal(t, true, got["success"])
	assert.Equal(t, "README.md", got["file_path"])
	assert.Equal(t, "# billing-api\n", got["content"])
	assert.Equal(t, len("# billing-api\n"), got["size"])
}

// TestFilesList verifies the recursive listing envelope and code filter.
func TestFilesList(t *testing.T) {
	e := newEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			okUser(w)
		case "/repositories/acme/billing-api/src/main/":
			_ = json.NewEncoder(w).Encode(map[string]any{"values": []map[string]any{
				{"type": "commit_file", "path": "main.go", "size": 20},
				{"type": "commit_file", "path": "logo.png", "size": 8},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	tool := NewFilesListTool(e.client, e.sessions, e.cfg, e.log)

	got := tool.execute(context.Background(), "acme", "billing-api", "main", "")
	require.Equal(t, true, got["success"])
	assert.Equal(t, 2, got["total_files"])
	assert.Equal(t, 1, got["code_files_count"])
	assert.Equal(t, []string{"main.go"}, got["code_files"])
}

// TestSaveCodebase verifies the snapshot lands on disk with the documented
// schema.
func TestSaveCodebase(t *testing.T) {
	e := newEnv(t, srcFixture(t))
	tool := NewSaveCodebaseTool(e.client, e.sessions, e.cfg, e.log)
	fixed := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	tool.now = func() time.Time { return fixed }

	filename := filepath.Join(t.TempDir(), "snapshot.json")
	got := tool.execute(context.Background(), "acme", "billing-api", filename, "main", "")
	require.Equal(t, true, got["success"])
	assert.Equal(t, "Codebase structure saved to "+filename, got["message"])

	snap, err := archive.Read(filename)
	require.NoError(t, err)
	assert.Equal(t, "acme", snap.Workspace)
	assert.Equal(t, "billing-api", snap.Repository)
	assert.Equal(t, fixed, snap.Timestamp)
	require.NotNil(t, snap.Structure)
	assert.Len(t, snap.Structure.Children, 2)
}

// TestHandle_MissingRequiredArg verifies required-argument validation at the
// MCP boundary.
func TestHandle_MissingRequiredArg(t *testing.T) {
	e := newEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for an invalid call")
	})
	tool := NewCodebaseTool(e.client, e.sessions, e.cfg, e.log)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"repo_slug": "billing-api"}

	result, err := tool.Handle(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

// TestHandle_Envelope verifies a full Handle round-trip produces the JSON
// envelope as text content.
func TestHandle_Envelope(t *testing.T) {
	e := newEnv(t, srcFixture(t))
	tool := NewFileContentTool(e.client, e.sessions, e.cfg, e.log)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"workspace": "acme",
		"repo_slug": "billing-api",
		"file_path": "README.md",
	}

	result, err := tool.Handle(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &envelope))
	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, "# billing-api\n", envelope["content"])
}
