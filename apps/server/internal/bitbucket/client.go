// Package bitbucket talks to the Bitbucket Cloud 2.0 REST API (or the
// mock-bitbucket server in local development).
//
// The client holds no credential state: every call takes Credentials
// explicitly, so concurrent callers with different sessions are safe.
package bitbucket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the production Bitbucket Cloud API root.
const DefaultBaseURL = "https://api.bitbucket.org/2.0"

// RemoteError is a non-2xx response from the Bitbucket API. The body is
// retained as error detail so tool callers see what the remote said.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("bitbucket returned %d: %s", e.StatusCode, e.Body)
}

// Client issues requests against one Bitbucket API base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Bitbucket API client pointing at baseURL. Pass
// baseURL="" for the real Bitbucket Cloud API, or a custom URL (e.g.
// "http://localhost:9090/2.0") for the mock server.
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// CurrentUser fetches the account the credentials belong to. It is the probe
// used by authenticate_user: a 200 means the credentials are valid.
func (c *Client) CurrentUser(ctx context.Context, creds Credentials) (*Account, error) {
	var account Account
	if err := c.getJSON(ctx, creds, c.baseURL+"/user", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Workspaces lists every workspace the credentials can see, following the
// pagination cursor until exhausted.
func (c *Client) Workspaces(ctx context.Context, creds Credentials) ([]Workspace, error) {
	return collectPages[Workspace](ctx, c, creds, c.baseURL+"/workspaces")
}

// Repositories lists repositories, newest-updated first. With an empty
// workspace it lists the repositories visible to the credentials across all
// workspaces. pageSize only shapes the first request; subsequent pages follow
// the next URL verbatim.
func (c *Client) Repositories(ctx context.Context, creds Credentials, workspace string, pageSize int) ([]Repository, error) {
	u := c.baseURL + "/repositories"
	if workspace != "" {
		u += "/" + workspace
	}
	q := url.Values{}
	q.Set("pagelen", strconv.Itoa(pageSize))
	q.Set("sort", "-updated_on")
	return collectPages[Repository](ctx, c, creds, u+"?"+q.Encode())
}

// ListDir returns every immediate entry of dirPath on the given branch,
// following the listing's pagination cursor until exhausted.
func (c *Client) ListDir(ctx context.Context, creds Credentials, ref RepoRef, dirPath string) ([]SrcEntry, error) {
	return collectPages[SrcEntry](ctx, c, creds, c.srcURL(ref, dirPath))
}

// FileContent fetches the raw bytes of one file as a string. The src
// endpoint returns file bodies directly when the path addresses a file.
func (c *Client) FileContent(ctx context.Context, creds Credentials, ref RepoRef, filePath string) (string, error) {
	resp, err := c.get(ctx, creds, c.srcURL(ref, filePath))
	if err != nil {
		return "", err
	}
	defer func() { //nolint:errcheck // response body close errors are non-actionable after reading
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filePath, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return string(body), nil
}

func (c *Client) srcURL(ref RepoRef, path string) string {
	return fmt.Sprintf("%s/repositories/%s/%s/src/%s/%s", c.baseURL, ref.Workspace, ref.Slug, ref.Branch, path)
}

// page is the envelope shape shared by every paginated Bitbucket listing.
type page[T any] struct {
	Values []T    `json:"values"`
	Next   string `json:"next"`
}

// collectPages fetches u and follows the next URL until absent, returning
// the concatenated values in page order.
func collectPages[T any](ctx context.Context, c *Client, creds Credentials, u string) ([]T, error) {
	var all []T
	for u != "" {
		var p page[T]
		if err := c.getJSON(ctx, creds, u, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Values...)
		u = p.Next
	}
	return all, nil
}

// getJSON issues an authenticated GET and decodes the JSON response into v.
// Non-2xx responses become a *RemoteError carrying the response body.
func (c *Client) getJSON(ctx context.Context, creds Credentials, u string, v any) error {
	resp, err := c.get(ctx, creds, u)
	if err != nil {
		return err
	}
	defer func() { //nolint:errcheck // response body close errors are non-actionable after reading
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, creds Credentials, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", creds.authHeader())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	return resp, nil
}
