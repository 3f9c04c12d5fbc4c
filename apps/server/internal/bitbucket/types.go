package bitbucket

import "encoding/base64"

// Credentials authenticate requests against the Bitbucket Cloud API using
// HTTP Basic auth (email + app password / API token).
type Credentials struct {
	Email string
	Token string
}

// authHeader returns the Authorization header value for these credentials.
func (c Credentials) authHeader() string {
	raw := c.Email + ":" + c.Token
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// Account is the authenticated Bitbucket user returned by GET /user.
type Account struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	UUID        string `json:"uuid"`
	AccountID   string `json:"account_id"`
}

// Workspace is a Bitbucket account/organization namespace grouping repositories.
type Workspace struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	UUID      string `json:"uuid"`
	IsPrivate bool   `json:"is_private"`
}

// Repository is a single repository as returned by the repositories listing.
type Repository struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description,omitempty"`
	IsPrivate   bool   `json:"is_private"`
	UpdatedOn   string `json:"updated_on,omitempty"`
}

// RepoRef identifies one branch of one repository. Workspace and Slug are
// opaque identifiers forwarded verbatim into URL path segments; malformed
// values surface as remote 4xx responses.
type RepoRef struct {
	Workspace string
	Slug      string
	Branch    string
}

// SrcEntry is one entry of a src/ directory listing.
type SrcEntry struct {
	Type string `json:"type"` // "commit_file" or "commit_directory"
	Path string `json:"path"`
	Size int64  `json:"size,omitempty"`
}

const (
	entryTypeFile      = "commit_file"
	entryTypeDirectory = "commit_directory"
)
