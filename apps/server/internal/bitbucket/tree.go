package bitbucket

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Node types and statuses serialized into tree structures.
const (
	NodeDirectory = "directory"
	NodeFile      = "file"

	StatusOK      = "ok"
	StatusPartial = "partial"
)

// maxTreeDepth bounds the recursive directory expansion. Directories nested
// deeper than this are reported as partial instead of expanded.
const maxTreeDepth = 32

// TreeNode mirrors one entry of the remote directory layout. Directory nodes
// carry children and a status; file nodes carry size and, for allow-listed
// text extensions, the file content.
type TreeNode struct {
	Type         string      `json:"type"`
	Path         string      `json:"path"`
	Size         int64       `json:"size,omitempty"`
	Content      *string     `json:"content,omitempty"`
	Children     []*TreeNode `json:"children,omitempty"`
	Status       string      `json:"status,omitempty"`
	StatusReason string      `json:"status_reason,omitempty"`
}

// contentExtensions is the allow-list of extensions whose file content is
// fetched inline during a tree walk.
var contentExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".java": true, ".cpp": true,
	".c": true, ".h": true, ".html": true, ".css": true, ".json": true,
	".xml": true, ".md": true, ".txt": true, ".yml": true, ".yaml": true,
	".sh": true, ".bat": true, ".ps1": true,
}

// extraCodeExtensions extends the content allow-list for the files-list
// tool's code-file filter.
var extraCodeExtensions = map[string]bool{
	".dart": true, ".kt": true, ".swift": true, ".rb": true, ".php": true,
	".go": true, ".rs": true, ".cs": true, ".vb": true, ".sql": true,
}

// hasContentExtension reports whether p's extension (case-insensitive) is in
// the inline-content allow-list.
func hasContentExtension(p string) bool {
	return contentExtensions[strings.ToLower(path.Ext(p))]
}

// IsCodeFile reports whether p looks like a code or text file, using the
// wider extension list applied by get_repository_files_list.
func IsCodeFile(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return contentExtensions[ext] || extraCodeExtensions[ext]
}

// FetchTree walks the remote directory tree rooted at startPath, depth-first
// and strictly sequentially, and returns an in-memory tree mirroring the
// remote layout.
//
// A failed listing below the root is attached as a partial directory node
// with the failure reason rather than dropped; a failed content fetch is
// downgraded to an inline error string in the file's content field. Only a
// failure to list startPath itself fails the whole fetch.
func (c *Client) FetchTree(ctx context.Context, creds Credentials, ref RepoRef, startPath string) (*TreeNode, error) {
	return c.fetchTree(ctx, creds, ref, startPath, 0)
}

func (c *Client) fetchTree(ctx context.Context, creds Credentials, ref RepoRef, dirPath string, depth int) (*TreeNode, error) {
	entries, err := c.ListDir(ctx, creds, ref, dirPath)
	if err != nil {
		return nil, err
	}

	node := &TreeNode{
		Type:   NodeDirectory,
		Path:   dirPath,
		Status: StatusOK,
	}

	for _, entry := range entries {
		switch entry.Type {
		case entryTypeFile:
			node.Children = append(node.Children, c.fileNode(ctx, creds, ref, entry))
		case entryTypeDirectory:
			node.Children = append(node.Children, c.dirNode(ctx, creds, ref, entry, depth))
		default:
			c.log.Warn("skipping unknown src entry type", "type", entry.Type, "path", entry.Path)
		}
	}
	return node, nil
}

// fileNode builds a file node, fetching content inline for allow-listed
// extensions. Content-fetch failures degrade to an inline error string so a
// single unreadable file never aborts the walk.
func (c *Client) fileNode(ctx context.Context, creds Credentials, ref RepoRef, entry SrcEntry) *TreeNode {
	node := &TreeNode{
		Type: NodeFile,
		Path: entry.Path,
		Size: entry.Size,
	}
	if !hasContentExtension(entry.Path) {
		return node
	}

	content, err := c.FileContent(ctx, creds, ref, entry.Path)
	if err != nil {
		c.log.Warn("file content fetch failed", "path", entry.Path, "error", err)
		content = fmt.Sprintf("Error: could not fetch file %s: %v", entry.Path, err)
	}
	node.Content = &content
	return node
}

// dirNode recurses into a subdirectory. Listing failures and the depth bound
// both surface as a partial node so callers can tell a failed listing apart
// from a genuinely empty directory.
func (c *Client) dirNode(ctx context.Context, creds Credentials, ref RepoRef, entry SrcEntry, depth int) *TreeNode {
	if depth+1 >= maxTreeDepth {
		return &TreeNode{
			Type:         NodeDirectory,
			Path:         entry.Path,
			Status:       StatusPartial,
			StatusReason: fmt.Sprintf("not expanded: exceeds max depth %d", maxTreeDepth),
		}
	}

	child, err := c.fetchTree(ctx, creds, ref, entry.Path, depth+1)
	if err != nil {
		c.log.Warn("directory listing failed", "path", entry.Path, "error", err)
		return &TreeNode{
			Type:         NodeDirectory,
			Path:         entry.Path,
			Status:       StatusPartial,
			StatusReason: err.Error(),
		}
	}
	return child
}

// ListFiles walks the tree rooted at startPath and returns every file path
// in listing order, without fetching any content. Sub-listing failures below
// the root are logged and skipped; a failure at the root fails the call.
func (c *Client) ListFiles(ctx context.Context, creds Credentials, ref RepoRef, startPath string) ([]string, error) {
	files := []string{}
	if err := c.collectFiles(ctx, creds, ref, startPath, 0, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Client) collectFiles(ctx context.Context, creds Credentials, ref RepoRef, dirPath string, depth int, files *[]string) error {
	entries, err := c.ListDir(ctx, creds, ref, dirPath)
	if err != nil {
		if depth == 0 {
			return err
		}
		c.log.Warn("directory listing failed", "path", dirPath, "error", err)
		return nil
	}

	for _, entry := range entries {
		switch entry.Type {
		case entryTypeFile:
			*files = append(*files, entry.Path)
		case entryTypeDirectory:
			if depth+1 >= maxTreeDepth {
				c.log.Warn("not descending: exceeds max depth", "path", entry.Path)
				continue
			}
			if err := c.collectFiles(ctx, creds, ref, entry.Path, depth+1, files); err != nil {
				return err
			}
		}
	}
	return nil
}
