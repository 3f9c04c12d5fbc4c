// Command mock-bitbucket is an in-memory stand-in for the Bitbucket Cloud
// 2.0 API, covering the endpoints the MCP server's tools touch: user probe,
// workspace and repository listings, and src/ directory and file retrieval.
// Listings paginate with real next URLs so client cursor-following is
// exercised end to end.
//
// Run it locally and point the server at it with
// BITBUCKET_API_URL=http://localhost:9090/2.0.
package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/mcrae/bitbucket-mcp/pkg/logging"
)

const defaultPageLen = 10

// account is the seeded user the mock accepts credentials for.
type account struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	UUID        string `json:"uuid"`
	AccountID   string `json:"account_id"`
	email       string
	token       string
}

type workspace struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	UUID      string `json:"uuid"`
	IsPrivate bool   `json:"is_private"`
}

type repository struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description,omitempty"`
	IsPrivate   bool   `json:"is_private"`
	UpdatedOn   string `json:"updated_on,omitempty"`
}

// srcEntry is one row of a src/ directory listing.
type srcEntry struct {
	Type string `json:"type"`
	Path string `json:"path"`
	Size int64  `json:"size,omitempty"`
}

// store holds the seeded Bitbucket state. Files are keyed by
// "workspace/repo" and then by path; every repo serves one branch.
type store struct {
	mu         sync.RWMutex
	user       account
	workspaces []workspace
	repos      map[string][]repository      // key: workspace slug
	files      map[string]map[string]string // key: "workspace/repo" → path → content
}

func newStore() *store {
	return &store{
		repos: make(map[string][]repository),
		files: make(map[string]map[string]string),
	}
}

func (s *store) addFile(ws, repo, path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ws + "/" + repo
	if s.files[key] == nil {
		s.files[key] = make(map[string]string)
	}
	s.files[key][path] = content
}

func (s *store) getFile(ws, repo, path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[ws+"/"+repo][path]
	return content, ok
}

// listDir returns the immediate children of dirPath, the way Bitbucket's
// src endpoint reports them: files with sizes, directories without.
func (s *store) listDir(ws, repo, dirPath string) []srcEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := s.files[ws+"/"+repo]
	if files == nil {
		return nil
	}

	prefix := dirPath
	if prefix != "" {
		prefix += "/"
	}

	seen := map[string]bool{}
	var entries []srcEntry
	for filePath, content := range files {
		if !strings.HasPrefix(filePath, prefix) {
			continue
		}
		rest := filePath[len(prefix):]
		idx := strings.Index(rest, "/")
		if idx == -1 {
			entries = append(entries, srcEntry{
				Type: "commit_file",
				Path: prefix + rest,
				Size: int64(len(content)),
			})
			continue
		}
		name := rest[:idx]
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, srcEntry{
			Type: "commit_directory",
			Path: prefix + name,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

func main() {
	log := logging.New()
	s := newStore()

	seed(s)
	log.Info("seeded store", "workspaces", len(s.workspaces), "repos", len(s.files))

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/2.0")
	api.Use(requireAuth(s))

	api.GET("/user", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.user)
	})

	api.GET("/workspaces", func(c *gin.Context) {
		values, next := paginate(c, s.workspaces)
		c.JSON(http.StatusOK, gin.H{"values": values, "next": next})
	})

	api.GET("/repositories", func(c *gin.Context) {
		var all []repository
		for _, ws := range s.workspaces {
			all = append(all, s.repos[ws.Slug]...)
		}
		values, next := paginate(c, all)
		c.JSON(http.StatusOK, gin.H{"values": values, "next": next})
	})

	api.GET("/repositories/:workspace", func(c *gin.Context) {
		ws := c.Param("workspace")
		repos, ok := s.repos[ws]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{"message": fmt.Sprintf("workspace %s not found", ws)},
			})
			return
		}
		values, next := paginate(c, repos)
		c.JSON(http.StatusOK, gin.H{"values": values, "next": next})
	})

	// Src endpoint: raw file bytes for exact file paths, a paginated JSON
	// listing when the path is a directory (mirrors the real API).
	api.GET("/repositories/:workspace/:repo/src/:branch/*path", func(c *gin.Context) {
		ws := c.Param("workspace")
		repo := c.Param("repo")
		path := strings.Trim(c.Param("path"), "/")

		if content, ok := s.getFile(ws, repo, path); ok {
			c.String(http.StatusOK, content)
			return
		}

		entries := s.listDir(ws, repo, path)
		if entries == nil && path != "" {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{"message": fmt.Sprintf("path %q not found in %s/%s", path, ws, repo)},
			})
			return
		}
		values, next := paginate(c, entries)
		c.JSON(http.StatusOK, gin.H{"values": values, "next": next})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "9090"
	}

	log.Info("mock-bitbucket starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// requireAuth rejects requests whose Basic auth header does not match the
// seeded account, the way Bitbucket answers bad app passwords.
func requireAuth(s *store) gin.HandlerFunc {
	return func(c *gin.Context) {
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte(s.user.email+":"+s.user.token))
		if c.GetHeader("Authorization") != want {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"type":  "error",
				"error": gin.H{"message": "Token is invalid or not supported for this endpoint."},
			})
			return
		}
		c.Next()
	}
}

// paginate slices items according to the page/pagelen query params and
// synthesizes the next URL when more pages remain.
func paginate[T any](c *gin.Context, items []T) ([]T, string) {
	pageLen, err := strconv.Atoi(c.Query("pagelen"))
	if err != nil || pageLen <= 0 {
		pageLen = defaultPageLen
	}
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page <= 0 {
		page = 1
	}

	start := (page - 1) * pageLen
	if start >= len(items) {
		return []T{}, ""
	}
	end := start + pageLen
	if end > len(items) {
		end = len(items)
	}

	next := ""
	if end < len(items) {
		q := c.Request.URL.Query()
		q.Set("page", strconv.Itoa(page+1))
		q.Set("pagelen", strconv.Itoa(pageLen))
		next = "http://" + c.Request.Host + c.Request.URL.Path + "?" + q.Encode()
	}
	return items[start:end], next
}
