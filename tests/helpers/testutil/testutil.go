// Package testutil provides testing utilities and helpers for backend tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apihttp "github.com/promptdeck/promptdeck/backend/internal/api/http"
	"github.com/promptdeck/promptdeck/backend/internal/api/ws"
	"github.com/promptdeck/promptdeck/backend/internal/git"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/config"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/logging"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/monitoring"
	"github.com/promptdeck/promptdeck/backend/internal/mcp"
	"github.com/promptdeck/promptdeck/backend/internal/tasks"
	"github.com/promptdeck/promptdeck/backend/internal/terminal"
)

// Backend bundles a fully wired router and its subsystems for tests.
type Backend struct {
	Router   *gin.Engine
	Mux      *terminal.Multiplexer
	Hub      *ws.Hub
	Store    *tasks.Store
	Git      *git.Service
	Launcher *mcp.Launcher
}

// NewBackend wires the complete API surface the way the server does, with
// real PTY sessions, the task store rooted in a temp directory, and MCP
// autostart off.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logging.NewNop()
	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetricsWithRegistry(registry)

	hub := ws.NewHub(log).WithMetrics(metrics)
	t.Cleanup(hub.Close)

	mux := terminal.New(hub, log).WithMetrics(metrics)
	t.Cleanup(mux.CloseAll)

	gitSvc := git.NewService(log)

	store, err := tasks.NewStore(filepath.Join(t.TempDir(), "task-groups.json"), log)
	if err != nil {
		t.Fatalf("task store: %v", err)
	}

	launcher := mcp.NewLauncher(config.MCPConfig{NodeBin: "node"}, store.Path(), log)
	t.Cleanup(func() { launcher.Stop() })

	handlers := apihttp.NewHandlers(mux, gitSvc, store, launcher, hub, metrics, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.POST("/terminal/sessions", handlers.OpenSession)
	router.POST("/terminal/sessions/:id/input", handlers.WriteSession)
	router.POST("/terminal/sessions/:id/resize", handlers.ResizeSession)
	router.DELETE("/terminal/sessions/:id", handlers.CloseSession)
	router.GET("/git/branch", handlers.GitBranch)
	router.GET("/git/diff", handlers.GitDiff)
	router.GET("/git/stats", handlers.GitStats)
	router.GET("/git/file-section", handlers.GitFileSection)
	router.POST("/git/reset-task", handlers.GitResetTask)
	router.GET("/tasks", handlers.GetTasks)
	router.PUT("/tasks", handlers.SaveTasks)
	router.POST("/mcp/start", handlers.StartMCP)
	router.POST("/mcp/stop", handlers.StopMCP)
	router.GET("/mcp/status", handlers.MCPStatus)
	router.GET("/mcp/command", handlers.MCPCommand)
	router.POST("/logs", handlers.StreamLogs)
	router.GET("/stream", hub.HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &Backend{
		Router:   router,
		Mux:      mux,
		Hub:      hub,
		Store:    store,
		Git:      gitSvc,
		Launcher: launcher,
	}
}

// DoJSON performs a request against the backend and decodes the JSON body.
func (b *Backend) DoJSON(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	b.Router.ServeHTTP(w, req)

	decoded := map[string]interface{}{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w.Code, decoded
}

// InitRepo creates a git repository with one committed file and returns its
// working tree path.
func InitRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	WriteCommit(t, repo, dir, "README.md", "hello\n", "initial")
	return dir
}

// WriteCommit writes a file into the repository's working tree and commits it.
func WriteCommit(t *testing.T, repo *gogit.Repository, dir, name, content, msg string) {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := writeFile(path, content); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	if _, err := wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Tester", Email: "tester@example.com", When: time.Now()},
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
