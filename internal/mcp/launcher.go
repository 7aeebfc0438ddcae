package mcp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/config"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/logging"
	"github.com/promptdeck/promptdeck/backend/internal/shared/paths"
)

const (
	devScriptDir  = "scripts"
	devScriptName = "mcp-task-server.cjs"

	// How many directories above the working directory are searched for
	// the development script layout.
	ancestorDepth = 4
)

// ErrServerNotFound reports that no server executable could be resolved.
var ErrServerNotFound = errors.New("unable to locate mcp task server executable")

// Target is a resolved server executable.
type Target struct {
	Command string
	Args    []string
	Dir     string
}

// String renders the target as a single command line.
func (t Target) String() string {
	if len(t.Args) == 0 {
		return t.Command
	}
	return t.Command + " " + strings.Join(t.Args, " ")
}

// Status reports the launcher state.
type Status struct {
	Running bool   `json:"running"`
	PID     int    `json:"pid,omitempty"`
	Target  string `json:"target,omitempty"`
}

// Launcher runs at most one MCP task server child at a time.
type Launcher struct {
	mu        sync.Mutex
	cfg       config.MCPConfig
	tasksPath string
	log       *logging.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	target string
}

// NewLauncher creates a launcher. tasksPath is handed to the child through
// the TASKS_PATH environment variable so both processes share one store.
func NewLauncher(cfg config.MCPConfig, tasksPath string, log *logging.Logger) *Launcher {
	if log == nil {
		log = logging.NewNop()
	}
	return &Launcher{cfg: cfg, tasksPath: tasksPath, log: log}
}

// Start launches the task server. Starting an already running launcher is
// a no-op.
func (l *Launcher) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cmd != nil {
		return nil
	}

	target, err := l.resolveTarget()
	if err != nil {
		return err
	}

	cmd := exec.Command(target.Command, target.Args...)
	cmd.Dir = target.Dir
	cmd.Env = append(os.Environ(), "TASKS_PATH="+l.tasksPath)

	// The server speaks MCP over stdio. Its stdin stays open for the
	// lifetime of the child; closing it asks the server to shut down.
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start mcp task server: %w", err)
	}

	l.cmd = cmd
	l.stdin = stdin
	l.target = target.String()

	go l.scanOutput(stdout, "stdout")
	go l.scanOutput(stderr, "stderr")
	go l.waitForExit(cmd)

	l.log.Info("mcp task server started",
		zap.Int("pid", cmd.Process.Pid),
		zap.String("target", l.target))
	return nil
}

// Stop terminates the task server. Stopping an idle launcher is a no-op.
func (l *Launcher) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cmd == nil {
		return nil
	}

	if l.stdin != nil {
		l.stdin.Close()
	}
	if err := l.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to stop mcp task server: %w", err)
	}

	l.log.Info("mcp task server stopped", zap.Int("pid", l.cmd.Process.Pid))
	l.cmd = nil
	l.stdin = nil
	l.target = ""
	return nil
}

// Status reports whether a child is running and which target it was
// launched from.
func (l *Launcher) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cmd == nil || l.cmd.Process == nil {
		return Status{}
	}
	return Status{
		Running: true,
		PID:     l.cmd.Process.Pid,
		Target:  l.target,
	}
}

// Command resolves the server target without launching it, for clients
// that spawn the server themselves.
func (l *Launcher) Command() (string, []string, error) {
	target, err := l.resolveTarget()
	if err != nil {
		return "", nil, err
	}
	return target.Command, target.Args, nil
}

// resolveTarget picks the server executable. Explicitly configured paths
// win, the packaged binary next to the backend executable comes next, and
// the development script layout is the fallback.
func (l *Launcher) resolveTarget() (Target, error) {
	if l.cfg.Binary != "" {
		if path, err := paths.Expand(l.cfg.Binary); err == nil && fileExists(path) {
			return Target{Command: path, Dir: filepath.Dir(path)}, nil
		}
	}

	if l.cfg.Script != "" {
		if path, err := paths.Expand(l.cfg.Script); err == nil && fileExists(path) {
			return Target{Command: l.nodeBin(), Args: []string{path}, Dir: filepath.Dir(path)}, nil
		}
	}

	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), binaryName())
		if fileExists(candidate) {
			return Target{Command: candidate, Dir: filepath.Dir(candidate)}, nil
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		dir := cwd
		for i := 0; i < ancestorDepth; i++ {
			candidate := filepath.Join(dir, devScriptDir, devScriptName)
			if fileExists(candidate) {
				return Target{Command: l.nodeBin(), Args: []string{candidate}, Dir: filepath.Dir(candidate)}, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	return Target{}, ErrServerNotFound
}

func (l *Launcher) nodeBin() string {
	if l.cfg.NodeBin != "" {
		return l.cfg.NodeBin
	}
	return "node"
}

// scanOutput forwards child output lines to the backend log.
func (l *Launcher) scanOutput(pipe io.Reader, stream string) {
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	for scanner.Scan() {
		l.log.Debug("mcp task server output",
			zap.String("stream", stream),
			zap.String("line", scanner.Text()))
	}
}

// waitForExit reaps the child and clears the launcher state when the
// server dies on its own. A child replaced by Stop/Start is left alone.
func (l *Launcher) waitForExit(cmd *exec.Cmd) {
	err := cmd.Wait()

	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cmd == cmd {
		l.cmd = nil
		l.stdin = nil
		l.target = ""
		l.log.Warn("mcp task server exited", zap.Int("code", exitCode))
	}
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "mcp-task-server.exe"
	}
	return "mcp-task-server"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
