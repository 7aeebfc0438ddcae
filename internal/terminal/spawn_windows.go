//go:build windows

package terminal

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/promptdeck/promptdeck/backend/internal/shared/paths"
)

// defaultShell is used when ComSpec is unset.
const defaultShell = "cmd.exe"

// spawnShell starts the command interpreter with plain pipes. Windows has
// no PTY here, so output is line-buffered by the child and Resize is a
// no-op; sessions still stream output and accept input.
func spawnShell(cols, rows uint16) (Handle, error) {
	_ = cols
	_ = rows

	shell := os.Getenv("ComSpec")
	if shell == "" {
		shell = defaultShell
	}

	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	if home, err := paths.Home(); err == nil {
		cmd.Dir = home
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdin pipe: %w", err)
	}

	// One pipe carries both stdout and stderr so output stays ordered.
	pr, pw, err := os.Pipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("failed to open output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		stdin.Close()
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("failed to start shell: %w", err)
	}

	// Close the parent's write end; the child keeps its own. The read
	// side then sees EOF once the child exits.
	pw.Close()

	h := &pipeHandle{out: pr, in: stdin, cmd: cmd}
	go h.reap()

	return h, nil
}

// pipeHandle is a shell bound to plain pipes.
type pipeHandle struct {
	out  *os.File
	in   io.WriteCloser
	cmd  *exec.Cmd
	once sync.Once
}

func (h *pipeHandle) Reader() io.Reader { return h.out }

func (h *pipeHandle) Writer() io.Writer { return h.in }

// Resize is a no-op; pipes have no window size.
func (h *pipeHandle) Resize(cols, rows uint16) error {
	return nil
}

func (h *pipeHandle) Kill() error {
	var err error
	h.once.Do(func() {
		if h.cmd.Process != nil {
			_ = h.cmd.Process.Kill()
		}
		h.in.Close()
		err = h.out.Close()
	})
	return err
}

func (h *pipeHandle) reap() {
	_ = h.cmd.Wait()
}
