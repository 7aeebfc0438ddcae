//go:build !windows

package terminal

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
	"github.com/promptdeck/promptdeck/backend/internal/shared/paths"
)

// defaultShell is used when SHELL is unset.
const defaultShell = "/bin/bash"

// spawnShell starts the user's shell on a fresh PTY.
func spawnShell(cols, rows uint16) (Handle, error) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = defaultShell
	}

	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	if home, err := paths.Home(); err == nil {
		cmd.Dir = home
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: rows,
		Cols: cols,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start PTY: %w", err)
	}

	h := &ptyHandle{ptmx: ptmx, cmd: cmd}

	// Reap the child when it exits so it never lingers as a zombie.
	go h.reap()

	return h, nil
}

// ptyHandle is a shell bound to a PTY master.
type ptyHandle struct {
	ptmx *os.File
	cmd  *exec.Cmd
	once sync.Once
}

func (h *ptyHandle) Reader() io.Reader { return h.ptmx }

func (h *ptyHandle) Writer() io.Writer { return h.ptmx }

func (h *ptyHandle) Resize(cols, rows uint16) error {
	return pty.Setsize(h.ptmx, &pty.Winsize{
		Rows: rows,
		Cols: cols,
	})
}

// Kill signals the shell and closes the master. Closing the master forces
// any blocked read to return, which lets the session's reader goroutine
// exit even if the shell ignores the signal.
func (h *ptyHandle) Kill() error {
	var err error
	h.once.Do(func() {
		if h.cmd.Process != nil {
			_ = h.cmd.Process.Kill()
		}
		err = h.ptmx.Close()
	})
	return err
}

func (h *ptyHandle) reap() {
	_ = h.cmd.Wait()
}
