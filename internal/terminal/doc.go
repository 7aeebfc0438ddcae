// Package terminal multiplexes interactive shell sessions over pseudo-terminals.
//
// A Multiplexer owns a registry of named sessions. Each session runs the
// user's shell on its own PTY; a background goroutine drains the master side
// and forwards output to a Sink as it arrives, so GUI clients see keystroke
// echo and command output live.
//
// Features:
//   - Multiple concurrent sessions keyed by caller-chosen ids
//   - Reopening an id terminates and replaces the previous session
//   - Terminal resizing via the PTY window-size ioctl
//   - Lossy UTF-8 decoding so binary shell output never stalls the stream
//   - Idempotent close; CloseAll for process shutdown
//
// Architecture:
//   - One registry mutex serializes all map access and writer use
//   - Readers run detached and exit on their own when the PTY drains
//   - Platform spawners live behind the Handle interface (PTY on Unix,
//     pipe-backed console on Windows)
//
// Example Usage:
//
//	mux := terminal.New(hub, logger)
//	if err := mux.Open("term-1", 120, 32); err != nil { ... }
//	mux.Write("term-1", []byte("ls -la\n"))
//	mux.Resize("term-1", 100, 40)
//	mux.Close("term-1")
package terminal
