package terminal

import "io"

// Handle is one spawned shell bound to a terminal device. Implementations
// wrap a PTY master on Unix and a pipe pair on Windows.
type Handle interface {
	// Reader streams everything the shell writes to its terminal.
	Reader() io.Reader

	// Writer delivers input bytes to the shell as if typed.
	Writer() io.Writer

	// Resize updates the terminal's window dimensions.
	Resize(cols, rows uint16) error

	// Kill terminates the shell and releases the terminal. It must
	// unblock any pending Reader() read.
	Kill() error
}

// SpawnFunc allocates a terminal with the given dimensions and starts the
// user's shell on it. The default spawner is platform-specific; tests
// inject fakes through NewWithSpawner.
type SpawnFunc func(cols, rows uint16) (Handle, error)
