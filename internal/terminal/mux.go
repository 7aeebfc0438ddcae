package terminal

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/logging"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// ErrNotFound reports an operation against an id with no live session.
var ErrNotFound = errors.New("session not found")

const (
	// Floors applied at open time. Zero-width PTY allocation fails on
	// some kernels, so cols never goes below 2.
	minCols = 2
	minRows = 1

	// readChunk is the reader goroutine's buffer size.
	readChunk = 8192
)

// Sink receives output captured from live sessions. TerminalOutput runs on
// session reader goroutines and must not block.
type Sink interface {
	TerminalOutput(id, data string)
}

// Multiplexer registers shell sessions under caller-chosen ids and fans
// their output into a Sink. All registry access is serialized by a single
// mutex; no session-level locks exist.
type Multiplexer struct {
	mu       sync.Mutex
	sessions map[string]*session
	spawn    SpawnFunc
	sink     Sink
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

type session struct {
	handle Handle
	writer io.Writer
}

// New creates a multiplexer that spawns real shells for this platform.
func New(sink Sink, log *logging.Logger) *Multiplexer {
	return NewWithSpawner(spawnShell, sink, log)
}

// NewWithSpawner creates a multiplexer with a custom spawner. Tests use
// this to run against fake terminals.
func NewWithSpawner(spawn SpawnFunc, sink Sink, log *logging.Logger) *Multiplexer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Multiplexer{
		sessions: make(map[string]*session),
		spawn:    spawn,
		sink:     sink,
		log:      log,
	}
}

// WithMetrics attaches a metrics collector
func (m *Multiplexer) WithMetrics(metrics *monitoring.Metrics) *Multiplexer {
	m.metrics = metrics
	return m
}

// Open starts a session under id, replacing any existing one. The previous
// session's shell is killed before the new one spawns. Dimensions are
// clamped to at least 2 columns and 1 row. On spawn failure the id is left
// unregistered.
func (m *Multiplexer) Open(id string, cols, rows uint16) error {
	if cols < minCols {
		cols = minCols
	}
	if rows < minRows {
		rows = minRows
	}

	// Terminate the previous holder before allocating the replacement.
	m.mu.Lock()
	if old, ok := m.sessions[id]; ok {
		delete(m.sessions, id)
		if err := old.handle.Kill(); err != nil {
			m.log.Warn("failed to kill replaced session",
				zap.String("session_id", id),
				zap.Error(err),
			)
		}
	}
	m.mu.Unlock()

	handle, err := m.spawn(cols, rows)
	if err != nil {
		return fmt.Errorf("failed to open session %s: %w", id, err)
	}

	// The reader starts before registration, so output may begin arriving
	// before Open returns.
	go m.forwardOutput(id, handle.Reader())

	m.mu.Lock()
	if racer, ok := m.sessions[id]; ok {
		// A concurrent Open claimed the id while we were spawning.
		if err := racer.handle.Kill(); err != nil {
			m.log.Warn("failed to kill raced session",
				zap.String("session_id", id),
				zap.Error(err),
			)
		}
	}
	m.sessions[id] = &session{handle: handle, writer: handle.Writer()}
	count := len(m.sessions)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncSessionsOpened()
		m.metrics.SetSessionsActive(count)
	}
	m.log.Info("terminal session opened",
		zap.String("session_id", id),
		zap.Uint16("cols", cols),
		zap.Uint16("rows", rows),
	)
	return nil
}

// forwardOutput drains a session's terminal until it closes. Invalid UTF-8
// from split escape sequences or binary output is replaced, never dropped.
// The goroutine exits silently on end-of-stream or read error; nothing
// joins it.
func (m *Multiplexer) forwardOutput(id string, r io.Reader) {
	buf := make([]byte, readChunk)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if m.metrics != nil {
				m.metrics.AddTerminalBytes(n)
			}
			if m.sink != nil {
				m.sink.TerminalOutput(id, strings.ToValidUTF8(string(buf[:n]), "�"))
			}
		}
		if err != nil {
			// EOF, or EIO once the shell exits or the session is killed.
			return
		}
	}
}

// Write delivers input bytes to the session's shell. Writing to an unknown
// id fails with ErrNotFound. An empty write succeeds after the existence
// check without touching the terminal.
func (m *Multiplexer) Write(id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if len(data) == 0 {
		return nil
	}
	if _, err := s.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write to session %s: %w", id, err)
	}
	return nil
}

// Resize updates the session's window dimensions. Values pass through to
// the terminal layer unclamped.
func (m *Multiplexer) Resize(id string, cols, rows uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := s.handle.Resize(cols, rows); err != nil {
		return fmt.Errorf("failed to resize session %s: %w", id, err)
	}
	return nil
}

// Close terminates the session and forgets the id. Closing an unknown id
// succeeds; the caller's goal state already holds.
func (m *Multiplexer) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.sessions, id)
	if err := s.handle.Kill(); err != nil {
		m.log.Debug("kill on close returned error",
			zap.String("session_id", id),
			zap.Error(err),
		)
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SetSessionsActive(count)
	}
	m.log.Info("terminal session closed", zap.String("session_id", id))
	return nil
}

// CloseAll terminates every live session. Called at shutdown so no shell
// outlives the backend.
func (m *Multiplexer) CloseAll() {
	m.mu.Lock()
	for id, s := range m.sessions {
		if err := s.handle.Kill(); err != nil {
			m.log.Debug("kill on shutdown returned error",
				zap.String("session_id", id),
				zap.Error(err),
			)
		}
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SetSessionsActive(0)
	}
	m.log.Info("all terminal sessions closed")
}

// Count returns the number of registered sessions
func (m *Multiplexer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
