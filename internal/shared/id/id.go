// Package id mints the identifiers the backend generates itself.
//
// Terminal session ids are chosen by the GUI and pass through untouched;
// anything the backend names on its own is a prefixed ULID. ULIDs sort by
// mint time, so a log greps chronologically, and the prefix says what kind
// of thing an id names before the rest of the line is read.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestID identifies one API request across middleware, handlers, and
// the access log.
type RequestID string

// RequestPrefix marks request ids in logs and headers.
const RequestPrefix = "req"

func (id RequestID) String() string { return string(id) }

// NewRequestID mints a request id from the package generator.
func NewRequestID() RequestID {
	return RequestID(global.Prefixed(RequestPrefix))
}

var global = New(rand.Reader)

// Generator mints ULIDs from an entropy source. Construct with New; the
// zero value has no entropy to read.
type Generator struct {
	mu      sync.Mutex // entropy readers are not safe for concurrent reads
	entropy io.Reader
}

// New returns a generator reading entropy from r. Production uses
// crypto/rand; tests may pass a deterministic reader.
func New(r io.Reader) *Generator {
	return &Generator{entropy: r}
}

// Generate mints one ULID at the current time.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// Prefixed mints a "<kind>_<ulid>" id.
func (g *Generator) Prefixed(kind string) string {
	return fmt.Sprintf("%s_%s", kind, g.Generate())
}

// Parse reads a canonical 26-character ULID string.
func Parse(s string) (ulid.ULID, error) {
	return ulid.Parse(s)
}

// IsValid reports whether s is a canonical ULID.
func IsValid(s string) bool {
	_, err := ulid.Parse(s)
	return err == nil
}

// Timestamp returns the mint time encoded in a ULID. The age of an id is
// usually the age of the thing it names.
func Timestamp(s string) (time.Time, error) {
	parsed, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
