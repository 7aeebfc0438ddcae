package id

import (
	"bytes"
	"crypto/rand"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRequestIDFormat(t *testing.T) {
	rid := NewRequestID()

	parts := strings.SplitN(rid.String(), "_", 2)
	if len(parts) != 2 || parts[0] != RequestPrefix {
		t.Fatalf("want req_<ulid>, got %q", rid)
	}
	if !IsValid(parts[1]) {
		t.Errorf("ulid part is not canonical: %q", parts[1])
	}
}

func TestPrefixed(t *testing.T) {
	gen := New(rand.Reader)

	got := gen.Prefixed("client")
	if !strings.HasPrefix(got, "client_") {
		t.Fatalf("want client_ prefix, got %q", got)
	}
	if len(got) != len("client_")+26 {
		t.Errorf("ulid part should be 26 chars, got %q", got)
	}
}

func TestDeterministicEntropy(t *testing.T) {
	gen := New(bytes.NewReader(make([]byte, 10)))

	u := gen.Generate().String()
	if got := u[10:]; got != "0000000000000000" {
		t.Errorf("zeroed entropy should encode as zeros, got %q", got)
	}
}

func TestGenerateUnique(t *testing.T) {
	gen := New(rand.Reader)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s := gen.Generate().String()
		if seen[s] {
			t.Fatalf("duplicate id %s", s)
		}
		seen[s] = true
	}
}

func TestConcurrentGenerate(t *testing.T) {
	gen := New(rand.Reader)

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	ids := make(chan string, workers*perWorker)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ids <- gen.Generate().String()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for s := range ids {
		if seen[s] {
			t.Fatalf("duplicate id %s", s)
		}
		seen[s] = true
	}
	if len(seen) != workers*perWorker {
		t.Fatalf("want %d unique ids, got %d", workers*perWorker, len(seen))
	}
}

func TestSortsByMintTime(t *testing.T) {
	gen := New(rand.Reader)

	var prev string
	for i := 0; i < 5; i++ {
		s := gen.Generate().String()
		if prev != "" && s <= prev {
			t.Fatalf("later id should sort after earlier: %s then %s", prev, s)
		}
		prev = s
		time.Sleep(2 * time.Millisecond)
	}
}

func TestTimestamp(t *testing.T) {
	before := time.Now().UnixMilli()
	rid := NewRequestID()
	after := time.Now().UnixMilli()

	ts, err := Timestamp(strings.TrimPrefix(rid.String(), RequestPrefix+"_"))
	if err != nil {
		t.Fatalf("timestamp: %v", err)
	}
	if ms := ts.UnixMilli(); ms < before || ms > after {
		t.Errorf("mint time %d outside [%d, %d]", ms, before, after)
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(New(rand.Reader).Generate().String()) {
		t.Error("generated ulid should parse")
	}

	bad := []string{"", "req_", "not-a-ulid", "zzzzzzzzzzzzzzzzzzzzzzzzzz"}
	for _, s := range bad {
		if IsValid(s) {
			t.Errorf("%q should not parse", s)
		}
	}
}
