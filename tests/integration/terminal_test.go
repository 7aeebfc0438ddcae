//go:build integration
// +build integration

package integration

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/backend/tests/helpers/testutil"
)

// TestTerminalSessionRoundTrip drives a real shell end to end: open a
// session over HTTP, type a command, and watch its output arrive on the
// WebSocket event stream.
func TestTerminalSessionRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping terminal round trip in short mode")
	}
	if runtime.GOOS == "windows" {
		t.Skip("round trip test drives a unix shell")
	}

	b := testutil.NewBackend(t)
	srv := httptest.NewServer(b.Router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	code, body := postJSON(t, srv.URL+"/terminal/sessions", `{"id":"it-shell","cols":80,"rows":24}`)
	if code != http.StatusOK {
		t.Skipf("no usable shell in this environment: %s", body)
	}

	marker := "promptdeck-roundtrip"
	code, body = postJSON(t, srv.URL+"/terminal/sessions/it-shell/input",
		fmt.Sprintf(`{"data":"echo %s\n"}`, marker))
	require.Equal(t, http.StatusOK, code, "write failed: %s", body)

	// The PTY echoes typed input, so the marker shows up in the stream as
	// soon as the write lands.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(15*time.Second)))

	var output strings.Builder
	found := false
	for !found {
		var ev struct {
			Type string `json:"type"`
			ID   string `json:"id"`
			Data string `json:"data"`
		}
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("no %q in session output before deadline; read error %v; got so far: %q",
				marker, err, output.String())
		}
		if ev.Type != "terminal-output" || ev.ID != "it-shell" {
			continue
		}
		output.WriteString(ev.Data)
		found = strings.Contains(output.String(), marker)
	}

	code, body = postJSON(t, srv.URL+"/terminal/sessions/it-shell/resize", `{"cols":120,"rows":40}`)
	require.Equal(t, http.StatusOK, code, "resize failed: %s", body)

	req, err := http.NewRequest("DELETE", srv.URL+"/terminal/sessions/it-shell", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Writing after close reports the session gone.
	code, _ = postJSON(t, srv.URL+"/terminal/sessions/it-shell/input", `{"data":"x"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

// TestSessionReplacement opens the same id twice and checks the first
// shell is gone afterwards.
func TestSessionReplacement(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping terminal test in short mode")
	}
	if runtime.GOOS == "windows" {
		t.Skip("replacement test drives a unix shell")
	}

	b := testutil.NewBackend(t)
	srv := httptest.NewServer(b.Router)
	defer srv.Close()

	code, body := postJSON(t, srv.URL+"/terminal/sessions", `{"id":"dup","cols":80,"rows":24}`)
	if code != http.StatusOK {
		t.Skipf("no usable shell in this environment: %s", body)
	}

	code, body = postJSON(t, srv.URL+"/terminal/sessions", `{"id":"dup","cols":80,"rows":24}`)
	require.Equal(t, http.StatusOK, code, "reopen failed: %s", body)

	assert.Equal(t, 1, b.Mux.Count())
}

func postJSON(t *testing.T, url, body string) (int, string) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}
