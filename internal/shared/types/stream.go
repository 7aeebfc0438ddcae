package types

// Stream event types pushed to GUI clients.
const (
	EventTerminalOutput   = "terminal-output"
	EventTaskStoreUpdated = "task-store-updated"
)

// StreamEvent is a frame pushed to GUI clients over the event stream.
// ID and Data are set for terminal output frames and omitted otherwise.
type StreamEvent struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Data string `json:"data,omitempty"`
}
