// Package types provides shared data structures for the PromptDeck backend.
//
// This package defines the request payloads accepted by the HTTP API and the
// frame shape pushed to GUI clients over the event stream, keeping the wire
// contract in one place.
//
// Request Types:
//   - OpenSessionRequest, WriteSessionRequest, ResizeSessionRequest: terminal control
//   - SaveTasksRequest: task-group persistence
//   - ResetTaskRequest: task branch and worktree cleanup
//
// Stream Types:
//   - StreamEvent: outbound event frame (terminal-output, task-store-updated)
package types
