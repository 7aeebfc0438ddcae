package types

import "encoding/json"

// OpenSessionRequest opens (or replaces) an interactive terminal session
type OpenSessionRequest struct {
	ID   string `json:"id" binding:"required"`
	Cols uint16 `json:"cols"`
	Rows uint16 `json:"rows"`
}

// WriteSessionRequest delivers input bytes to a session's stdin.
// Data may be empty; an empty write is a no-op that still validates
// the session exists.
type WriteSessionRequest struct {
	Data string `json:"data"`
}

// ResizeSessionRequest updates a session's window dimensions
type ResizeSessionRequest struct {
	Cols uint16 `json:"cols"`
	Rows uint16 `json:"rows"`
}

// SaveTasksRequest replaces the persisted task groups.
// Task groups are opaque to the backend; the GUI owns their schema.
type SaveTasksRequest struct {
	TaskGroups []json.RawMessage `json:"taskGroups"`
}

// ResetTaskRequest discards a task's git worktree and branch
type ResetTaskRequest struct {
	Path         string `json:"path" binding:"required"`
	WorktreePath string `json:"worktreePath,omitempty"`
	BranchName   string `json:"branchName,omitempty"`
}
