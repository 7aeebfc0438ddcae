// Package paths resolves the filesystem locations the backend reads and writes.
//
// All PromptDeck state lives under a single dot-directory in the user's home:
//
//	~/.promptdeck/
//	  └── task-groups.json   (persisted task groups)
//
// Components go through these helpers instead of rebuilding paths so the
// HTTP API, the task store, and the MCP task server all agree on one layout.
//
// # Usage
//
//	store, err := paths.TaskStore()
//	if err != nil {
//	    // no resolvable home directory
//	}
//
//	custom, err := paths.Expand("~/projects/tasks.json")
package paths
