// Package tasks persists task groups and watches the store for
// out-of-process edits.
//
// The store is a single JSON document under the user's home directory
// (~/.promptdeck/task-groups.json by default). Task group contents are
// opaque to the backend: the document is loaded and saved as raw JSON so
// the frontend and the MCP task server can evolve the schema freely.
//
// Writes are atomic (temp file plus rename), and a Watcher built on
// fsnotify reports external modifications, debounced, so the backend can
// push refresh events to connected clients when the MCP server or another
// process rewrites the store.
package tasks
