// Package main is the entry point for the PromptDeck backend server.
//
// The server backs the PromptDeck desktop GUI: it multiplexes interactive
// terminal sessions onto PTYs, inspects git worktrees for the review panels,
// persists task groups, and supervises the MCP task server child process.
//
// Architecture:
//
//	GUI (webview) → HTTP API → terminal multiplexer (PTY per session)
//	              → WebSocket event stream ← session output, store updates
//	              → git repositories, task-groups.json, MCP task server
//
// Configuration comes from the environment, then an optional CONFIG_FILE
// (yaml or toml), with CLI flags overriding both:
//
//	./server -port 8000
//	./server -dev    # console logs at debug level
//
// SIGINT or SIGTERM triggers a graceful shutdown that closes the PTYs and
// stops the MCP child before exiting.
package main
