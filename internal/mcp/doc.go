// Package mcp supervises the MCP task server child process.
//
// The task server is a separate executable speaking the Model Context
// Protocol over stdio. Agents connect to it to read and update the shared
// task store while the backend serves the same store over HTTP. The
// launcher resolves the server executable (configured binary, configured
// script, packaged binary next to the backend, then the development
// script layout), runs at most one child at a time, and forwards the
// child's output to the backend log.
package mcp
