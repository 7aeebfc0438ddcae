package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StartMCP launches the MCP task server child process. Starting while a
// server is already running succeeds without spawning a second one.
func (h *Handlers) StartMCP(c *gin.Context) {
	if err := h.launcher.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	status := h.launcher.Status()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"running": status.Running,
		"pid":     status.PID,
		"target":  status.Target,
	})
}

// StopMCP terminates the MCP task server if one is running
func (h *Handlers) StopMCP(c *gin.Context) {
	if err := h.launcher.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// MCPStatus reports whether the MCP task server is running
func (h *Handlers) MCPStatus(c *gin.Context) {
	status := h.launcher.Status()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"running": status.Running,
		"pid":     status.PID,
		"target":  status.Target,
	})
}

// MCPCommand returns the command line a client would use to launch the MCP
// task server itself, for embedding in agent configurations.
func (h *Handlers) MCPCommand(c *gin.Context) {
	command, args, err := h.launcher.Command()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"command": command,
		"args":    args,
	})
}
