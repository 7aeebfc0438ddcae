package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/backend/internal/shared/types"
	"github.com/promptdeck/promptdeck/backend/internal/terminal"
)

// OpenSession starts a shell session under the requested id, replacing any
// session already registered there
func (h *Handlers) OpenSession(c *gin.Context) {
	var req types.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	if err := h.mux.Open(req.ID, req.Cols, req.Rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      req.ID,
	})
}

// WriteSession delivers input bytes to a session's stdin
func (h *Handlers) WriteSession(c *gin.Context) {
	id := c.Param("id")

	var req types.WriteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	if err := h.mux.Write(id, []byte(req.Data)); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, terminal.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// ResizeSession updates a session's window dimensions
func (h *Handlers) ResizeSession(c *gin.Context) {
	id := c.Param("id")

	var req types.ResizeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	if err := h.mux.Resize(id, req.Cols, req.Rows); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, terminal.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// CloseSession terminates a session. Closing an unknown id succeeds.
func (h *Handlers) CloseSession(c *gin.Context) {
	id := c.Param("id")

	if err := h.mux.Close(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      id,
	})
}
