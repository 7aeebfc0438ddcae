package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/backend/internal/shared/types"
)

// GetTasks returns the persisted task groups. A store file that does not
// exist yet reads as an empty list with exists false.
func (h *Handlers) GetTasks(c *gin.Context) {
	groups, exists, err := h.store.Load()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"taskGroups": groups,
		"exists":     exists,
	})
}

// SaveTasks replaces the persisted task groups
func (h *Handlers) SaveTasks(c *gin.Context) {
	var req types.SaveTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	if err := h.store.Save(req.TaskGroups); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(req.TaskGroups),
	})
}
