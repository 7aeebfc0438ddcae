package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/promptdeck/promptdeck/backend/internal/git"
	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/monitoring"
	"github.com/promptdeck/promptdeck/backend/internal/shared/types"
)

// GitBranch reports the branch checked out at the repository containing path
func (h *Handlers) GitBranch(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "path parameter required",
		})
		return
	}

	branch, err := h.git.CurrentBranch(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"branch":  branch,
	})
}

// GitDiff returns per-file diffs for the repository containing path.
// Without base it diffs the working tree against HEAD; with base it
// diffs against the named branch.
func (h *Handlers) GitDiff(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "path parameter required",
		})
		return
	}

	base := c.Query("base")
	timer := monitoring.NewTimer(h.metrics, "git", "diff")

	var (
		result *git.DiffResult
		err    error
	)
	if base == "" {
		result, err = h.git.DiffWorkdir(path)
	} else {
		result, err = h.git.DiffAgainstBranch(path, base)
	}
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	timer.Stop("success")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"root":    result.Root,
		"files":   result.Files,
	})
}

// GitStats totals added and removed lines for the repository containing path
func (h *Handlers) GitStats(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "path parameter required",
		})
		return
	}

	timer := monitoring.NewTimer(h.metrics, "git", "stats")
	stats, err := h.git.ChangeStats(path, c.Query("base"))
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	timer.Stop("success")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"added":        stats.Added,
			"removed":      stats.Removed,
			"filesChanged": stats.FilesChanged,
		},
	})
}

// GitFileSection returns a line range of a file, resolved against the
// repository root when the file path is relative
func (h *Handlers) GitFileSection(c *gin.Context) {
	file := c.Query("file")
	if file == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "file parameter required",
		})
		return
	}

	start, err := strconv.Atoi(c.DefaultQuery("start", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid start line: " + err.Error(),
		})
		return
	}

	end, err := strconv.Atoi(c.DefaultQuery("end", strconv.Itoa(start)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid end line: " + err.Error(),
		})
		return
	}

	section, err := h.git.ReadFileSection(c.Query("path"), file, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"content":   section.Content,
		"path":      section.Path,
		"startLine": section.StartLine,
		"endLine":   section.EndLine,
	})
}

// GitResetTask discards a task's worktree and branch
func (h *Handlers) GitResetTask(c *gin.Context) {
	var req types.ResetTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	if err := h.git.ResetTask(req.Path, req.WorktreePath, req.BranchName); err != nil {
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
