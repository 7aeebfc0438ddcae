package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/backend/internal/infrastructure/tracing"
)

// GUILogEntry is a single log record forwarded from the GUI webview.
type GUILogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// GUILogBatch is a batch of log records forwarded from the GUI webview.
type GUILogBatch struct {
	Source  string        `json:"source"`
	Entries []GUILogEntry `json:"entries"`
}

// StreamLogs ingests a batch of GUI log records into the backend log
func (h *Handlers) StreamLogs(c *gin.Context) {
	var req GUILogBatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	if req.Source != "gui" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid log source",
		})
		return
	}

	if len(req.Entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "No log entries provided",
		})
		return
	}

	for _, entry := range req.Entries {
		h.writeGUILog(c.Request.Context(), entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"received":  len(req.Entries),
		"timestamp": time.Now().Unix(),
	})
}

// writeGUILog replays one GUI record into the backend log at its level.
func (h *Handlers) writeGUILog(ctx context.Context, entry GUILogEntry) {
	fields := make([]zap.Field, 0, len(entry.Context)+3)
	fields = append(fields,
		zap.String("source", "gui"),
		zap.String("gui_timestamp", entry.Timestamp),
	)
	if rid := tracing.FromContext(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid.String()))
	}

	for key, value := range entry.Context {
		switch v := value.(type) {
		case string:
			fields = append(fields, zap.String(key, v))
		case float64:
			fields = append(fields, zap.Float64(key, v))
		case bool:
			fields = append(fields, zap.Bool(key, v))
		default:
			fields = append(fields, zap.Any(key, v))
		}
	}

	switch entry.Level {
	case "error":
		h.log.Error(entry.Message, fields...)
	case "warn":
		h.log.Warn(entry.Message, fields...)
	case "debug":
		h.log.Debug(entry.Message, fields...)
	default:
		h.log.Info(entry.Message, fields...)
	}
}
