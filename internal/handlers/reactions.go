package handlers

import (
	"net/http"

	"github.com/driftwood-blog/backend/internal/metrics"
	"github.com/driftwood-blog/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// React counts one reaction on a path, deduplicated per anonymous
// visitor per UTC day per reaction.
func (h *Handlers) React(c *gin.Context) {
	var req struct {
		Path     string `json:"path" binding:"required"`
		Reaction string `json:"reaction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "path and reaction are required")
		return
	}

	result, err := h.counting.React(c.Request.Context(), req.Path, req.Reaction, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, "record reaction", err)
		return
	}

	metrics.RecordReactionTracked(result.IsNewUnique)
	c.JSON(http.StatusOK, result)
}

// GetReactions lists every reaction recorded for a path with its count,
// sorted by reaction name. An untracked path yields an empty list.
func (h *Handlers) GetReactions(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		util.RespondBadRequest(c, "path query parameter is required")
		return
	}

	rows, err := h.counting.Reactions(c.Request.Context(), path)
	if err != nil {
		respondServiceError(c, "read reactions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": path, "rows": rows})
}
