package handlers

import (
	"net/http"

	"github.com/driftwood-blog/backend/internal/counting"
	"github.com/driftwood-blog/backend/internal/metrics"
	"github.com/driftwood-blog/backend/internal/util"
	"github.com/gin-gonic/gin"
)

// TrackView counts one page view for the posted path, deduplicated per
// anonymous visitor per UTC day. IP and User-Agent never leave this
// handler unhashed.
func (h *Handlers) TrackView(c *gin.Context) {
	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "path is required")
		return
	}

	result, err := h.counting.TrackView(c.Request.Context(), req.Path, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, "track view", err)
		return
	}

	metrics.RecordViewTracked(result.IsNewUnique)
	c.JSON(http.StatusOK, result)
}

// GetViewCount returns the current count for a single path, 0 when the
// path was never tracked.
func (h *Handlers) GetViewCount(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		util.RespondBadRequest(c, "path query parameter is required")
		return
	}

	count, err := h.counting.ViewCount(c.Request.Context(), path)
	if err != nil {
		respondServiceError(c, "read view count", err)
		return
	}

	c.JSON(http.StatusOK, counting.PathCount{Path: path, Count: count})
}

// BatchViewCounts returns counts for a list of paths in the requested
// order, 0 for paths never tracked. Non-string elements fail JSON
// binding and come back as 400.
func (h *Handlers) BatchViewCounts(c *gin.Context) {
	var req struct {
		Paths []string `json:"paths"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "paths must be an array of strings")
		return
	}
	if req.Paths == nil {
		util.RespondBadRequest(c, "paths is required")
		return
	}

	rows, err := h.counting.ViewCounts(c.Request.Context(), req.Paths)
	if err != nil {
		respondServiceError(c, "read view counts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}
