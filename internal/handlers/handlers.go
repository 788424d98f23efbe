package handlers

import (
	"errors"

	"github.com/driftwood-blog/backend/internal/apperrors"
	"github.com/driftwood-blog/backend/internal/counting"
	"github.com/driftwood-blog/backend/internal/logger"
	"github.com/driftwood-blog/backend/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	counting *counting.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(countingService *counting.Service) *Handlers {
	return &Handlers{
		counting: countingService,
	}
}

// respondServiceError maps a counting service error to an HTTP response:
// validation failures keep their 400-class status, anything else is a
// generic 500 with the detail logged rather than leaked.
func respondServiceError(c *gin.Context, operation string, err error) {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		util.RespondWithAPIError(c, apiErr)
		return
	}

	logger.Log.Error("counting operation failed",
		zap.String("operation", operation),
		logger.WithPath(c.Request.URL.Path),
		zap.Error(err),
	)
	util.RespondInternalError(c, "failed to "+operation)
}
