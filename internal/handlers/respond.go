package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"brokerage-app-server/internal/engine"
	"brokerage-app-server/internal/utils"
)

// writeEngineError maps an engine error kind to an HTTP response. Handlers
// stay thin: the engine decides what went wrong, this decides the status.
func writeEngineError(c *gin.Context, err error) {
	var validation *engine.ValidationError
	var authorization *engine.AuthorizationError
	var transition *engine.InvalidTransitionError
	var partial *engine.PartialSyncError
	var transient *engine.TransientError

	switch {
	case errors.As(err, &validation):
		utils.BadRequest(c, validation.Error())
	case errors.As(err, &authorization):
		utils.Forbidden(c, authorization.Error())
	case errors.As(err, &transition):
		utils.Conflict(c, transition.Error())
	case errors.As(err, &partial):
		// The primary write committed; the caller should retry the
		// mirror step (resync endpoint), not the whole operation.
		utils.BadGateway(c, partial.Error())
	case errors.As(err, &transient):
		utils.ServiceUnavailable(c, transient.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.NotFound(c, "Record not found")
	default:
		utils.InternalServerError(c, err.Error())
	}
}
