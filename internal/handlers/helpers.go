package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/teamtasker/team-task-service/internal/errors"
	"github.com/teamtasker/team-task-service/internal/services"
)

// parseIDParam reads a numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// handleServiceError translates service sentinel errors into the API error
// kinds. Unrecognized errors become internal errors without leaking detail.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrMediaNotFound),
		errors.Is(err, services.ErrNotAssigned),
		errors.Is(err, services.ErrNotMember),
		errors.Is(err, services.ErrNotGroupAdmin):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, services.ErrInvalidStatusValue),
		errors.Is(err, services.ErrTaskFieldsRequired),
		errors.Is(err, services.ErrGroupNameEmpty),
		errors.Is(err, services.ErrNoAssigneesGiven),
		errors.Is(err, services.ErrFieldNotEditable),
		errors.Is(err, services.ErrCannotTouchSelf),
		errors.Is(err, services.ErrUserAlreadyActive):
		apierrors.BadRequest(c, err.Error())

	case errors.Is(err, services.ErrGroupNameTaken),
		errors.Is(err, services.ErrRequestAlreadyFiled),
		errors.Is(err, services.ErrMediaLimitReached):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrTaskEditDenied),
		errors.Is(err, services.ErrForceStatusDenied),
		errors.Is(err, services.ErrActionNotAllowed),
		errors.Is(err, services.ErrReviewNotAllowed),
		errors.Is(err, services.ErrRegistrationDisabled),
		errors.Is(err, services.ErrWrongPassword):
		apierrors.Forbidden(c, err.Error())

	default:
		apierrors.InternalError(c, "")
	}
}
