package handler

import (
	"errors"
	"strconv"

	"comptabilite/internal/apperror"
	"comptabilite/internal/middleware"
	"comptabilite/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError translates a service error into the envelope + status
// its kind maps to.
func respondError(c *gin.Context, err error) {
	c.JSON(apperror.HTTPStatus(err), response.Fail(err.Error()))
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperror.E(apperror.ErrValidation, "invalid id in path")
	}
	return uint(id), nil
}

// bindError keeps section-reference format failures distinct from plain
// missing-field validation when a request body fails to bind.
func bindError(err error, msg string) error {
	if errors.Is(err, apperror.ErrBadSectionRef) {
		return err
	}
	return apperror.E(apperror.ErrValidation, msg)
}

// actorID returns the authenticated principal's user id, or zero when
// the route runs without authentication.
func actorID(c *gin.Context) uint {
	if principal, ok := middleware.Principal(c); ok {
		return principal.UserID
	}
	return 0
}
