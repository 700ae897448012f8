package handler

import (
	"errors"
	"net/http"
	"strings"

	"go-procflow/internal/api/dto"
	"go-procflow/internal/domain"

	"github.com/gin-gonic/gin"
)

// PrincipalHeader carries the authenticated user id. Credential checks
// happen upstream.
const PrincipalHeader = "X-User-ID"

func principal(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(PrincipalHeader))
}

// requirePrincipal writes 401 and returns false when no user is present.
func requirePrincipal(c *gin.Context) (string, bool) {
	user := principal(c)
	if user == "" {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "missing " + PrincipalHeader + " header"})
		return "", false
	}
	return user, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrVersionConflict), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEngineUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
}

// degraded reports whether err only says the engine action stood but its
// shadow write failed.
func degraded(err error) bool {
	return errors.Is(err, domain.ErrTrackingDegraded)
}
