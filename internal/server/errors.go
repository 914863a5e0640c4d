package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"authplane/internal/errdefs"
)

// writeError maps a service error to an HTTP response. Unexpected errors
// get a generic body so internals never leak to clients.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errdefs.ErrEmptyPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty password"})
	case errors.Is(err, errdefs.ErrInvalidAuthentication):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authentication"})
	case errors.Is(err, errdefs.ErrRestrictedSession):
		c.JSON(http.StatusForbidden, gin.H{"error": "restricted session"})
	case errors.Is(err, errdefs.ErrSessionUserMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": "session does not belong to user"})
	case errors.Is(err, errdefs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
