package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	bearerScheme        = "Bearer "
	userIDKey           = "userId"

	errMissingAuth = "missing Authorization header"
	errBadAuth     = "authorization must be 'Bearer <token>'"
	errBadToken    = "invalid or expired token"
)

// userIdMiddleware guards /api/v1: it resolves the bearer token to a user
// id and leaves it in the request context for downstream handlers.
func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		h.unauthorized(c, errMissingAuth)
		return
	}

	token, ok := strings.CutPrefix(header, bearerScheme)
	if !ok || token == "" {
		h.unauthorized(c, errBadAuth)
		return
	}

	userID, err := h.services.ParseToken(token)
	if err != nil {
		if h.log != nil {
			h.log.Infow("token_rejected", "path", c.FullPath(), "err", err)
		}
		h.unauthorized(c, errBadToken)
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

func (h *Handler) unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
