package middleware

import (
	"errors"
	"net/http"

	"contentgen_backend/internal/auth"
	"contentgen_backend/internal/logger"
	"contentgen_backend/pkg/apperrors"
	"contentgen_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware - проверка личности через IdentityResolver.
// Кладет userID в gin.Context и в контекст логгера.
func AuthMiddleware(resolver auth.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := resolver.Resolve(c.Request)
		if err != nil {
			logger.CtxWarn(c.Request.Context(), "Authentication failed",
				"path", c.Request.URL.Path,
				"reason", err.Error(),
			)
			apperrors.HandleError(c, authError(err))
			return
		}

		c.Set(contextkeys.UserIDContextKey, userID)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func authError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return apperrors.New(apperrors.CodeTokenExpired, "auth", "Token expired", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrMissingToken):
		return apperrors.NewUnauthorizedError("Authorization header missing or invalid")
	default:
		return apperrors.New(apperrors.CodeInvalidToken, "auth", "Invalid token", http.StatusUnauthorized)
	}
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get(contextkeys.UserIDContextKey)
	if !exists {
		return ""
	}

	id, ok := userID.(string)
	if !ok {
		return ""
	}

	return id
}
