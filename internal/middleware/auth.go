package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/apperrors"
	"github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/domain"
	portssvc "github.com/FIAP-Tech-Challenge-SOAT-10/auth-microservice/internal/core/ports/services"
)

// AuthMiddleware creates a Gin middleware handler that resolves the bearer
// identity: it validates the access token and requires its subject to
// resolve to an existing user. The resolved user is stored in the request
// context for downstream handlers and role gates.
func AuthMiddleware(tokenSvc portssvc.TokenSvcFacade, userSvc portssvc.UserSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			abortUnauthorized(c, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			logger.Warn("Authorization header format invalid")
			abortUnauthorized(c, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := tokenSvc.DecodeAccessToken(c.Request.Context(), parts[1])
		if err != nil {
			logger.Warn("Invalid access token", slog.String("error", err.Error()))
			if errors.Is(err, apperrors.ErrTokenExpired) {
				abortUnauthorized(c, "Token has expired")
				return
			}
			abortUnauthorized(c, "Invalid token")
			return
		}

		username := claims.Subject
		if username == "" {
			logger.Error("Subject missing from valid token")
			abortUnauthorized(c, "Invalid token claims")
			return
		}

		user, err := userSvc.GetUserByUsername(c.Request.Context(), username)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				logger.Error("Failed to resolve token subject", slog.String("error", err.Error()))
			}
			abortUnauthorized(c, "Could not validate credentials")
			return
		}

		enrichedLogger := logger.With(
			slog.Int64("user_id", user.ID),
			slog.String("username", user.Username),
		)

		ctx := context.WithValue(c.Request.Context(), currentUserKey, user)
		ctx = context.WithValue(ctx, loggerCtxKey, enrichedLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole creates a Gin middleware handler that authorizes the resolved
// identity against a required role. The comparison is exact value equality;
// there is no role hierarchy.
func RequireRole(required domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			abortUnauthorized(c, "Could not validate credentials")
			return
		}

		if user.Role != required {
			GetLoggerFromCtx(c.Request.Context()).Warn("Role gate rejected request",
				slog.String("required_role", string(required)),
				slog.String("user_role", string(user.Role)),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Access denied. Required role: " + string(required),
			})
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
