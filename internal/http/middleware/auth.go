package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/skillquest-backend/internal/http/response"
	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
	"github.com/yungbote/skillquest-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
	"github.com/yungbote/skillquest-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// RequireAuth resolves the bearer token into request data on the context.
// The token may also come from ?token= for EventSource clients.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			response.RespondErr(c, apierr.Unauthenticated("unauthorized", "Authentication credentials were not provided"))
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("Token rejected", "path", c.FullPath(), "error", err)
			response.RespondErr(c, err)
			return
		}
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			response.RespondErr(c, apierr.Unauthenticated("unauthorized", "Invalid or expired token"))
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractTokenFromAll(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	return ""
}
