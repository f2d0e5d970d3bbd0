package auth

import (
	"context"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wallify/cdn-backend/internal/pkg/errors"
	"github.com/wallify/cdn-backend/internal/pkg/logger"
	"github.com/wallify/cdn-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// UserVerifier checks account state for authenticated requests; implemented
// by the user feature's use case.
type UserVerifier interface {
	VerifyActive(ctx context.Context, userID string) error
	VerifyAdmin(ctx context.Context, userID string) error
}

// ContextUserID is the gin context key holding the authenticated user id
const ContextUserID = "user_id"

// JWTAuth validates the request token and requires an active account.
// The token is read from the Authorization header, falling back to the
// "token" query parameter so plain <img src=...> links to served files work.
func JWTAuth(manager *JWTManager, verifier UserVerifier, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			response.AbortWithCode(c, apperrors.ErrForbidden, "missing token")
			return
		}

		claims, err := manager.VerifyToken(token)
		if err != nil {
			log.Warn("invalid access token",
				zap.Error(err),
				zap.String("ip", c.ClientIP()))
			response.AbortWithCode(c, apperrors.ErrAuthInvalidToken)
			return
		}

		if err := verifier.VerifyActive(c.Request.Context(), claims.UserID); err != nil {
			response.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// RequireAdmin gates a route on the authenticated user holding the admin
// role; it must run after JWTAuth.
func RequireAdmin(verifier UserVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			response.AbortWithCode(c, apperrors.ErrForbidden, "missing token")
			return
		}

		if err := verifier.VerifyAdmin(c.Request.Context(), userID); err != nil {
			response.HandleError(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}
