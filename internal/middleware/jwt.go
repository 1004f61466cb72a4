package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"siteportal/internal/pkg/jwt"
	"siteportal/internal/pkg/response"
)

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// RevocationChecker reports tokens ended by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTAuth authenticates the request from "Authorization: Bearer <token>". When
// the header is absent the "token" query parameter is used, since browsers
// cannot set headers on websocket upgrades. revoked may be nil.
//
// Sets user_id (int64), role, session_id and session_expires (time.Time).
func JWTAuth(tokens TokenValidator, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, code, msg := bearerToken(c)
		if raw == "" {
			response.CustomError(c, http.StatusUnauthorized, code, msg)
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired")
			c.Abort()
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				slog.Error("revocation lookup failed", "error", err, "user_id", claims.UserID)
				response.CustomError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
				c.Abort()
				return
			}
			if isRevoked {
				response.CustomError(c, http.StatusUnauthorized, "SESSION_REVOKED", "Session has ended")
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("session_id", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("session_expires", claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (token, code, msg string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if q := strings.TrimSpace(c.Query("token")); q != "" {
			return q, "", ""
		}
		return "", "AUTH_HEADER_MISSING", "Authorization header is required"
	}
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(value) == "" {
		return "", "INVALID_AUTH_FORMAT", "Authorization header must be: Bearer <token>"
	}
	return strings.TrimSpace(value), "", ""
}
