package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	appAuth "github.com/yigit/tutorledger/internal/app/auth"
	"github.com/yigit/tutorledger/internal/app/models"
	"github.com/yigit/tutorledger/internal/app/models/dto"
	"github.com/yigit/tutorledger/internal/pkg/apperrors"
	"github.com/yigit/tutorledger/internal/pkg/auth"
	"github.com/yigit/tutorledger/internal/pkg/websession"
)

// Context keys set by the auth middleware
const (
	ContextUserID   = "userID"
	ContextRoleType = "roleType"
)

// AuthMiddleware resolves the requester identity from a bearer token or the cookie session
type AuthMiddleware struct {
	jwtService *auth.JWTService
	sessions   *websession.Manager
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, sessions *websession.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		sessions:   sessions,
	}
}

// JWTAuth requires an identity. The Authorization header wins over the cookie session.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
			if err != nil {
				m.reject(c, dto.ErrorCodeInvalidToken, "Invalid token format")
				return
			}

			claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
			if err != nil {
				code, details := dto.ErrorCodeInvalidToken, "Invalid token"
				if errors.Is(err, apperrors.ErrTokenExpired) {
					code, details = dto.ErrorCodeExpiredToken, "Token has expired"
				}
				m.reject(c, code, details)
				return
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextRoleType, models.RoleType(claims.RoleType))
			c.Next()
			return
		}

		if m.sessions != nil {
			userID, role, err := m.sessions.Identity(c.Request)
			if err == nil {
				c.Set(ContextUserID, userID)
				c.Set(ContextRoleType, role)
				c.Next()
				return
			}
		}

		m.reject(c, dto.ErrorCodeUnauthorized, "Please log in to continue")
	}
}

// RoleRequired rejects requesters without the given role.
// It must run after JWTAuth.
func (m *AuthMiddleware) RoleRequired(requiredRole models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		if !id.IsAuthenticated() {
			m.reject(c, dto.ErrorCodeUnauthorized, "User role not found")
			return
		}
		if id.Role != requiredRole {
			HandleAPIError(c, apperrors.NewForbiddenError("You don't have sufficient permissions for this operation"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, code dto.ErrorCode, details string) {
	AddFlash(c, websession.SeverityError, "Please log in to continue")
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	respondError(c, http.StatusUnauthorized, errorDetail, RedirectLogin)
	c.Abort()
}

// CurrentIdentity returns the identity resolved by JWTAuth, or Anonymous
func CurrentIdentity(c *gin.Context) appAuth.Identity {
	userID, ok := c.Get(ContextUserID)
	if !ok {
		return appAuth.Anonymous
	}
	role, ok := c.Get(ContextRoleType)
	if !ok {
		return appAuth.Anonymous
	}
	id, okID := userID.(int64)
	r, okRole := role.(models.RoleType)
	if !okID || !okRole {
		return appAuth.Anonymous
	}
	return appAuth.Identity{UserID: id, Role: r}
}
