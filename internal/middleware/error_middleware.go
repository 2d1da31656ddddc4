package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/tutorledger/internal/app/models/dto"
	"github.com/yigit/tutorledger/internal/pkg/apperrors"
	"github.com/yigit/tutorledger/internal/pkg/logger"
	"github.com/yigit/tutorledger/internal/pkg/websession"
)

// Safe views a denied request falls back to
const (
	RedirectLogin = "/login"
	RedirectHome  = "/"
)

type errorMapping struct {
	target   error
	status   int
	code     dto.ErrorCode
	message  string
	redirect string
}

// errorMappings is checked in order; the first match wins
var errorMappings = []errorMapping{
	{apperrors.ErrUnauthenticated, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Please log in to continue", RedirectLogin},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "You are not allowed to do that", RedirectHome},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found", ""},
	{apperrors.ErrDuplicateIdentity, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Username or email already in use", ""},
	{apperrors.ErrParentNotFound, http.StatusUnprocessableEntity, dto.ErrorCodeParentNotFound, "No parent account matches this email", ""},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed", ""},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid username or password", ""},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired", ""},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token", ""},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format", ""},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found", ""},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked", ""},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict", ""},
}

// HandleAPIError converts err into an error response and an error flash.
// Nothing is retried; unknown errors become 500 and are logged.
func HandleAPIError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if userMsg, ok := apperrors.UserMessage(err); ok {
			message = userMsg
		}
		detail := dto.NewErrorDetail(m.code, message)
		var ce *apperrors.CustomError
		if errors.As(err, &ce) {
			if field, ok := ce.Details["field"].(string); ok {
				detail = detail.WithField(field)
			}
		}
		if m.status == http.StatusUnauthorized && m.redirect == "" {
			detail = detail.WithSeverity(dto.ErrorSeverityWarning)
		}

		AddFlash(c, websession.SeverityError, message)
		respondError(c, m.status, detail, m.redirect)
		return
	}

	logger.Error().Err(err).Str("path", c.Request.URL.Path).Str("method", c.Request.Method).Msg("Unhandled error")
	AddFlash(c, websession.SeverityError, "Something went wrong, please try again")
	respondError(c, http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"), "")
}

// HandleBindingError answers a request whose body failed to bind or validate
func HandleBindingError(c *gin.Context, err error) {
	detail := dto.HandleValidationError(err)
	AddFlash(c, websession.SeverityError, detail.Message)
	respondError(c, http.StatusBadRequest, detail, "")
}

// respondError writes the JSON error envelope, or a redirect for browser navigation
func respondError(c *gin.Context, status int, detail *dto.ErrorDetail, redirect string) {
	if redirect != "" && wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, redirect)
		return
	}
	resp := dto.NewErrorResponse(detail)
	if redirect != "" {
		resp = resp.WithRedirect(redirect)
	}
	c.JSON(status, resp)
}

func wantsHTML(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
