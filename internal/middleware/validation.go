package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/tutorledger/internal/pkg/apperrors"
)

// ParamID parses a positive integer path parameter.
// On failure the error response is already written and ok is false.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		HandleAPIError(c, apperrors.NewValidationError(name, "Invalid "+name+" format"))
		return 0, false
	}
	return id, true
}
