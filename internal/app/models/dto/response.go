package dto

import (
	"time"

	"github.com/yigit/tutorledger/internal/pkg/websession"
)

// APIResponse is the envelope of every successful JSON response
type APIResponse struct {
	Success    bool               `json:"success" example:"true"`
	Message    string             `json:"message,omitempty" example:"Session added"`
	Data       interface{}        `json:"data,omitempty"`
	Error      *ErrorDetail       `json:"error,omitempty"`
	RedirectTo string             `json:"redirectTo,omitempty"`
	Flashes    []websession.Flash `json:"flashes,omitempty"`
	Timestamp  time.Time          `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewSuccessResponse wraps data in a success envelope
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// FlashesResponse lists the flash messages popped for the current session
type FlashesResponse struct {
	Flashes []websession.Flash `json:"flashes"`
}
