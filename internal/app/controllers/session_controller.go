package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/tutorledger/internal/app/models"
	"github.com/yigit/tutorledger/internal/app/models/dto"
	"github.com/yigit/tutorledger/internal/app/services"
	"github.com/yigit/tutorledger/internal/middleware"
)

// SessionController handles tutoring session endpoints
type SessionController struct {
	sessionService services.SessionService
	logger         zerolog.Logger
}

// NewSessionController creates a new SessionController
func NewSessionController(sessionService services.SessionService, logger zerolog.Logger) *SessionController {
	return &SessionController{
		sessionService: sessionService,
		logger:         logger,
	}
}

// CreateSession records a tutoring session
// @Summary Add a session
// @Description Teacher only. A blank amount uses the student's current default price.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSessionRequest true "Session"
// @Success 201 {object} dto.APIResponse{data=dto.SessionLedgerResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Teacher only"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	var req dto.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.sessionService.CreateSession(ctx.Request.Context(), middleware.CurrentIdentity(ctx), &req)
	if err != nil {
		c.logger.Warn().Err(err).Int64("studentID", req.StudentID).Msg("Failed to create session")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, resp, fmt.Sprintf("Session of %s added", resp.Session.Date.Format(models.DateLayout)))
}

// TogglePaid changes the payment status of a session
// @Summary Mark paid / unpaid
// @Description Teacher only. Flips the paid flag, or always sets it in set_true mode.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=dto.SessionLedgerResponse}
// @Failure 403 {object} dto.ErrorResponse "Teacher only"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id}/toggle-paid [post]
func (c *SessionController) TogglePaid(ctx *gin.Context) {
	sessionID, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.sessionService.TogglePaid(ctx.Request.Context(), middleware.CurrentIdentity(ctx), sessionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Session marked as unpaid"
	if resp.Session.Paid {
		message = "Session marked as paid"
	}
	respond(ctx, http.StatusOK, resp, message)
}

// ListUnpaid lists unpaid sessions
// @Summary Unpaid sessions
// @Description Teacher only. Oldest first.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Session}
// @Failure 403 {object} dto.ErrorResponse "Teacher only"
// @Router /sessions/unpaid [get]
func (c *SessionController) ListUnpaid(ctx *gin.Context) {
	sessions, err := c.sessionService.ListUnpaid(ctx.Request.Context(), middleware.CurrentIdentity(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(sessions, ""))
}
