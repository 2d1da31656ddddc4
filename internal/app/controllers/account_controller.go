package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/tutorledger/internal/app/models/dto"
	"github.com/yigit/tutorledger/internal/app/services"
	"github.com/yigit/tutorledger/internal/middleware"
)

// AccountController handles accounts opened by a teacher
type AccountController struct {
	accountService services.AccountService
	logger         zerolog.Logger
}

// NewAccountController creates a new AccountController
func NewAccountController(accountService services.AccountService, logger zerolog.Logger) *AccountController {
	return &AccountController{
		accountService: accountService,
		logger:         logger,
	}
}

// CreateParent opens a parent account
// @Summary Create a parent account
// @Description Teacher only. The temporary password is returned once and must be handed over out of band.
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateParentRequest true "Parent"
// @Success 201 {object} dto.APIResponse{data=dto.ParentAccountResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Teacher only"
// @Failure 409 {object} dto.ErrorResponse "Username or email already in use"
// @Router /parents [post]
func (c *AccountController) CreateParent(ctx *gin.Context) {
	var req dto.CreateParentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.accountService.CreateParentAccount(ctx.Request.Context(), middleware.CurrentIdentity(ctx), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("username", req.Username).Msg("Failed to create parent account")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, resp, fmt.Sprintf("Parent account %s created", resp.User.Username))
}

// ListParents lists parent accounts so a teacher can pick one when adding a student
// @Summary List parent accounts
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.UserResponse}
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Teacher only"
// @Router /parents [get]
func (c *AccountController) ListParents(ctx *gin.Context) {
	parents, err := c.accountService.ListParents(ctx.Request.Context(), middleware.CurrentIdentity(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, parents, "")
}
