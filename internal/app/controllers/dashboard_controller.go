package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/tutorledger/internal/app/models/dto"
	"github.com/yigit/tutorledger/internal/app/services"
	"github.com/yigit/tutorledger/internal/middleware"
	"github.com/yigit/tutorledger/internal/pkg/websession"
)

// DashboardController serves aggregate views and pending flashes
type DashboardController struct {
	dashboardService services.DashboardService
	logger           zerolog.Logger
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService services.DashboardService, logger zerolog.Logger) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Dashboard returns the landing view of the requester
// @Summary Dashboard
// @Description Teachers get totals, every student and the unpaid sessions; parents their own children.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse}
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /dashboard [get]
func (c *DashboardController) Dashboard(ctx *gin.Context) {
	resp, err := c.dashboardService.Dashboard(ctx.Request.Context(), middleware.CurrentIdentity(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// Totals returns the global ledger totals
// @Summary Global totals
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=ledger.GlobalTotals}
// @Failure 403 {object} dto.ErrorResponse "Teacher only"
// @Router /ledger/totals [get]
func (c *DashboardController) Totals(ctx *gin.Context) {
	totals, err := c.dashboardService.GlobalTotals(ctx.Request.Context(), middleware.CurrentIdentity(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(totals, ""))
}

// Flashes pops the pending flash messages
// @Summary Pending flash messages
// @Description Each message is returned once.
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.FlashesResponse}
// @Router /flash [get]
func (c *DashboardController) Flashes(ctx *gin.Context) {
	resp := dto.FlashesResponse{Flashes: []websession.Flash{}}
	if m := middleware.Sessions(ctx); m != nil {
		flashes, err := m.Flashes(ctx.Writer, ctx.Request)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Could not read flash messages")
		} else {
			resp.Flashes = flashes
		}
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}
