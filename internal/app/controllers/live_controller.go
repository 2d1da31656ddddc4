package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/tutorledger/internal/middleware"
	"github.com/yigit/tutorledger/internal/pkg/websocket"
)

// LiveController streams ledger changes over a websocket
type LiveController struct {
	hub    *websocket.Hub
	logger zerolog.Logger
}

// NewLiveController creates a new LiveController
func NewLiveController(hub *websocket.Hub, logger zerolog.Logger) *LiveController {
	return &LiveController{hub: hub, logger: logger}
}

// Subscribe godoc
// @Summary Live ledger updates
// @Description Upgrades to a WebSocket. Teachers receive every ledger change, parents the changes of their own children.
// @Tags live
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /ws [get]
func (c *LiveController) Subscribe(ctx *gin.Context) {
	id := middleware.CurrentIdentity(ctx)
	// the upgrader has already answered the request when this fails
	if err := c.hub.ServeWS(ctx.Writer, ctx.Request, id.UserID, id.Role); err != nil {
		c.logger.Warn().Err(err).Int64("userID", id.UserID).Msg("WebSocket subscription failed")
	}
}
