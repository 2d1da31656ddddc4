package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/tutorledger/internal/app/models/dto"
	"github.com/yigit/tutorledger/internal/middleware"
	"github.com/yigit/tutorledger/internal/pkg/websession"
)

// respond writes the success envelope. A non-empty message is also queued as a success flash.
func respond(ctx *gin.Context, status int, data interface{}, message string) {
	if message != "" {
		middleware.AddFlash(ctx, websession.SeveritySuccess, message)
	}
	ctx.JSON(status, dto.NewSuccessResponse(data, message))
}
