package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/tutorledger/internal/pkg/logger"
	"github.com/yigit/tutorledger/internal/pkg/websession"
)

const contextSessions = "websession"

// SessionContext makes the cookie session manager available to handlers
func SessionContext(manager *websession.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextSessions, manager)
		c.Next()
	}
}

// Sessions returns the manager set by SessionContext, or nil
func Sessions(c *gin.Context) *websession.Manager {
	v, ok := c.Get(contextSessions)
	if !ok {
		return nil
	}
	m, _ := v.(*websession.Manager)
	return m
}

// AddFlash queues a one-time message for the user. A failure only costs the message.
func AddFlash(c *gin.Context, severity websession.Severity, message string) {
	m := Sessions(c)
	if m == nil {
		return
	}
	if err := m.AddFlash(c.Writer, c.Request, severity, message); err != nil {
		logger.Warn().Err(err).Msg("Could not store flash message")
	}
}
