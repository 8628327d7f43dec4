package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers time slot catalog routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/time-slots")

	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("", authMiddleware, adminMiddleware, h.Create)
}
