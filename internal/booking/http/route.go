package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes and the per-resource availability query.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	g.GET("/resources/:id/availability", h.Availability)
	g.GET("/me/bookings", authMiddleware, h.ListMine)

	group := g.Group("/bookings")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.POST("", h.Create)
		group.GET("", h.List)
		group.GET("/:id", h.Get)
	}

	// === Admin Routes ===
	{
		group.GET("/pending", adminMiddleware, h.ListPending)
		group.POST("/:id/confirm", adminMiddleware, h.Confirm)
		group.POST("/:id/reject", adminMiddleware, h.Reject)
	}
}
