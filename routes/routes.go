package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/saicherry93479/little-loopies-fulfillment/controllers"
	"github.com/saicherry93479/little-loopies-fulfillment/middleware"
)

// RegisterRoutes sets up all fulfillment routes.
func RegisterRoutes(
	r *gin.Engine,
	oc *controllers.OrderController,
	tc *controllers.TrackingController,
	sc *controllers.StoreController,
) {
	// Public: tracking-link holders are anonymous, so the endpoint is
	// rate-limited per IP instead of authenticated.
	track := r.Group("/track")
	track.Use(middleware.TrackingRateLimit())
	track.GET("/:token", tc.Track)

	orders := r.Group("/orders")

	// Customer order creation is anonymous; store orders need the operator
	// identity, which the service enforces.
	orders.POST("", middleware.OptionalAuth(), oc.CreateOrder)

	// Operator-only operations.
	protected := orders.Group("")
	protected.Use(middleware.RequireAuth(), middleware.RequireRole(middleware.AdminRole, middleware.OperatorRole))
	protected.GET("/:id", oc.GetOrder)
	protected.PATCH("/:id/status", oc.UpdateStatus)
	protected.GET("/:id/history", oc.GetStatusHistory)
	protected.GET("/:id/eligible-stores", sc.EligibleStores)
	protected.POST("/:id/assign-store", sc.AssignStore)
	protected.POST("/:id/tracking-links", tc.IssueLink)
}
