package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saicherry93479/little-loopies-fulfillment/middleware"
	"github.com/saicherry93479/little-loopies-fulfillment/models"
	"github.com/saicherry93479/little-loopies-fulfillment/services"
)

// TrackingController handles HTTP requests for tracking links.
type TrackingController struct {
	trackingService services.TrackingService
}

// NewTrackingController creates a new TrackingController.
func NewTrackingController(svc services.TrackingService) *TrackingController {
	return &TrackingController{trackingService: svc}
}

// Track handles GET /track/:token — the public, rate-limited entry point for
// tracking-link holders. The optional email query narrows validation to the
// issued recipient.
func (tc *TrackingController) Track(ctx *gin.Context) {
	token := ctx.Param("token")
	if token == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Tracking token is required"})
		return
	}

	details, svcErr := tc.trackingService.Validate(ctx.Request.Context(), token, ctx.Query("email"))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "code": svcErr.Code})
		return
	}

	ctx.JSON(http.StatusOK, details)
}

// IssueLink handles POST /orders/:id/tracking-links (operator-issued links).
func (tc *TrackingController) IssueLink(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var req models.IssueTrackingLinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	link, svcErr := tc.trackingService.Issue(
		ctx.Request.Context(),
		orderID,
		req.IssuedTo,
		middleware.ActorID(ctx),
		req.ExpiryDays,
		req.MaxAccess,
	)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "code": svcErr.Code})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"tracking_link": link})
}
