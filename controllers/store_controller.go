package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saicherry93479/little-loopies-fulfillment/models"
	"github.com/saicherry93479/little-loopies-fulfillment/services"
)

// StoreController handles HTTP requests for store eligibility and assignment.
type StoreController struct {
	storeService services.StoreService
}

// NewStoreController creates a new StoreController.
func NewStoreController(svc services.StoreService) *StoreController {
	return &StoreController{storeService: svc}
}

// EligibleStores handles GET /orders/:id/eligible-stores
func (sc *StoreController) EligibleStores(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	candidates, svcErr := sc.storeService.FindEligibleStores(ctx.Request.Context(), orderID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "code": svcErr.Code})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"stores": candidates})
}

// AssignStore handles POST /orders/:id/assign-store
func (sc *StoreController) AssignStore(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var req models.AssignStoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	assignment, svcErr := sc.storeService.AssignStore(ctx.Request.Context(), orderID, req.StoreID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "code": svcErr.Code})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}
