package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saicherry93479/little-loopies-fulfillment/middleware"
	"github.com/saicherry93479/little-loopies-fulfillment/models"
	"github.com/saicherry93479/little-loopies-fulfillment/services"
)

// OrderController handles HTTP requests for order creation and the status
// machine.
type OrderController struct {
	orderService  services.OrderService
	statusService services.StatusService
}

// NewOrderController creates a new OrderController.
func NewOrderController(orderService services.OrderService, statusService services.StatusService) *OrderController {
	return &OrderController{orderService: orderService, statusService: statusService}
}

// CreateOrder handles POST /orders
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	var req models.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	operatorID := middleware.ActorID(ctx)
	idempotencyKey := ctx.GetHeader("Idempotency-Key")

	resp, svcErr := oc.orderService.CreateOrder(ctx.Request.Context(), &req, operatorID, idempotencyKey)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "code": svcErr.Code})
		return
	}

	ctx.JSON(http.StatusCreated, resp)
}

// UpdateStatus handles PATCH /orders/:id/status
func (oc *OrderController) UpdateStatus(ctx *gin.Context) {
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := oc.statusService.UpdateStatus(ctx.Request.Context(), orderID, &req, middleware.ActorID(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "code": svcErr.Code})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// GetStatusHistory handles GET /orders/:id/history
func (oc *OrderController) GetStatusHistory(ctx *gin.Context) {
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	history, svcErr := oc.statusService.GetStatusHistory(ctx.Request.Context(), orderID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "code": svcErr.Code})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"history": history})
}

// GetOrder handles GET /orders/:id
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	orderID, ok := parseOrderID(ctx)
	if !ok {
		return
	}

	details, svcErr := oc.orderService.GetOrderDetails(ctx.Request.Context(), orderID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "code": svcErr.Code})
		return
	}

	ctx.JSON(http.StatusOK, details)
}

func parseOrderID(ctx *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return uuid.Nil, false
	}
	return orderID, true
}
