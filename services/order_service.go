package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saicherry93479/little-loopies-fulfillment/cache"
	"github.com/saicherry93479/little-loopies-fulfillment/models"
	"github.com/saicherry93479/little-loopies-fulfillment/notifier"
	aws_pkg "github.com/saicherry93479/little-loopies-fulfillment/pkg/aws"
	"github.com/saicherry93479/little-loopies-fulfillment/repository"
)

var (
	mobileRegex = regexp.MustCompile(`^[0-9]{10}$`)
	emailRegex  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const idempotencyTTL = 24 * time.Hour

// OrderService assembles orders: one atomic transaction creates the order,
// its detail record, line items, initial history entry, invoice, tracking
// link and (for customer orders) the stock decrements.
type OrderService interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest, operatorID, idempotencyKey string) (*models.CreateOrderResponse, *ServiceError)
	GetOrderDetails(ctx context.Context, orderID uuid.UUID) (*models.OrderDetails, *ServiceError)
}

type orderServiceImpl struct {
	orderRepo       repository.OrderRepository
	productRepo     repository.ProductRepository
	storeRepo       repository.StoreRepository
	emailSender     notifier.EmailSender
	snsClient       aws_pkg.SNSPublisher
	snsTopicArn     string
	idempotency     cache.IdempotencyStore
	trackingBaseURL string
	logger          *zap.Logger
}

// NewOrderService creates a new OrderService. emailSender, snsClient and
// idempotency may be nil; the corresponding side effects are then skipped.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
	emailSender notifier.EmailSender,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	idempotency cache.IdempotencyStore,
	trackingBaseURL string,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orderRepo:       orderRepo,
		productRepo:     productRepo,
		storeRepo:       storeRepo,
		emailSender:     emailSender,
		snsClient:       snsClient,
		snsTopicArn:     snsTopicArn,
		idempotency:     idempotency,
		trackingBaseURL: trackingBaseURL,
		logger:          logger,
	}
}

// CreateOrder validates the request, writes the whole order graph in one
// transaction, and only after commit attempts the confirmation email and the
// order_created event. Either everything persists or nothing does.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, req *models.CreateOrderRequest, operatorID, idempotencyKey string) (*models.CreateOrderResponse, *ServiceError) {
	if svcErr := s.validateCreateRequest(req, operatorID); svcErr != nil {
		return nil, svcErr
	}

	if idempotencyKey != "" && s.idempotency != nil {
		if cached, ok, err := s.idempotency.Get(ctx, idempotencyKey); err == nil && ok {
			var resp models.CreateOrderResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				s.logger.Info("Replaying idempotent order creation",
					zap.String("idempotency_key", idempotencyKey),
					zap.String("order_id", resp.OrderID.String()),
				)
				return &resp, nil
			}
		}
	}

	products, svcErr := s.loadProducts(ctx, req.LineItems)
	if svcErr != nil {
		return nil, svcErr
	}

	var orderingStore *models.Store
	if req.Kind == models.OrderKindStore {
		store, err := s.storeRepo.FindByOperator(ctx, operatorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewNotFoundError("No active store found for this operator")
			}
			s.logger.Error("Store lookup failed", zap.Error(err))
			return nil, NewTransactionError("Failed to resolve store")
		}
		orderingStore = store
	}

	graph := s.buildOrderGraph(req, products, orderingStore)

	if err := s.orderRepo.CreateOrderGraph(ctx, graph); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, NewInsufficientStockError(err.Error())
		}
		s.logger.Error("Order transaction failed", zap.Error(err))
		return nil, NewTransactionError("Failed to create order")
	}

	resp := &models.CreateOrderResponse{
		OrderID:     graph.Order.ID,
		TotalAmount: graph.Order.TotalAmount,
	}
	if graph.TrackingLink != nil {
		resp.TrackingToken = graph.TrackingLink.Token
		resp.TrackingURL = s.trackingBaseURL + "/track/" + graph.TrackingLink.Token
	}

	s.logger.Info("Order created",
		zap.String("order_id", graph.Order.ID.String()),
		zap.String("kind", graph.Order.Kind),
		zap.Float64("total_amount", graph.Order.TotalAmount),
		zap.Int("line_items", len(graph.LineItems)),
	)

	// Post-commit side effects only: their failure never unwinds the order.
	resp.Notified = s.sendConfirmation(ctx, graph, resp.TrackingURL)
	s.publishEvent(ctx, models.OrderCreatedEvent{
		EventType:   "order_created",
		OrderID:     graph.Order.ID.String(),
		Kind:        graph.Order.Kind,
		TotalAmount: graph.Order.TotalAmount,
		ItemCount:   len(graph.LineItems),
		Timestamp:   time.Now(),
	})

	if idempotencyKey != "" && s.idempotency != nil {
		if b, err := json.Marshal(resp); err == nil {
			if err := s.idempotency.Set(ctx, idempotencyKey, string(b), idempotencyTTL); err != nil {
				s.logger.Warn("Failed to store idempotency key", zap.Error(err))
			}
		}
	}

	return resp, nil
}

func (s *orderServiceImpl) validateCreateRequest(req *models.CreateOrderRequest, operatorID string) *ServiceError {
	if len(req.LineItems) == 0 {
		return NewValidationError("At least one line item is required")
	}
	for i, item := range req.LineItems {
		if item.Quantity < 1 {
			return NewValidationError(fmt.Sprintf("Line item %d: quantity must be at least 1", i))
		}
		if item.UnitPrice < 0 {
			return NewValidationError(fmt.Sprintf("Line item %d: unit price cannot be negative", i))
		}
		if item.Discount < 0 || item.TotalPrice() < 0 {
			return NewValidationError(fmt.Sprintf("Line item %d: discount exceeds line total", i))
		}
	}

	switch req.Kind {
	case models.OrderKindCustomer:
		if req.CustomerName == "" {
			return NewValidationError("Customer name is required")
		}
		if !emailRegex.MatchString(req.CustomerEmail) {
			return NewValidationError("A valid customer email is required")
		}
		if !mobileRegex.MatchString(req.CustomerMobile) {
			return NewValidationError("A valid 10-digit mobile number is required")
		}
		if req.ShippingAddress == nil {
			return NewValidationError("Shipping address is required")
		}
		addr := req.ShippingAddress
		if addr.Street == "" || addr.City == "" || addr.State == "" || addr.Pincode == "" || addr.Phone == "" {
			return NewValidationError("Shipping address must include street, city, state, pincode and phone")
		}
	case models.OrderKindStore:
		if operatorID == "" {
			return NewValidationError("Store orders require an authenticated store operator")
		}
	default:
		return NewValidationError("Order kind must be customer or store")
	}
	return nil
}

func (s *orderServiceImpl) loadProducts(ctx context.Context, items []models.LineItemInput) (map[uuid.UUID]models.Product, *ServiceError) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Product lookup failed", zap.Error(err))
		return nil, NewTransactionError("Failed to look up products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, item := range items {
		if _, ok := byID[item.ProductID]; !ok {
			return nil, NewNotFoundError("Unknown product: " + item.ProductID.String())
		}
	}
	return byID, nil
}

func (s *orderServiceImpl) buildOrderGraph(req *models.CreateOrderRequest, products map[uuid.UUID]models.Product, orderingStore *models.Store) *repository.OrderGraph {
	orderID := uuid.New()
	now := time.Now()

	var total float64
	lineItems := make([]models.OrderLineItem, 0, len(req.LineItems))
	for _, input := range req.LineItems {
		lineTotal := input.TotalPrice()
		total += lineTotal
		lineItems = append(lineItems, models.OrderLineItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   input.ProductID,
			ProductName: products[input.ProductID].Name,
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			Discount:    input.Discount,
			TotalPrice:  lineTotal,
		})
	}

	graph := &repository.OrderGraph{
		Order: &models.Order{
			ID:          orderID,
			Kind:        req.Kind,
			Status:      models.StatusOrdered,
			TotalAmount: total,
			Notes:       req.Notes,
			AssignedTo:  models.AssignedToCompany,
		},
		LineItems: lineItems,
		History: &models.OrderStatusHistory{
			ID:      uuid.New(),
			OrderID: orderID,
			Status:  models.StatusOrdered,
		},
		TrackingLink: &models.TrackingLink{
			ID:        uuid.New(),
			Token:     uuid.NewString(),
			OrderID:   orderID,
			ExpiresAt: now.AddDate(0, 0, models.TrackingDefaultExpiryDays),
			MaxAccess: models.TrackingDefaultMaxAccess,
			IsActive:  true,
		},
	}

	if req.Kind == models.OrderKindCustomer {
		graph.TrackingLink.IssuedTo = req.CustomerEmail
		graph.CustomerDetail = &models.CustomerOrderDetail{
			ID:            uuid.New(),
			OrderID:       orderID,
			Name:          req.CustomerName,
			Email:         req.CustomerEmail,
			Mobile:        req.CustomerMobile,
			Street:        req.ShippingAddress.Street,
			City:          req.ShippingAddress.City,
			State:         req.ShippingAddress.State,
			Pincode:       req.ShippingAddress.Pincode,
			Phone:         req.ShippingAddress.Phone,
			Landmark:      req.ShippingAddress.Landmark,
			PaymentStatus: models.PaymentStatusPending,
			PaymentMethod: "cod",
		}
		graph.Invoice = &models.Invoice{
			ID:            uuid.New(),
			OrderID:       orderID,
			PaymentMethod: "cod",
			Amount:        total,
			Status:        models.InvoiceStatusPending,
		}
		graph.DecrementStock = true
	} else {
		graph.StoreDetail = &models.StoreOrderDetail{
			ID:                   uuid.New(),
			OrderID:              orderID,
			StoreID:              orderingStore.ID,
			ExpectedDeliveryDate: req.ExpectedDeliveryDate,
			PaymentTerms:         req.PaymentTerms,
			CreditPeriodDays:     req.CreditPeriodDays,
		}
		graph.Invoice = &models.Invoice{
			ID:            uuid.New(),
			OrderID:       orderID,
			PaymentMethod: "credit",
			Amount:        total,
			Status:        models.InvoiceStatusPending,
		}
	}

	return graph
}

// sendConfirmation emails the customer their tracking URL. Best-effort: a
// failure is logged and reported through the Notified flag only.
func (s *orderServiceImpl) sendConfirmation(ctx context.Context, graph *repository.OrderGraph, trackingURL string) bool {
	if s.emailSender == nil || graph.CustomerDetail == nil {
		return false
	}
	subject := "Your order is confirmed"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your order of %d item(s) totalling %.2f has been placed.</p><p>Track it anytime: <a href=%q>%s</a></p>",
		graph.CustomerDetail.Name, len(graph.LineItems), graph.Order.TotalAmount, trackingURL, trackingURL,
	)
	if _, err := s.emailSender.SendEmail(ctx, graph.CustomerDetail.Email, subject, body); err != nil {
		s.logger.Warn("Order confirmation email failed",
			zap.String("order_id", graph.Order.ID.String()),
			zap.Error(err),
		)
		return false
	}
	return true
}

// publishEvent marshals an event and publishes it to SNS (non-fatal on error).
func (s *orderServiceImpl) publishEvent(ctx context.Context, event interface{}) {
	if s.snsClient == nil || s.snsTopicArn == "" {
		return
	}
	b, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal SNS event", zap.Error(err))
		return
	}
	if err := s.snsClient.Publish(ctx, s.snsTopicArn, b); err != nil {
		s.logger.Error("Failed to publish SNS event", zap.Error(err))
	}
}

// GetOrderDetails returns an order with its line items, customer detail (when
// present) and full status history.
func (s *orderServiceImpl) GetOrderDetails(ctx context.Context, orderID uuid.UUID) (*models.OrderDetails, *ServiceError) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Order not found")
		}
		s.logger.Error("Order lookup failed", zap.Error(err))
		return nil, NewTransactionError("Failed to load order")
	}

	items, err := s.orderRepo.FindLineItems(ctx, orderID)
	if err != nil {
		s.logger.Error("Line item lookup failed", zap.Error(err))
		return nil, NewTransactionError("Failed to load order items")
	}

	history, err := s.orderRepo.ListStatusHistory(ctx, orderID)
	if err != nil {
		s.logger.Error("History lookup failed", zap.Error(err))
		return nil, NewTransactionError("Failed to load order history")
	}

	details := &models.OrderDetails{
		Order:     *order,
		LineItems: items,
		History:   history,
	}

	switch order.Kind {
	case models.OrderKindCustomer:
		detail, err := s.orderRepo.FindCustomerDetail(ctx, orderID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("Customer detail lookup failed", zap.Error(err))
			return nil, NewTransactionError("Failed to load order detail")
		}
		details.Customer = detail
	case models.OrderKindStore:
		detail, err := s.orderRepo.FindStoreDetail(ctx, orderID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("Store detail lookup failed", zap.Error(err))
			return nil, NewTransactionError("Failed to load order detail")
		}
		details.Store = detail
	}

	return details, nil
}
