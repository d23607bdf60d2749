package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saicherry93479/little-loopies-fulfillment/models"
	"github.com/saicherry93479/little-loopies-fulfillment/repository"
)

// TrackingService issues and validates the opaque, expiring, access-counted
// tracking credentials bound to orders.
type TrackingService interface {
	Issue(ctx context.Context, orderID uuid.UUID, issuedTo, issuedBy string, expiryDays, maxAccess int) (*models.TrackingLink, *ServiceError)
	Validate(ctx context.Context, token, expectedIssuedTo string) (*models.OrderDetails, *ServiceError)
}

type trackingServiceImpl struct {
	trackingRepo repository.TrackingRepository
	orderRepo    repository.OrderRepository
	orderService OrderService
	logger       *zap.Logger
}

// NewTrackingService creates a new TrackingService.
func NewTrackingService(trackingRepo repository.TrackingRepository, orderRepo repository.OrderRepository, orderService OrderService, logger *zap.Logger) TrackingService {
	return &trackingServiceImpl{
		trackingRepo: trackingRepo,
		orderRepo:    orderRepo,
		orderService: orderService,
		logger:       logger,
	}
}

// Issue mints a new tracking link for an existing order. Zero expiryDays or
// maxAccess fall back to the 30-day / 100-access defaults.
func (s *trackingServiceImpl) Issue(ctx context.Context, orderID uuid.UUID, issuedTo, issuedBy string, expiryDays, maxAccess int) (*models.TrackingLink, *ServiceError) {
	if issuedTo == "" {
		return nil, NewValidationError("issued_to is required")
	}
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Order not found")
		}
		s.logger.Error("Order lookup failed", zap.Error(err))
		return nil, NewTransactionError("Failed to load order")
	}

	if expiryDays <= 0 {
		expiryDays = models.TrackingDefaultExpiryDays
	}
	if maxAccess <= 0 {
		maxAccess = models.TrackingDefaultMaxAccess
	}

	link := &models.TrackingLink{
		ID:        uuid.New(),
		Token:     uuid.NewString(),
		OrderID:   orderID,
		IssuedTo:  issuedTo,
		IssuedBy:  issuedBy,
		ExpiresAt: time.Now().AddDate(0, 0, expiryDays),
		MaxAccess: maxAccess,
		IsActive:  true,
	}
	if err := s.trackingRepo.Create(ctx, link); err != nil {
		s.logger.Error("Tracking link creation failed", zap.Error(err))
		return nil, NewTransactionError("Failed to issue tracking link")
	}

	s.logger.Info("Tracking link issued",
		zap.String("order_id", orderID.String()),
		zap.String("issued_by", issuedBy),
	)
	return link, nil
}

// Validate spends one access on the link and returns the bound order's
// details. Missing, inactive and expired links all fail identically so the
// token space cannot be probed.
func (s *trackingServiceImpl) Validate(ctx context.Context, token, expectedIssuedTo string) (*models.OrderDetails, *ServiceError) {
	link, err := s.trackingRepo.ConsumeAccess(ctx, token, expectedIssuedTo)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLinkInvalid):
			return nil, NewInvalidOrExpiredError()
		case errors.Is(err, repository.ErrLinkForbidden):
			return nil, NewUnauthorizedError("Tracking link was issued to a different recipient")
		case errors.Is(err, repository.ErrLinkExhausted):
			return nil, NewAccessExceededError()
		default:
			s.logger.Error("Tracking validation failed", zap.Error(err))
			return nil, NewTransactionError("Failed to validate tracking link")
		}
	}

	details, svcErr := s.orderService.GetOrderDetails(ctx, link.OrderID)
	if svcErr != nil {
		return nil, svcErr
	}
	return details, nil
}
