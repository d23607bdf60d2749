package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saicherry93479/little-loopies-fulfillment/models"
	aws_pkg "github.com/saicherry93479/little-loopies-fulfillment/pkg/aws"
	"github.com/saicherry93479/little-loopies-fulfillment/repository"
)

// StatusService advances orders through the status machine. Every transition
// appends a history entry in the same transaction; a delivered transition
// additionally materializes store-local stock for the assigned store.
type StatusService interface {
	UpdateStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateStatusRequest, actorID string) (*models.Order, *ServiceError)
	GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, *ServiceError)
}

type statusServiceImpl struct {
	orderRepo   repository.OrderRepository
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	logger      *zap.Logger
}

// NewStatusService creates a new StatusService. snsClient may be nil.
func NewStatusService(orderRepo repository.OrderRepository, snsClient aws_pkg.SNSPublisher, snsTopicArn string, logger *zap.Logger) StatusService {
	return &statusServiceImpl{
		orderRepo:   orderRepo,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		logger:      logger,
	}
}

func (s *statusServiceImpl) UpdateStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateStatusRequest, actorID string) (*models.Order, *ServiceError) {
	if !models.IsValidStatus(req.Status) {
		return nil, NewValidationError("Unknown status: " + req.Status)
	}

	order, err := s.orderRepo.ApplyStatus(ctx, orderID, req.Status, req.Note, actorID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, NewNotFoundError("Order not found")
		case errors.Is(err, repository.ErrInvalidTransition):
			return nil, NewInvalidTransitionError(err.Error())
		default:
			s.logger.Error("Status transition failed",
				zap.String("order_id", orderID.String()),
				zap.String("status", req.Status),
				zap.Error(err),
			)
			return nil, NewTransactionError("Failed to update order status")
		}
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("status", req.Status),
		zap.String("actor_id", actorID),
	)

	s.publishStatusEvent(ctx, models.OrderStatusChangedEvent{
		EventType: "order_status_changed",
		OrderID:   orderID.String(),
		Status:    req.Status,
		ActorID:   actorID,
		Timestamp: time.Now(),
	})

	return order, nil
}

func (s *statusServiceImpl) GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, *ServiceError) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Order not found")
		}
		s.logger.Error("Order lookup failed", zap.Error(err))
		return nil, NewTransactionError("Failed to load order")
	}

	history, err := s.orderRepo.ListStatusHistory(ctx, orderID)
	if err != nil {
		s.logger.Error("History lookup failed", zap.Error(err))
		return nil, NewTransactionError("Failed to load order history")
	}
	return history, nil
}

func (s *statusServiceImpl) publishStatusEvent(ctx context.Context, event models.OrderStatusChangedEvent) {
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
