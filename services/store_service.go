package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saicherry93479/little-loopies-fulfillment/models"
	"github.com/saicherry93479/little-loopies-fulfillment/repository"
)

// StoreService resolves which fulfillment stores can satisfy an order and
// manages the order's store assignment.
type StoreService interface {
	FindEligibleStores(ctx context.Context, orderID uuid.UUID) ([]models.StoreCandidate, *ServiceError)
	AssignStore(ctx context.Context, orderID, storeID uuid.UUID) (*models.StoreAssignment, *ServiceError)
}

type storeServiceImpl struct {
	storeRepo repository.StoreRepository
	orderRepo repository.OrderRepository
	logger    *zap.Logger
}

// NewStoreService creates a new StoreService.
func NewStoreService(storeRepo repository.StoreRepository, orderRepo repository.OrderRepository, logger *zap.Logger) StoreService {
	return &storeServiceImpl{
		storeRepo: storeRepo,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// FindEligibleStores returns the stores whose local stock covers every line
// item of the order simultaneously. Zero candidates is a normal result, not
// an error.
func (s *storeServiceImpl) FindEligibleStores(ctx context.Context, orderID uuid.UUID) ([]models.StoreCandidate, *ServiceError) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Order not found")
		}
		s.logger.Error("Order lookup failed", zap.Error(err))
		return nil, NewTransactionError("Failed to load order")
	}

	stores, err := s.storeRepo.FindEligibleStores(ctx, orderID)
	if err != nil {
		s.logger.Error("Eligibility query failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		return nil, NewTransactionError("Failed to compute eligible stores")
	}

	candidates := make([]models.StoreCandidate, 0, len(stores))
	for i := range stores {
		candidates = append(candidates, stores[i].Candidate())
	}

	s.logger.Info("Eligible stores resolved",
		zap.String("order_id", orderID.String()),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// AssignStore makes storeID the order's single active fulfillment assignment,
// replacing any previous one.
func (s *storeServiceImpl) AssignStore(ctx context.Context, orderID, storeID uuid.UUID) (*models.StoreAssignment, *ServiceError) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Order not found")
		}
		s.logger.Error("Order lookup failed", zap.Error(err))
		return nil, NewTransactionError("Failed to load order")
	}
	store, err := s.storeRepo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Store not found")
		}
		s.logger.Error("Store lookup failed", zap.Error(err))
		return nil, NewTransactionError("Failed to load store")
	}
	if !store.IsActive {
		return nil, NewValidationError("Store is not active")
	}

	// Re-assigning the same store is a no-op: the existing active assignment
	// is returned instead of deactivating and recreating it.
	current, err := s.storeRepo.FindActiveAssignment(ctx, orderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Assignment lookup failed", zap.Error(err))
		return nil, NewTransactionError("Failed to load assignment")
	}
	if current != nil && current.StoreID == storeID {
		return current, nil
	}

	assignment, err := s.storeRepo.AssignStore(ctx, orderID, storeID)
	if err != nil {
		s.logger.Error("Store assignment failed", zap.Error(err))
		return nil, NewTransactionError("Failed to assign store")
	}

	s.logger.Info("Store assigned to order",
		zap.String("order_id", orderID.String()),
		zap.String("store_id", storeID.String()),
	)
	return assignment, nil
}
