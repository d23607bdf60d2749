package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/saicherry93479/little-loopies-fulfillment/models"
)

// ErrInvalidTransition is returned by ApplyStatus when the requested status is
// not reachable from the order's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// OrderGraph is everything written atomically when an order is created. The
// order and all child rows commit or roll back as one unit; nothing partial
// may persist.
type OrderGraph struct {
	Order          *models.Order
	LineItems      []models.OrderLineItem
	CustomerDetail *models.CustomerOrderDetail
	StoreDetail    *models.StoreOrderDetail
	TrackingLink   *models.TrackingLink
	History        *models.OrderStatusHistory
	Invoice        *models.Invoice
	// DecrementStock applies the line item quantities against global product
	// stock (customer orders only).
	DecrementStock bool
}

// OrderRepository defines data-access operations for orders.
type OrderRepository interface {
	CreateOrderGraph(ctx context.Context, graph *OrderGraph) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindLineItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error)
	FindCustomerDetail(ctx context.Context, orderID uuid.UUID) (*models.CustomerOrderDetail, error)
	FindStoreDetail(ctx context.Context, orderID uuid.UUID) (*models.StoreOrderDetail, error)
	ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
	ApplyStatus(ctx context.Context, orderID uuid.UUID, status, note, actorID string) (*models.Order, error)
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) CreateOrderGraph(ctx context.Context, graph *OrderGraph) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(graph.Order).Error; err != nil {
			return err
		}
		if graph.TrackingLink != nil {
			if err := tx.Create(graph.TrackingLink).Error; err != nil {
				return err
			}
		}
		if graph.CustomerDetail != nil {
			if err := tx.Create(graph.CustomerDetail).Error; err != nil {
				return err
			}
		}
		if graph.StoreDetail != nil {
			if err := tx.Create(graph.StoreDetail).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&graph.LineItems).Error; err != nil {
			return err
		}
		if err := tx.Create(graph.History).Error; err != nil {
			return err
		}
		if err := tx.Create(graph.Invoice).Error; err != nil {
			return err
		}
		if graph.DecrementStock {
			for _, item := range graph.LineItems {
				if err := AdjustProductStock(tx, item.ProductID, -item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindLineItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error) {
	var items []models.OrderLineItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormOrderRepository) FindCustomerDetail(ctx context.Context, orderID uuid.UUID) (*models.CustomerOrderDetail, error) {
	var detail models.CustomerOrderDetail
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&detail).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *GormOrderRepository) FindStoreDetail(ctx context.Context, orderID uuid.UUID) (*models.StoreOrderDetail, error) {
	var detail models.StoreOrderDetail
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&detail).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListStatusHistory returns the audit trail in commit order, oldest first.
// Ties on created_at are broken by insertion order via the primary key.
func (r *GormOrderRepository) ListStatusHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	var history []models.OrderStatusHistory
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

// ApplyStatus performs one atomic status transition: the order row is locked
// so concurrent transitions on the same order serialize, the transition is
// checked against the allowed table, a history entry is appended, and a
// delivered transition materializes store-local stock for the assigned store.
// A status change is never recorded without its history entry.
func (r *GormOrderRepository) ApplyStatus(ctx context.Context, orderID uuid.UUID, status, note, actorID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}
		if !models.CanTransition(order.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
		}
		if err := tx.Model(&order).Update("status", status).Error; err != nil {
			return err
		}
		order.Status = status
		entry := models.OrderStatusHistory{
			OrderID: orderID,
			Status:  status,
			Note:    note,
			ActorID: actorID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		if status == models.StatusDelivered {
			return r.materializeStoreStock(tx, orderID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// materializeStoreStock upserts store-local stock for every line item on a
// delivered order. The fulfillment store is the active assignment when one
// exists, otherwise the ordering store of a store-kind order. Orders with
// neither deliver without materializing anything.
func (r *GormOrderRepository) materializeStoreStock(tx *gorm.DB, orderID uuid.UUID) error {
	storeID, ok, err := resolveFulfillmentStore(tx, orderID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var items []models.OrderLineItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return err
	}
	for _, item := range items {
		if err := UpsertStoreStock(tx, storeID, item.ProductID, item.Quantity, item.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

func resolveFulfillmentStore(tx *gorm.DB, orderID uuid.UUID) (uuid.UUID, bool, error) {
	var assignment models.StoreAssignment
	err := tx.Where("order_id = ? AND is_active = ?", orderID, true).
		First(&assignment).Error
	if err == nil {
		return assignment.StoreID, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, err
	}

	var detail models.StoreOrderDetail
	err = tx.Where("order_id = ?", orderID).First(&detail).Error
	if err == nil {
		return detail.StoreID, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, err
	}
	return uuid.Nil, false, nil
}
