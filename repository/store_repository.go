package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saicherry93479/little-loopies-fulfillment/models"
)

// StoreRepository defines data-access operations for stores, assignments and
// store eligibility.
type StoreRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindByOperator(ctx context.Context, operatorID string) (*models.Store, error)
	FindEligibleStores(ctx context.Context, orderID uuid.UUID) ([]models.Store, error)
	AssignStore(ctx context.Context, orderID, storeID uuid.UUID) (*models.StoreAssignment, error)
	FindActiveAssignment(ctx context.Context, orderID uuid.UUID) (*models.StoreAssignment, error)
}

// GormStoreRepository implements StoreRepository using GORM.
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository.
func NewGormStoreRepository(db *gorm.DB) StoreRepository {
	return &GormStoreRepository{db: db}
}

func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *GormStoreRepository) FindByOperator(ctx context.Context, operatorID string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("operator_id = ? AND is_active = ?", operatorID, true).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// eligibleStoresQuery selects active stores whose active store-local stock
// covers every distinct product on the order at the required quantity. The
// HAVING clause enforces all-or-nothing coverage: a store satisfying only a
// subset of the order's products is excluded.
const eligibleStoresQuery = `
SELECT s.*
FROM stores s
JOIN store_inventories si
  ON si.store_id = s.id
 AND si.is_active = true
JOIN (
	SELECT product_id, SUM(quantity) AS required_qty
	FROM order_line_items
	WHERE order_id = ?
	GROUP BY product_id
) req
  ON req.product_id = si.product_id
 AND si.stock >= req.required_qty
WHERE s.is_active = true
GROUP BY s.id
HAVING COUNT(DISTINCT si.product_id) = (
	SELECT COUNT(DISTINCT product_id)
	FROM order_line_items
	WHERE order_id = ?
)`

func (r *GormStoreRepository) FindEligibleStores(ctx context.Context, orderID uuid.UUID) ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.WithContext(ctx).
		Raw(eligibleStoresQuery, orderID, orderID).
		Scan(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// AssignStore replaces the order's fulfillment assignment: any active
// assignment is deactivated, a new one created and the order marked as
// store-assigned, all in one transaction.
func (r *GormStoreRepository) AssignStore(ctx context.Context, orderID, storeID uuid.UUID) (*models.StoreAssignment, error) {
	assignment := models.StoreAssignment{
		OrderID:  orderID,
		StoreID:  storeID,
		IsActive: true,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.StoreAssignment{}).
			Where("order_id = ? AND is_active = ?", orderID, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			Update("assigned_to", models.AssignedToStore).Error
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *GormStoreRepository) FindActiveAssignment(ctx context.Context, orderID uuid.UUID) (*models.StoreAssignment, error) {
	var assignment models.StoreAssignment
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND is_active = ?", orderID, true).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}
