package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/saicherry93479/little-loopies-fulfillment/models"
)

// ErrInsufficientStock is returned when a conditional stock decrement matches
// no row, i.e. the product does not exist or its stock would go negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// AdjustProductStock applies a signed delta to a product's global stock inside
// the caller's transaction. Negative deltas are conditional on sufficient
// stock so concurrent orders can never drive the counter below zero.
func AdjustProductStock(tx *gorm.DB, productID uuid.UUID, delta int) error {
	query := tx.Model(&models.Product{}).Where("id = ?", productID)
	if delta < 0 {
		query = query.Where("stock >= ?", -delta)
	}
	res := query.Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %s", ErrInsufficientStock, productID)
	}
	return nil
}

// UpsertStoreStock materializes store-local inventory inside the caller's
// transaction: the row is created on first delivery to the store, otherwise
// its stock is incremented and the price refreshed.
func UpsertStoreStock(tx *gorm.DB, storeID, productID uuid.UUID, quantity int, price float64) error {
	inv := models.StoreInventory{
		StoreID:   storeID,
		ProductID: productID,
		Stock:     quantity,
		Price:     price,
		IsActive:  true,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "store_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"stock":     gorm.Expr("store_inventories.stock + EXCLUDED.stock"),
			"price":     gorm.Expr("EXCLUDED.price"),
			"is_active": true,
		}),
	}).Create(&inv).Error
}

// AdjustStoreStock applies a signed delta to an existing store-local stock
// row inside the caller's transaction, with the same non-negative guarantee
// as AdjustProductStock.
func AdjustStoreStock(tx *gorm.DB, storeID, productID uuid.UUID, delta int) error {
	query := tx.Model(&models.StoreInventory{}).
		Where("store_id = ? AND product_id = ?", storeID, productID)
	if delta < 0 {
		query = query.Where("stock >= ?", -delta)
	}
	res := query.Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: store %s product %s", ErrInsufficientStock, storeID, productID)
	}
	return nil
}
