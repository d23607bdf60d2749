package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/saicherry93479/little-loopies-fulfillment/models"
	"github.com/saicherry93479/little-loopies-fulfillment/repository"
)

func customerOrderGraph() *repository.OrderGraph {
	orderID := uuid.New()
	return &repository.OrderGraph{
		Order: &models.Order{
			ID:          orderID,
			Kind:        models.OrderKindCustomer,
			Status:      models.StatusOrdered,
			TotalAmount: 350,
			AssignedTo:  models.AssignedToCompany,
		},
		LineItems: []models.OrderLineItem{
			{ID: uuid.New(), OrderID: orderID, ProductID: uuid.New(), ProductName: "Onesie", Quantity: 2, UnitPrice: 100, TotalPrice: 200},
			{ID: uuid.New(), OrderID: orderID, ProductID: uuid.New(), ProductName: "Bib", Quantity: 3, UnitPrice: 50, TotalPrice: 150},
		},
		CustomerDetail: &models.CustomerOrderDetail{
			ID: uuid.New(), OrderID: orderID,
			Name: "Asha", Email: "asha@x.com", Mobile: "9876543210",
			Street: "12 MG Rd", City: "Bengaluru", State: "Karnataka", Pincode: "560001", Phone: "9876543210",
			PaymentStatus: models.PaymentStatusPending, PaymentMethod: "cod",
		},
		TrackingLink: &models.TrackingLink{
			ID: uuid.New(), OrderID: orderID, Token: uuid.NewString(),
			IssuedTo: "asha@x.com", MaxAccess: 100, IsActive: true,
		},
		History: &models.OrderStatusHistory{ID: uuid.New(), OrderID: orderID, Status: models.StatusOrdered},
		Invoice: &models.Invoice{
			ID: uuid.New(), OrderID: orderID,
			PaymentMethod: "cod", Amount: 350, Status: models.InvoiceStatusPending,
		},
		DecrementStock: true,
	}
}

func expectInsertReturningID(mock sqlmock.Sqlmock, table string, ids ...uuid.UUID) {
	rows := sqlmock.NewRows([]string{"id"})
	for _, id := range ids {
		rows.AddRow(id)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "` + table + `"`)).WillReturnRows(rows)
}

func TestCreateOrderGraph_CustomerOrder(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)
	graph := customerOrderGraph()

	mock.ExpectBegin()
	expectInsertReturningID(mock, "orders", graph.Order.ID)
	expectInsertReturningID(mock, "tracking_links", graph.TrackingLink.ID)
	expectInsertReturningID(mock, "customer_order_details", graph.CustomerDetail.ID)
	expectInsertReturningID(mock, "order_line_items", graph.LineItems[0].ID, graph.LineItems[1].ID)
	expectInsertReturningID(mock, "order_status_histories", graph.History.ID)
	expectInsertReturningID(mock, "invoices", graph.Invoice.ID)
	// One conditional decrement per line item.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CreateOrderGraph(context.Background(), graph)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderGraph_InsufficientStockRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)
	graph := customerOrderGraph()

	mock.ExpectBegin()
	expectInsertReturningID(mock, "orders", graph.Order.ID)
	expectInsertReturningID(mock, "tracking_links", graph.TrackingLink.ID)
	expectInsertReturningID(mock, "customer_order_details", graph.CustomerDetail.ID)
	expectInsertReturningID(mock, "order_line_items", graph.LineItems[0].ID, graph.LineItems[1].ID)
	expectInsertReturningID(mock, "order_status_histories", graph.History.ID)
	expectInsertReturningID(mock, "invoices", graph.Invoice.ID)
	// The guarded decrement matches no row: everything rolls back, nothing
	// partial persists.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "products"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.CreateOrderGraph(context.Background(), graph)
	assert.True(t, errors.Is(err, repository.ErrInsufficientStock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderGraph_StoreOrderSkipsDecrement(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	orderID := uuid.New()
	graph := &repository.OrderGraph{
		Order: &models.Order{ID: orderID, Kind: models.OrderKindStore, Status: models.StatusOrdered, TotalAmount: 200},
		LineItems: []models.OrderLineItem{
			{ID: uuid.New(), OrderID: orderID, ProductID: uuid.New(), ProductName: "Onesie", Quantity: 2, UnitPrice: 100, TotalPrice: 200},
		},
		StoreDetail:  &models.StoreOrderDetail{ID: uuid.New(), OrderID: orderID, StoreID: uuid.New()},
		TrackingLink: &models.TrackingLink{ID: uuid.New(), OrderID: orderID, Token: uuid.NewString(), MaxAccess: 100, IsActive: true},
		History:      &models.OrderStatusHistory{ID: uuid.New(), OrderID: orderID, Status: models.StatusOrdered},
		Invoice:      &models.Invoice{ID: uuid.New(), OrderID: orderID, PaymentMethod: "credit", Amount: 200, Status: models.InvoiceStatusPending},
	}

	mock.ExpectBegin()
	expectInsertReturningID(mock, "orders", graph.Order.ID)
	expectInsertReturningID(mock, "tracking_links", graph.TrackingLink.ID)
	expectInsertReturningID(mock, "store_order_details", graph.StoreDetail.ID)
	expectInsertReturningID(mock, "order_line_items", graph.LineItems[0].ID)
	expectInsertReturningID(mock, "order_status_histories", graph.History.ID)
	expectInsertReturningID(mock, "invoices", graph.Invoice.ID)
	mock.ExpectCommit()

	err := repo.CreateOrderGraph(context.Background(), graph)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func orderRows(id uuid.UUID, kind, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "kind", "status", "total_amount", "assigned_to"}).
		AddRow(id, kind, status, 350.0, models.AssignedToCompany)
}

func TestApplyStatus_AppendsHistory(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`) + `.* FOR UPDATE`).
		WillReturnRows(orderRows(orderID, models.OrderKindCustomer, models.StatusOrdered))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectInsertReturningID(mock, "order_status_histories", uuid.New())
	mock.ExpectCommit()

	order, err := repo.ApplyStatus(context.Background(), orderID, models.StatusProcessing, "packing", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyStatus_InvalidTransitionRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`) + `.* FOR UPDATE`).
		WillReturnRows(orderRows(orderID, models.OrderKindCustomer, models.StatusDelivered))
	mock.ExpectRollback()

	_, err := repo.ApplyStatus(context.Background(), orderID, models.StatusProcessing, "", "admin-1")
	assert.True(t, errors.Is(err, repository.ErrInvalidTransition))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyStatus_OrderNotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`) + `.* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectRollback()

	_, err := repo.ApplyStatus(context.Background(), uuid.New(), models.StatusProcessing, "", "admin-1")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestApplyStatus_DeliveredMaterializesStoreStock(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)
	orderID := uuid.New()
	storeID := uuid.New()
	productID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`) + `.* FOR UPDATE`).
		WillReturnRows(orderRows(orderID, models.OrderKindCustomer, models.StatusShipped))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectInsertReturningID(mock, "order_status_histories", uuid.New())
	// Fulfillment store resolves to the active assignment.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "store_assignments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "store_id", "is_active"}).
			AddRow(uuid.New(), orderID, storeID, true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "order_line_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "unit_price"}).
			AddRow(uuid.New(), orderID, productID, 5, 100.0))
	// Upsert of store-local stock.
	expectInsertReturningID(mock, "store_inventories", uuid.New())
	mock.ExpectCommit()

	order, err := repo.ApplyStatus(context.Background(), orderID, models.StatusDelivered, "", "driver-7")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, order.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyStatus_DeliveredWithoutStoreSkipsMaterialization(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)
	orderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`) + `.* FOR UPDATE`).
		WillReturnRows(orderRows(orderID, models.OrderKindCustomer, models.StatusShipped))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectInsertReturningID(mock, "order_status_histories", uuid.New())
	// No assignment and no store detail: delivery completes without touching
	// store inventory.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "store_assignments"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "store_order_details"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectCommit()

	_, err := repo.ApplyStatus(context.Background(), orderID, models.StatusDelivered, "", "driver-7")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
