package models

import (
	"time"

	"github.com/google/uuid"
)

// Order kinds.
const (
	OrderKindCustomer = "customer"
	OrderKindStore    = "store"
)

// Assignment targets: who is expected to fulfill the order.
const (
	AssignedToCompany = "company"
	AssignedToStore   = "store"
)

// Payment statuses for customer orders.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Invoice statuses.
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

// Order is the root record of the fulfillment workflow. TotalAmount is fixed
// at creation time as the sum of the line items' total prices and is never
// recomputed afterwards.
type Order struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Kind        string    `gorm:"type:varchar(16);not null" json:"kind"`
	Status      string    `gorm:"type:varchar(32);not null" json:"status"`
	TotalAmount float64   `gorm:"not null" json:"total_amount"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	AssignedTo  string    `gorm:"type:varchar(16);not null;default:'company'" json:"assigned_to"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderLineItem snapshots the product name and pricing at order time.
// TotalPrice is quantity * unit price minus discount, checked at creation and
// never re-derived.
type OrderLineItem struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string    `gorm:"type:varchar(256);not null" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price"`
	Discount    float64   `json:"discount,omitempty"`
	TotalPrice  float64   `gorm:"not null" json:"total_price"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ShippingAddress is the structured customer shipping address. It is stored
// flattened on CustomerOrderDetail and validated at the API boundary before
// any transaction opens.
type ShippingAddress struct {
	Street   string `json:"street" binding:"required"`
	City     string `json:"city" binding:"required"`
	State    string `json:"state" binding:"required"`
	Pincode  string `json:"pincode" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Landmark string `json:"landmark,omitempty"`
}

// CustomerOrderDetail is the 1:1 detail record for customer-kind orders.
type CustomerOrderDetail struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	Name          string    `gorm:"type:varchar(128);not null" json:"name"`
	Email         string    `gorm:"type:varchar(256);not null" json:"email"`
	Mobile        string    `gorm:"type:varchar(16);not null" json:"mobile"`
	Street        string    `gorm:"type:varchar(256);not null" json:"street"`
	City          string    `gorm:"type:varchar(128);not null" json:"city"`
	State         string    `gorm:"type:varchar(128);not null" json:"state"`
	Pincode       string    `gorm:"type:varchar(16);not null" json:"pincode"`
	Phone         string    `gorm:"type:varchar(16);not null" json:"phone"`
	Landmark      string    `gorm:"type:varchar(256)" json:"landmark,omitempty"`
	PaymentStatus string    `gorm:"type:varchar(16);not null;default:'pending'" json:"payment_status"`
	PaymentMethod string    `gorm:"type:varchar(32);not null;default:'cod'" json:"payment_method"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Address returns the structured form of the stored shipping address.
func (d *CustomerOrderDetail) Address() ShippingAddress {
	return ShippingAddress{
		Street:   d.Street,
		City:     d.City,
		State:    d.State,
		Pincode:  d.Pincode,
		Phone:    d.Phone,
		Landmark: d.Landmark,
	}
}

// StoreOrderDetail is the 1:1 detail record for store-kind orders (a store
// restocking from the company). StoreID is the ordering store, not the
// fulfillment assignment.
type StoreOrderDetail struct {
	ID                   uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID              uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	StoreID              uuid.UUID  `gorm:"type:uuid;not null;index" json:"store_id"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date,omitempty"`
	PaymentTerms         string     `gorm:"type:varchar(64)" json:"payment_terms,omitempty"`
	CreditPeriodDays     int        `json:"credit_period_days,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// OrderStatusHistory is append-only: rows are never updated or deleted, and
// the order's current status always equals its most recent entry.
type OrderStatusHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	Status    string    `gorm:"type:varchar(32);not null" json:"status"`
	Note      string    `gorm:"type:text" json:"note,omitempty"`
	ActorID   string    `gorm:"type:varchar(128)" json:"actor_id,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Invoice belongs to exactly one order; its amount is the sum of the line
// items at creation time.
type Invoice struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	PaymentMethod string    `gorm:"type:varchar(32);not null" json:"payment_method"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Status        string    `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// LineItemInput is one requested line item on order creation.
type LineItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gte=1"`
	UnitPrice float64   `json:"unit_price" binding:"gte=0"`
	Discount  float64   `json:"discount" binding:"gte=0"`
}

// TotalPrice is the caller-supplied line total used for the order amount.
func (li *LineItemInput) TotalPrice() float64 {
	return float64(li.Quantity)*li.UnitPrice - li.Discount
}

// CreateOrderRequest is the payload for POST /orders.
type CreateOrderRequest struct {
	Kind            string           `json:"kind" binding:"required,oneof=customer store"`
	LineItems       []LineItemInput  `json:"line_items" binding:"required,min=1,dive"`
	Notes           string           `json:"notes,omitempty"`
	CustomerName    string           `json:"customer_name,omitempty"`
	CustomerEmail   string           `json:"customer_email,omitempty"`
	CustomerMobile  string           `json:"customer_mobile,omitempty"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
	// Store orders only, ignored for customer orders.
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date,omitempty"`
	PaymentTerms         string     `json:"payment_terms,omitempty"`
	CreditPeriodDays     int        `json:"credit_period_days,omitempty"`
}

// CreateOrderResponse is returned on successful order creation. Notified
// reports whether the best-effort confirmation email went out; it never
// affects the order itself.
type CreateOrderResponse struct {
	OrderID       uuid.UUID `json:"order_id"`
	TotalAmount   float64   `json:"total_amount"`
	TrackingToken string    `json:"tracking_token,omitempty"`
	TrackingURL   string    `json:"tracking_url,omitempty"`
	Notified      bool      `json:"notified"`
}

// UpdateStatusRequest is the payload for PATCH /orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note,omitempty"`
}

// OrderDetails is the read model returned to tracking-link holders. Exactly
// one of Customer/Store is set, matching the order's kind.
type OrderDetails struct {
	Order     Order                `json:"order"`
	LineItems []OrderLineItem      `json:"line_items"`
	Customer  *CustomerOrderDetail `json:"customer,omitempty"`
	Store     *StoreOrderDetail    `json:"store,omitempty"`
	History   []OrderStatusHistory `json:"history"`
}
