package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Store is a physical fulfillment store. Address and opening hours are stored
// as JSON strings and parsed into StoreAddress/StoreTimings on read.
type Store struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(128);not null" json:"name"`
	Email      string    `gorm:"type:varchar(256)" json:"email,omitempty"`
	Mobile     string    `gorm:"type:varchar(16)" json:"mobile,omitempty"`
	OperatorID string    `gorm:"type:varchar(128);index" json:"operator_id,omitempty"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	// Address/Timings stored as JSON strings for simplicity
	AddressJSON string    `gorm:"type:jsonb" json:"-"`
	TimingsJSON string    `gorm:"type:jsonb" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// StoreAddress is the parsed form of Store.AddressJSON.
type StoreAddress struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Landmark string `json:"landmark,omitempty"`
}

// StoreTimings is the parsed form of Store.TimingsJSON.
type StoreTimings struct {
	OpensAt  string   `json:"opens_at"`
	ClosesAt string   `json:"closes_at"`
	Holidays []string `json:"holidays,omitempty"`
}

// StoreCandidate is one eligible fulfillment store returned by the
// eligibility resolver, with address/timings already parsed.
type StoreCandidate struct {
	ID      uuid.UUID     `json:"id"`
	Name    string        `json:"name"`
	Email   string        `json:"email,omitempty"`
	Mobile  string        `json:"mobile,omitempty"`
	Address *StoreAddress `json:"address,omitempty"`
	Timings *StoreTimings `json:"timings,omitempty"`
}

// Candidate parses the store's JSON blobs into a StoreCandidate. Malformed
// blobs degrade to nil rather than failing the lookup.
func (s *Store) Candidate() StoreCandidate {
	c := StoreCandidate{
		ID:     s.ID,
		Name:   s.Name,
		Email:  s.Email,
		Mobile: s.Mobile,
	}
	if s.AddressJSON != "" {
		var addr StoreAddress
		if err := json.Unmarshal([]byte(s.AddressJSON), &addr); err == nil {
			c.Address = &addr
		}
	}
	if s.TimingsJSON != "" {
		var t StoreTimings
		if err := json.Unmarshal([]byte(s.TimingsJSON), &t); err == nil {
			c.Timings = &t
		}
	}
	return c
}

// StoreAssignment links an order to the fulfillment store expected to deliver
// it. At most one active assignment exists per order; replacing an assignment
// deactivates the previous row instead of deleting it.
type StoreAssignment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index" json:"store_id"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// StoreInventory is store-local stock, distinct from the company's global
// product stock. Rows are created lazily the first time a delivered transition
// materializes inventory at a store.
type StoreInventory struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_store_product" json:"store_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_store_product" json:"product_id"`
	Stock     int       `gorm:"not null" json:"stock"`
	Price     float64   `gorm:"not null" json:"price"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// AssignStoreRequest is the payload for POST /orders/:id/assign-store.
type AssignStoreRequest struct {
	StoreID uuid.UUID `json:"store_id" binding:"required"`
}
