package models

import (
	"time"

	"github.com/google/uuid"
)

// Tracking link defaults.
const (
	TrackingDefaultExpiryDays = 30
	TrackingDefaultMaxAccess  = 100
)

// TrackingLink is an opaque, expiring, access-counted credential bound to an
// order. AccessCount only ever grows; once it reaches MaxAccess the link is
// deactivated and never serves again.
type TrackingLink struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Token       string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"token"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	IssuedTo    string    `gorm:"type:varchar(256)" json:"issued_to,omitempty"`
	IssuedBy    string    `gorm:"type:varchar(128)" json:"issued_by,omitempty"`
	ExpiresAt   time.Time `gorm:"not null" json:"expires_at"`
	AccessCount int       `gorm:"not null;default:0" json:"access_count"`
	MaxAccess   int       `gorm:"not null;default:100" json:"max_access"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Expired reports whether the link's expiry has passed as of now.
func (l *TrackingLink) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

// IssueTrackingLinkRequest is the payload for POST /orders/:id/tracking-links
// (operator-issued links).
type IssueTrackingLinkRequest struct {
	IssuedTo   string `json:"issued_to" binding:"required"`
	ExpiryDays int    `json:"expiry_days" binding:"gte=0"`
	MaxAccess  int    `json:"max_access" binding:"gte=0"`
}
