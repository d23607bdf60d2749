package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/saicherry93479/little-loopies-fulfillment/models"
)

// Tracking link lifecycle errors. ErrLinkInvalid deliberately covers not
// found, inactive and expired alike so callers cannot probe which one applied.
var (
	ErrLinkInvalid   = errors.New("tracking link invalid or expired")
	ErrLinkForbidden = errors.New("tracking link identity mismatch")
	ErrLinkExhausted = errors.New("tracking link access limit reached")
)

// TrackingRepository defines data-access operations for tracking links.
type TrackingRepository interface {
	Create(ctx context.Context, link *models.TrackingLink) error
	ConsumeAccess(ctx context.Context, token, expectedIssuedTo string) (*models.TrackingLink, error)
}

// GormTrackingRepository implements TrackingRepository using GORM.
type GormTrackingRepository struct {
	db *gorm.DB
}

// NewGormTrackingRepository creates a new GormTrackingRepository.
func NewGormTrackingRepository(db *gorm.DB) TrackingRepository {
	return &GormTrackingRepository{db: db}
}

func (r *GormTrackingRepository) Create(ctx context.Context, link *models.TrackingLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// ConsumeAccess validates a link and spends one access, atomically with
// respect to concurrent validations of the same token: the row is locked for
// the duration of the check-and-increment, so two requests one below the
// ceiling can never both succeed. Exhaustion deactivates the link and that
// deactivation commits even though the call fails.
func (r *GormTrackingRepository) ConsumeAccess(ctx context.Context, token, expectedIssuedTo string) (*models.TrackingLink, error) {
	var link models.TrackingLink
	var outcome error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token = ?", token).
			First(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outcome = ErrLinkInvalid
				return nil
			}
			return err
		}
		if !link.IsActive || link.Expired(time.Now()) {
			outcome = ErrLinkInvalid
			return nil
		}
		if expectedIssuedTo != "" && !strings.EqualFold(expectedIssuedTo, link.IssuedTo) {
			outcome = ErrLinkForbidden
			return nil
		}
		if link.AccessCount >= link.MaxAccess {
			// Commit the deactivation, then fail the validation.
			if err := tx.Model(&models.TrackingLink{}).
				Where("id = ?", link.ID).
				Update("is_active", false).Error; err != nil {
				return err
			}
			link.IsActive = false
			outcome = ErrLinkExhausted
			return nil
		}
		if err := tx.Model(&models.TrackingLink{}).
			Where("id = ?", link.ID).
			Update("access_count", gorm.Expr("access_count + 1")).Error; err != nil {
			return err
		}
		link.AccessCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		return nil, outcome
	}
	return &link, nil
}
