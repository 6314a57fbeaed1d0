package repository

import (
	"context"

	"coderr/internal/domain/entity"

	"github.com/pkg/errors"
)

// Domain-specific errors for offer persistence.
var (
	// ErrOfferNotFound is returned when an offer is not found.
	ErrOfferNotFound = errors.New("offer not found")
	// ErrOfferDetailNotFound is returned when an offer tier is not found.
	ErrOfferDetailNotFound = errors.New("offer detail not found")
	// ErrDuplicateOfferType is returned when an offer would carry the same tier twice.
	ErrDuplicateOfferType = errors.New("offer type already exists on offer")
)

// OfferOrdering is a sort key for offer lists. A leading '-' sorts descending.
type OfferOrdering string

const (
	OfferOrderUpdatedAt     OfferOrdering = "updated_at"
	OfferOrderUpdatedAtDesc OfferOrdering = "-updated_at"
	OfferOrderMinPrice      OfferOrdering = "min_price"
	OfferOrderMinPriceDesc  OfferOrdering = "-min_price"
)

// IsValid checks if the ordering is supported.
func (o OfferOrdering) IsValid() bool {
	switch o {
	case OfferOrderUpdatedAt, OfferOrderUpdatedAtDesc, OfferOrderMinPrice, OfferOrderMinPriceDesc:
		return true
	default:
		return false
	}
}

// OfferFilter narrows offer lists. Nil and empty values do not filter.
type OfferFilter struct {
	CreatorID       *int64
	MinPrice        *int // Inclusive lower bound on the cheapest tier.
	MaxDeliveryTime *int // Inclusive upper bound on the fastest tier.
	Search          string
	Ordering        OfferOrdering
}

// OfferRepository defines the persistence operations of the offer aggregate.
// Offers are always returned with their tiers loaded.
type OfferRepository interface {
	// Create persists the offer and its tiers, filling in generated ids and timestamps.
	Create(ctx context.Context, offer *entity.Offer) error

	// FindByID retrieves an offer with its tiers.
	FindByID(ctx context.Context, id int64) (*entity.Offer, error)

	// Update saves the offer scalars and every loaded tier, and advances updated_at.
	Update(ctx context.Context, offer *entity.Offer) error

	// Delete removes the offer; its tiers cascade.
	Delete(ctx context.Context, id int64) error

	// List returns a filtered, ordered page of offers with owners loaded, and the total count.
	List(ctx context.Context, filter OfferFilter, page PageRequest) ([]*entity.Offer, int64, error)

	// FindDetailByID retrieves a single tier with its parent offer.
	FindDetailByID(ctx context.Context, id int64) (*entity.OfferDetail, error)

	// Count counts all offers.
	Count(ctx context.Context) (int64, error)
}
