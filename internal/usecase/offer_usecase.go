package usecase

import (
	"context"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/policy"
	"coderr/internal/domain/repository"
	"coderr/internal/domain/service"
)

// OfferUsecase defines the operations on the offer aggregate.
type OfferUsecase interface {
	CreateOffer(ctx context.Context, caller *policy.Caller, input *CreateOfferInput) (*entity.Offer, error)
	UpdateOffer(ctx context.Context, caller *policy.Caller, offerID int64, input *UpdateOfferInput) (*entity.Offer, error)
	// AuthorizeOfferUpdate reports the 401/403/404 UpdateOffer would return for this caller, nil otherwise.
	AuthorizeOfferUpdate(ctx context.Context, caller *policy.Caller, offerID int64) error
	DeleteOffer(ctx context.Context, caller *policy.Caller, offerID int64) error
	ListOffers(ctx context.Context, caller *policy.Caller, filter repository.OfferFilter, page repository.PageRequest) (*PageResult[*entity.Offer], error)
	GetOffer(ctx context.Context, caller *policy.Caller, offerID int64) (*entity.Offer, error)
	GetOfferDetail(ctx context.Context, caller *policy.Caller, detailID int64) (*entity.OfferDetail, error)
	// GetShareCode renders a PNG QR code for the public page of an offer.
	GetShareCode(ctx context.Context, caller *policy.Caller, offerID int64) ([]byte, error)
}

// OfferDetailInput describes one tier of a new offer.
type OfferDetailInput struct {
	Title              string
	Revisions          int
	DeliveryTimeInDays int
	Price              int
	Features           []string
	OfferType          entity.OfferType
}

// CreateOfferInput defines the data required to publish an offer.
type CreateOfferInput struct {
	Title       string
	Description string
	Image       *service.Upload
	Details     []OfferDetailInput
}

// UpdateOfferInput is a partial offer update. Nil fields are left unchanged.
type UpdateOfferInput struct {
	Title       *string
	Description *string
	Image       *service.Upload
	ClearImage  bool
	Details     []entity.DetailPatch
}
