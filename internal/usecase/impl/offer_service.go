package impl

import (
	"context"
	"log/slog"

	deliverycontext "coderr/internal/delivery/context"
	"coderr/internal/domain/constants"
	"coderr/internal/domain/entity"
	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/policy"
	"coderr/internal/domain/repository"
	"coderr/internal/domain/service"
	"coderr/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// offerService implements the OfferUsecase interface.
type offerService struct {
	txManager repository.TransactionManager
	offerRepo repository.OfferRepository
	storage   service.FileStorage
	qrcode    service.QRCodeService
	sanitizer service.TextSanitizer
	publisher service.EventPublisher
	logger    *slog.Logger
}

// OfferServiceParams holds dependencies for OfferService, injected by Fx.
type OfferServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	OfferRepo repository.OfferRepository
	Storage   service.FileStorage
	QRCode    service.QRCodeService
	Sanitizer service.TextSanitizer
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// NewOfferService is the constructor for offerService.
func NewOfferService(params OfferServiceParams) usecase.OfferUsecase {
	return &offerService{
		txManager: params.TxManager,
		offerRepo: params.OfferRepo,
		storage:   params.Storage,
		qrcode:    params.QRCode,
		sanitizer: params.Sanitizer,
		publisher: params.Publisher,
		logger:    params.Logger,
	}
}

func (srv *offerService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateOffer validates the full tier set and persists the offer with its tiers atomically.
func (srv *offerService) CreateOffer(ctx context.Context, caller *policy.Caller, input *usecase.CreateOfferInput) (*entity.Offer, error) {
	if err := policy.Check(policy.OfferCreate, caller, nil); err != nil {
		return nil, err
	}

	offer := &entity.Offer{
		UserID:      caller.UserID,
		Title:       srv.sanitizer.Sanitize(input.Title),
		Description: srv.sanitizer.Sanitize(input.Description),
		Details:     make([]*entity.OfferDetail, 0, len(input.Details)),
	}
	for _, d := range input.Details {
		offer.Details = append(offer.Details, &entity.OfferDetail{
			Title:              srv.sanitizer.Sanitize(d.Title),
			Revisions:          d.Revisions,
			DeliveryTimeInDays: d.DeliveryTimeInDays,
			Price:              d.Price,
			Features:           append([]string(nil), d.Features...),
			OfferType:          d.OfferType,
		})
	}

	if err := offer.ValidateForCreate(); err != nil {
		return nil, err
	}

	if input.Image != nil {
		key, err := saveUpload(ctx, srv.storage, constants.StorageFolderOffers, "image", input.Image)
		if err != nil {
			return nil, err
		}
		offer.Image = &key
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewOfferRepository().Create(ctx, offer); err != nil {
			if errors.Is(err, repository.ErrDuplicateOfferType) {
				return domainerrors.NewNonFieldError("Each offer_type (basic, standard, premium) must appear exactly once.")
			}

			return errors.Wrap(err, "failed to create offer")
		}

		return nil
	})
	if err != nil {
		deleteBlob(ctx, srv.storage, srv.log(ctx), offer.Image)

		return nil, errors.Wrap(err, "failed to create offer")
	}

	srv.log(ctx).Info("Offer created", slog.Int64("offerID", offer.ID), slog.Int64("userID", offer.UserID))
	publishAfterCommit(ctx, srv.publisher, srv.log(ctx), service.EventOfferCreated, map[string]any{
		"offer_id": offer.ID,
		"user_id":  offer.UserID,
	})

	return offer, nil
}

// UpdateOffer patches scalars and existing tiers; the tier set itself never changes.
func (srv *offerService) UpdateOffer(ctx context.Context, caller *policy.Caller, offerID int64, input *usecase.UpdateOfferInput) (*entity.Offer, error) {
	if err := policy.Check(policy.OfferUpdate, caller, nil); err != nil {
		return nil, err
	}

	current, err := srv.ownedOffer(ctx, caller, offerID)
	if err != nil {
		return nil, err
	}

	if input.Image != nil && input.ClearImage {
		return nil, domainerrors.NewValidationError("image", "Cannot upload and clear the image at once.")
	}
	// Validate against the current state before touching storage.
	if err := srv.patch(current, input, nil); err != nil {
		return nil, err
	}

	var newKey *string
	if input.Image != nil {
		key, err := saveUpload(ctx, srv.storage, constants.StorageFolderOffers, "image", input.Image)
		if err != nil {
			return nil, err
		}
		newKey = &key
	}

	var (
		updated *entity.Offer
		oldKey  *string
	)
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		offerRepo := repoFactory.NewOfferRepository()

		offer, err := offerRepo.FindByID(ctx, offerID)
		if err != nil {
			return notFound(err, repository.ErrOfferNotFound, "offer not found")
		}

		if input.Image != nil || input.ClearImage {
			oldKey = offer.Image
		}
		if err := srv.patch(offer, input, newKey); err != nil {
			return err
		}

		if err := offerRepo.Update(ctx, offer); err != nil {
			return errors.Wrap(err, "failed to save offer")
		}
		updated = offer

		return nil
	})
	if err != nil {
		deleteBlob(ctx, srv.storage, srv.log(ctx), newKey)

		return nil, errors.Wrap(err, "failed to update offer")
	}

	deleteBlob(ctx, srv.storage, srv.log(ctx), oldKey)
	srv.log(ctx).Info("Offer updated", slog.Int64("offerID", offerID))

	return updated, nil
}

// AuthorizeOfferUpdate runs the checks UpdateOffer performs before it looks at the input.
func (srv *offerService) AuthorizeOfferUpdate(ctx context.Context, caller *policy.Caller, offerID int64) error {
	if err := policy.Check(policy.OfferUpdate, caller, nil); err != nil {
		return err
	}

	_, err := srv.ownedOffer(ctx, caller, offerID)

	return err
}

func (srv *offerService) ownedOffer(ctx context.Context, caller *policy.Caller, offerID int64) (*entity.Offer, error) {
	offer, err := srv.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		return nil, notFound(err, repository.ErrOfferNotFound, "offer not found")
	}
	if err := policy.Check(policy.OfferUpdate, caller, policy.TargetOwnedBy(offer.UserID)); err != nil {
		return nil, err
	}

	return offer, nil
}

func (srv *offerService) patch(offer *entity.Offer, input *usecase.UpdateOfferInput, newImage *string) error {
	if input.Title != nil {
		offer.Title = srv.sanitizer.Sanitize(*input.Title)
	}
	if input.Description != nil {
		offer.Description = srv.sanitizer.Sanitize(*input.Description)
	}
	switch {
	case newImage != nil:
		offer.Image = newImage
	case input.ClearImage:
		offer.Image = nil
	}

	errs := offer.Validate()
	if input.Title == nil {
		delete(errs, "title")
	}
	if input.Description == nil {
		delete(errs, "description")
	}
	if err := errs.Err(); err != nil {
		return err
	}

	if len(input.Details) == 0 {
		return nil
	}

	patches := make([]entity.DetailPatch, len(input.Details))
	for i, p := range input.Details {
		if p.Title != nil {
			title := srv.sanitizer.Sanitize(*p.Title)
			p.Title = &title
		}
		patches[i] = p
	}

	return offer.ApplyDetailPatches(patches)
}

// DeleteOffer removes an offer, its tiers and its image.
func (srv *offerService) DeleteOffer(ctx context.Context, caller *policy.Caller, offerID int64) error {
	if err := policy.Check(policy.OfferDelete, caller, nil); err != nil {
		return err
	}

	var image *string
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		offerRepo := repoFactory.NewOfferRepository()

		offer, err := offerRepo.FindByID(ctx, offerID)
		if err != nil {
			return notFound(err, repository.ErrOfferNotFound, "offer not found")
		}
		if err := policy.Check(policy.OfferDelete, caller, policy.TargetOwnedBy(offer.UserID)); err != nil {
			return err
		}
		image = offer.Image

		return notFound(offerRepo.Delete(ctx, offerID), repository.ErrOfferNotFound, "offer not found")
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete offer")
	}

	deleteBlob(ctx, srv.storage, srv.log(ctx), image)
	srv.log(ctx).Info("Offer deleted", slog.Int64("offerID", offerID))

	return nil
}

// ListOffers lists offers with their owners. Public.
func (srv *offerService) ListOffers(ctx context.Context, caller *policy.Caller, filter repository.OfferFilter, page repository.PageRequest) (*usecase.PageResult[*entity.Offer], error) {
	if err := policy.Check(policy.OfferList, caller, nil); err != nil {
		return nil, err
	}
	if filter.Ordering != "" && !filter.Ordering.IsValid() {
		filter.Ordering = repository.OfferOrderUpdatedAtDesc
	}

	offers, total, err := srv.offerRepo.List(ctx, filter, page)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list offers")
	}

	return &usecase.PageResult[*entity.Offer]{Items: offers, Total: total}, nil
}

// GetOffer retrieves a single offer with its tiers.
func (srv *offerService) GetOffer(ctx context.Context, caller *policy.Caller, offerID int64) (*entity.Offer, error) {
	if err := policy.Check(policy.OfferRetrieve, caller, nil); err != nil {
		return nil, err
	}

	offer, err := srv.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		return nil, notFound(err, repository.ErrOfferNotFound, "offer not found")
	}

	return offer, nil
}

// GetOfferDetail retrieves a single tier.
func (srv *offerService) GetOfferDetail(ctx context.Context, caller *policy.Caller, detailID int64) (*entity.OfferDetail, error) {
	if err := policy.Check(policy.OfferDetail, caller, nil); err != nil {
		return nil, err
	}

	detail, err := srv.offerRepo.FindDetailByID(ctx, detailID)
	if err != nil {
		return nil, notFound(err, repository.ErrOfferDetailNotFound, "offer detail not found")
	}

	return detail, nil
}

// GetShareCode renders the QR code of an existing offer.
func (srv *offerService) GetShareCode(ctx context.Context, caller *policy.Caller, offerID int64) ([]byte, error) {
	if err := policy.Check(policy.OfferShare, caller, nil); err != nil {
		return nil, err
	}

	if _, err := srv.offerRepo.FindByID(ctx, offerID); err != nil {
		return nil, notFound(err, repository.ErrOfferNotFound, "offer not found")
	}

	png, err := srv.qrcode.GenerateOfferQR(offerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate share code")
	}

	return png, nil
}
