package handler

import (
	"net/http"
	"strings"

	"coderr/config"
	"coderr/internal/delivery/api/response"
	deliverycontext "coderr/internal/delivery/context"
	"coderr/internal/domain/entity"
	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/policy"
	"coderr/internal/domain/repository"
	"coderr/internal/domain/service"
	"coderr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// OfferHandler serves offers, their tiers and share codes.
type OfferHandler struct {
	offerUC usecase.OfferUsecase
	storage service.FileStorage
	pages   paginator
}

// OfferHandlerParams holds dependencies for OfferHandler, injected by Fx.
type OfferHandlerParams struct {
	fx.In

	OfferUC usecase.OfferUsecase
	Storage service.FileStorage
	Config  *config.Config
}

// NewOfferHandler is the constructor for OfferHandler.
func NewOfferHandler(params OfferHandlerParams) *OfferHandler {
	return &OfferHandler{
		offerUC: params.OfferUC,
		storage: params.Storage,
		pages:   newPaginator(params.Config),
	}
}

// OfferDetailRequest is one tier of a new offer.
type OfferDetailRequest struct {
	Title              *string  `json:"title" validate:"required"`
	Revisions          *int     `json:"revisions" validate:"required"`
	DeliveryTimeInDays *int     `json:"delivery_time_in_days" validate:"required"`
	Price              *int     `json:"price" validate:"required"`
	Features           []string `json:"features" validate:"required"`
	OfferType          *string  `json:"offer_type" validate:"required"`
}

// CreateOfferRequest holds the structured part of an offer creation.
// Title, description and image are read from the payload directly.
type CreateOfferRequest struct {
	Details []OfferDetailRequest `json:"details" validate:"dive"`
}

// OfferDetailPatchRequest changes one existing tier, found by id or offer_type.
type OfferDetailPatchRequest struct {
	ID                 *int64    `json:"id"`
	Title              *string   `json:"title"`
	Revisions          *int      `json:"revisions"`
	DeliveryTimeInDays *int      `json:"delivery_time_in_days"`
	Price              *int      `json:"price"`
	Features           *[]string `json:"features"`
	OfferType          *string   `json:"offer_type"`
}

// ListOffers returns a filtered page of offers. No authentication is required.
func (h *OfferHandler) ListOffers(c echo.Context) error {
	errs := domainerrors.FieldErrors{}
	filter := repository.OfferFilter{
		CreatorID:       queryID(c, "creator_id", errs),
		MinPrice:        queryInt(c, "min_price", errs),
		MaxDeliveryTime: queryInt(c, "max_delivery_time", errs),
		Search:          strings.TrimSpace(c.QueryParam("search")),
		Ordering:        repository.OfferOrdering(c.QueryParam("ordering")),
	}
	if err := errs.Err(); err != nil {
		return err
	}

	q, err := h.pages.parse(c)
	if err != nil {
		return err
	}

	result, err := h.offerUC.ListOffers(c.Request().Context(), deliverycontext.GetCaller(c), filter, q.request())
	if err != nil {
		return errors.WithStack(err)
	}

	page, err := buildPage(c, q, result.Total, mapSlice(result.Items, func(o *entity.Offer) offerSummaryView {
		return newOfferSummaryView(c, h.storage, o, true)
	}))
	if err != nil {
		return err
	}

	return response.OK(c, page)
}

// CreateOffer publishes an offer with its three tiers.
func (h *OfferHandler) CreateOffer(c echo.Context) error {
	caller, err := authorize(c, policy.OfferCreate)
	if err != nil {
		return err
	}

	body, err := readPayload(c)
	if err != nil {
		return err
	}

	errs := domainerrors.FieldErrors{}
	var req CreateOfferRequest
	if body.Has("details") {
		if err := body.Decode("details", &req.Details); err != nil {
			errs.Add("details", msgInvalidList)
		} else if err := mergeValidation(errs, c.Validate(&req)); err != nil {
			return err
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}

	input := &usecase.CreateOfferInput{
		Title:       textOrEmpty(body.Text("title")),
		Description: textOrEmpty(body.Text("description")),
		Details:     make([]usecase.OfferDetailInput, 0, len(req.Details)),
	}
	for _, d := range req.Details {
		input.Details = append(input.Details, usecase.OfferDetailInput{
			Title:              *d.Title,
			Revisions:          *d.Revisions,
			DeliveryTimeInDays: *d.DeliveryTimeInDays,
			Price:              *d.Price,
			Features:           d.Features,
			OfferType:          entity.OfferType(*d.OfferType),
		})
	}

	upload, closeUpload, err := body.Upload("image")
	if err != nil {
		return err
	}
	defer closeUpload()
	input.Image = upload

	offer, err := h.offerUC.CreateOffer(c.Request().Context(), caller, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, newOfferView(h.storage, offer))
}

// GetOffer returns one offer with links to its tiers.
func (h *OfferHandler) GetOffer(c echo.Context) error {
	caller, err := authorize(c, policy.OfferRetrieve)
	if err != nil {
		return err
	}

	offerID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	offer, err := h.offerUC.GetOffer(c.Request().Context(), caller, offerID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, newOfferSummaryView(c, h.storage, offer, false))
}

// UpdateOffer applies a partial update. Tiers are patched in place, never added or removed.
func (h *OfferHandler) UpdateOffer(c echo.Context) error {
	caller, err := authorize(c, policy.OfferUpdate)
	if err != nil {
		return err
	}

	offerID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	input, closeUpload, err := h.updateOfferInput(c)
	if err != nil {
		return payloadError(err, func() error {
			return h.offerUC.AuthorizeOfferUpdate(c.Request().Context(), caller, offerID)
		})
	}
	defer closeUpload()

	offer, err := h.offerUC.UpdateOffer(c.Request().Context(), caller, offerID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, newOfferView(h.storage, offer))
}

func (h *OfferHandler) updateOfferInput(c echo.Context) (*usecase.UpdateOfferInput, func(), error) {
	noop := func() {}

	body, err := readPayload(c)
	if err != nil {
		return nil, noop, err
	}

	var patches []OfferDetailPatchRequest
	if body.Has("details") {
		if err := body.Decode("details", &patches); err != nil {
			return nil, noop, domainerrors.NewValidationError("details", msgInvalidList)
		}
	}

	input := &usecase.UpdateOfferInput{
		Title:       body.Text("title"),
		Description: body.Text("description"),
		Details:     make([]entity.DetailPatch, 0, len(patches)),
	}
	for _, p := range patches {
		patch := entity.DetailPatch{
			ID:                 p.ID,
			Title:              p.Title,
			Revisions:          p.Revisions,
			DeliveryTimeInDays: p.DeliveryTimeInDays,
			Price:              p.Price,
			Features:           p.Features,
		}
		if p.OfferType != nil {
			offerType := entity.OfferType(*p.OfferType)
			patch.OfferType = &offerType
		}
		input.Details = append(input.Details, patch)
	}

	upload, closeUpload, err := body.Upload("image")
	if err != nil {
		return nil, noop, err
	}
	input.Image = upload
	input.ClearImage = upload == nil && body.Has("image") && body.IsEmpty("image")

	return input, closeUpload, nil
}

// DeleteOffer removes an offer with its tiers.
func (h *OfferHandler) DeleteOffer(c echo.Context) error {
	caller, err := authorize(c, policy.OfferDelete)
	if err != nil {
		return err
	}

	offerID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.offerUC.DeleteOffer(c.Request().Context(), caller, offerID); err != nil {
		return errors.WithStack(err)
	}

	return response.NoContent(c)
}

// GetOfferDetail returns a single tier.
func (h *OfferHandler) GetOfferDetail(c echo.Context) error {
	caller, err := authorize(c, policy.OfferDetail)
	if err != nil {
		return err
	}

	detailID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.offerUC.GetOfferDetail(c.Request().Context(), caller, detailID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, newOfferDetailView(detail))
}

// GetShareCode returns a PNG QR code linking to the public offer page.
func (h *OfferHandler) GetShareCode(c echo.Context) error {
	caller, err := authorize(c, policy.OfferShare)
	if err != nil {
		return err
	}

	offerID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	png, err := h.offerUC.GetShareCode(c.Request().Context(), caller, offerID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
