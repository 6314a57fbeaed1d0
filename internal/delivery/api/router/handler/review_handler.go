package handler

import (
	"coderr/config"
	"coderr/internal/delivery/api/response"
	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/policy"
	"coderr/internal/domain/repository"
	"coderr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// reviewReadOnlyFields may not appear in a review update.
var reviewReadOnlyFields = []string{"business_user", "reviewer"}

// ReviewHandler serves the review ledger.
type ReviewHandler struct {
	reviewUC usecase.ReviewUsecase
	pages    paginator
}

// ReviewHandlerParams holds dependencies for ReviewHandler, injected by Fx.
type ReviewHandlerParams struct {
	fx.In

	ReviewUC usecase.ReviewUsecase
	Config   *config.Config
}

// NewReviewHandler is the constructor for ReviewHandler.
func NewReviewHandler(params ReviewHandlerParams) *ReviewHandler {
	return &ReviewHandler{
		reviewUC: params.ReviewUC,
		pages:    newPaginator(params.Config),
	}
}

// CreateReviewRequest is the body of POST /api/reviews/.
type CreateReviewRequest struct {
	BusinessUser *int64  `json:"business_user" validate:"required"`
	Rating       *int    `json:"rating" validate:"required"`
	Description  *string `json:"description" validate:"required"`
}

// ListReviews returns a filtered page of reviews.
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	caller, err := authorize(c, policy.ReviewList)
	if err != nil {
		return err
	}

	errs := domainerrors.FieldErrors{}
	filter := repository.ReviewFilter{
		BusinessUserID: queryID(c, "business_user_id", errs),
		ReviewerID:     queryID(c, "reviewer_id", errs),
		Ordering:       repository.ReviewOrdering(c.QueryParam("ordering")),
	}
	if err := errs.Err(); err != nil {
		return err
	}

	q, err := h.pages.parse(c)
	if err != nil {
		return err
	}

	result, err := h.reviewUC.ListReviews(c.Request().Context(), caller, filter, q.request())
	if err != nil {
		return errors.WithStack(err)
	}

	page, err := buildPage(c, q, result.Total, mapSlice(result.Items, newReviewView))
	if err != nil {
		return err
	}

	return response.OK(c, page)
}

// CreateReview records the caller's review of a business user.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	caller, err := authorize(c, policy.ReviewCreate)
	if err != nil {
		return err
	}

	var req CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	review, err := h.reviewUC.CreateReview(c.Request().Context(), caller, &usecase.CreateReviewInput{
		BusinessUserID: *req.BusinessUser,
		Rating:         *req.Rating,
		Description:    *req.Description,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Created(c, newReviewView(review))
}

// GetReview returns one review.
func (h *ReviewHandler) GetReview(c echo.Context) error {
	caller, err := authorize(c, policy.ReviewRetrieve)
	if err != nil {
		return err
	}

	reviewID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	review, err := h.reviewUC.GetReview(c.Request().Context(), caller, reviewID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, newReviewView(review))
}

// UpdateReview changes rating or description. Reviewer and business user are fixed.
func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	caller, err := authorize(c, policy.ReviewUpdate)
	if err != nil {
		return err
	}

	reviewID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	body, err := readPayload(c)
	if err != nil {
		return payloadError(err, func() error {
			return h.reviewUC.AuthorizeReviewUpdate(c.Request().Context(), caller, reviewID)
		})
	}

	input := &usecase.UpdateReviewInput{Description: body.Text("description")}
	if body.Has("rating") {
		// A non-numeric rating is carried as 0, which fails the range check after the ownership check.
		input.Rating = body.Int("rating", domainerrors.FieldErrors{})
		if input.Rating == nil {
			zero := 0
			input.Rating = &zero
		}
	}
	for _, key := range reviewReadOnlyFields {
		if body.Has(key) {
			input.ForbiddenFields = append(input.ForbiddenFields, key)
		}
	}

	review, err := h.reviewUC.UpdateReview(c.Request().Context(), caller, reviewID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, newReviewView(review))
}

// DeleteReview removes a review. Author only.
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	caller, err := authorize(c, policy.ReviewDelete)
	if err != nil {
		return err
	}

	reviewID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.reviewUC.DeleteReview(c.Request().Context(), caller, reviewID); err != nil {
		return errors.WithStack(err)
	}

	return response.NoContent(c)
}
