package handler

import (
	"coderr/config"
	"coderr/internal/delivery/api/response"
	"coderr/internal/domain/entity"
	"coderr/internal/domain/policy"
	"coderr/internal/domain/service"
	"coderr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// profileTextFields are the free-text keys a profile update accepts.
var profileTextFields = []string{"first_name", "last_name", "email", "location", "tel", "description", "working_hours"}

// ProfileHandler serves profile reads and updates.
type ProfileHandler struct {
	profileUC usecase.ProfileUsecase
	storage   service.FileStorage
	pages     paginator
}

// ProfileHandlerParams holds dependencies for ProfileHandler, injected by Fx.
type ProfileHandlerParams struct {
	fx.In

	ProfileUC usecase.ProfileUsecase
	Storage   service.FileStorage
	Config    *config.Config
}

// NewProfileHandler is the constructor for ProfileHandler.
func NewProfileHandler(params ProfileHandlerParams) *ProfileHandler {
	return &ProfileHandler{
		profileUC: params.ProfileUC,
		storage:   params.Storage,
		pages:     newPaginator(params.Config),
	}
}

// GetProfile returns the full profile of a user.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	caller, err := authorize(c, policy.ProfileRead)
	if err != nil {
		return err
	}

	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.profileUC.GetProfile(c.Request().Context(), caller, userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, newProfileView(h.storage, user))
}

// UpdateProfile applies a partial update sent as JSON or multipart form.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	caller, err := authorize(c, policy.ProfileUpdate)
	if err != nil {
		return err
	}

	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	input, closeUpload, err := updateProfileInput(c)
	if err != nil {
		return payloadError(err, func() error {
			return h.profileUC.AuthorizeProfileUpdate(c.Request().Context(), caller, userID)
		})
	}
	defer closeUpload()

	user, err := h.profileUC.UpdateProfile(c.Request().Context(), caller, userID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, newProfileView(h.storage, user))
}

func updateProfileInput(c echo.Context) (*usecase.UpdateProfileInput, func(), error) {
	body, err := readPayload(c)
	if err != nil {
		return nil, func() {}, err
	}

	input := &usecase.UpdateProfileInput{}
	targets := []**string{
		&input.FirstName, &input.LastName, &input.Email, &input.Location,
		&input.Tel, &input.Description, &input.WorkingHours,
	}
	for i, key := range profileTextFields {
		*targets[i] = body.Text(key)
	}

	upload, closeUpload, err := body.Upload("file")
	if err != nil {
		return nil, func() {}, err
	}

	input.File = upload
	input.ClearFile = upload == nil && body.Has("file") && body.IsEmpty("file")

	return input, closeUpload, nil
}

// ListBusinessProfiles returns business profiles.
func (h *ProfileHandler) ListBusinessProfiles(c echo.Context) error {
	return listProfiles(c, h, entity.ProfileTypeBusiness, func(u *entity.User) businessProfileView {
		return newBusinessProfileView(h.storage, u)
	})
}

// ListCustomerProfiles returns customer profiles.
func (h *ProfileHandler) ListCustomerProfiles(c echo.Context) error {
	return listProfiles(c, h, entity.ProfileTypeCustomer, func(u *entity.User) customerProfileView {
		return newCustomerProfileView(h.storage, u)
	})
}

func listProfiles[V any](c echo.Context, h *ProfileHandler, profileType entity.ProfileType, view func(*entity.User) V) error {
	caller, err := authorize(c, policy.ProfileList)
	if err != nil {
		return err
	}

	q, err := h.pages.parse(c)
	if err != nil {
		return err
	}

	result, err := h.profileUC.ListProfiles(c.Request().Context(), caller, profileType, q.request())
	if err != nil {
		return errors.WithStack(err)
	}

	page, err := buildPage(c, q, result.Total, mapSlice(result.Items, view))
	if err != nil {
		return err
	}

	return response.OK(c, page)
}
