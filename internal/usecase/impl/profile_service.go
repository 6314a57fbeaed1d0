package impl

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

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

// Profile column limits.
const (
	nameMaxLength         = 150
	locationMaxLength     = 100
	telMaxLength          = 20
	workingHoursMaxLength = 50
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	txManager repository.TransactionManager
	userRepo  repository.UserRepository
	storage   service.FileStorage
	sanitizer service.TextSanitizer
	logger    *slog.Logger
	now       func() time.Time
}

// ProfileServiceParams holds dependencies for ProfileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Storage   service.FileStorage
	Sanitizer service.TextSanitizer
	Logger    *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		txManager: params.TxManager,
		userRepo:  params.UserRepo,
		storage:   params.Storage,
		sanitizer: params.Sanitizer,
		logger:    params.Logger,
		now:       time.Now,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile retrieves a user together with its profile.
func (srv *profileService) GetProfile(ctx context.Context, caller *policy.Caller, userID int64) (*entity.User, error) {
	if err := policy.Check(policy.ProfileRead, caller, nil); err != nil {
		return nil, err
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, repository.ErrUserNotFound, "profile not found")
	}

	return user, nil
}

// UpdateProfile applies a partial update to the caller's own profile.
func (srv *profileService) UpdateProfile(ctx context.Context, caller *policy.Caller, userID int64, input *usecase.UpdateProfileInput) (*entity.User, error) {
	if err := policy.Check(policy.ProfileUpdate, caller, nil); err != nil {
		return nil, err
	}

	_, err := srv.ownProfile(ctx, caller, userID)
	if err != nil {
		return nil, err
	}

	srv.normalize(input)
	if err := validateProfileInput(input); err != nil {
		return nil, err
	}

	var newKey string
	if input.File != nil {
		newKey, err = saveUpload(ctx, srv.storage, constants.StorageFolderProfiles, "file", input.File)
		if err != nil {
			return nil, err
		}
	}

	var (
		updated *entity.User
		oldKey  *string
	)
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return notFound(err, repository.ErrUserNotFound, "profile not found")
		}

		if input.Email != nil {
			taken, err := userRepo.ExistsByEmail(ctx, *input.Email, user.ID)
			if err != nil {
				return errors.Wrap(err, "failed to check email")
			}
			if taken {
				return domainerrors.NewValidationError("email", "This email is already taken.")
			}
		}

		if input.File != nil || input.ClearFile {
			oldKey = user.Profile.File
		}
		applyProfileInput(user, input, newKey, srv.now())

		if err := userRepo.Update(ctx, user); err != nil {
			return mapUserConflict(err)
		}
		updated = user

		return nil
	})
	if err != nil {
		if newKey != "" {
			deleteBlob(ctx, srv.storage, srv.log(ctx), &newKey)
		}

		return nil, errors.Wrap(err, "failed to update profile")
	}

	deleteBlob(ctx, srv.storage, srv.log(ctx), oldKey)
	srv.log(ctx).Info("Profile updated", slog.Int64("userID", userID))

	return updated, nil
}

// AuthorizeProfileUpdate checks that the profile exists and belongs to the caller.
func (srv *profileService) AuthorizeProfileUpdate(ctx context.Context, caller *policy.Caller, userID int64) error {
	if err := policy.Check(policy.ProfileUpdate, caller, nil); err != nil {
		return err
	}

	_, err := srv.ownProfile(ctx, caller, userID)

	return err
}

func (srv *profileService) ownProfile(ctx context.Context, caller *policy.Caller, userID int64) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, repository.ErrUserNotFound, "profile not found")
	}
	if user.Profile == nil {
		return nil, errors.Wrap(domainerrors.ErrNotFound, "profile not found")
	}
	if err := policy.Check(policy.ProfileUpdate, caller, policy.TargetOwnedBy(user.ID)); err != nil {
		return nil, err
	}

	return user, nil
}

// ListProfiles lists the profiles of one type, oldest first.
func (srv *profileService) ListProfiles(ctx context.Context, caller *policy.Caller, profileType entity.ProfileType, page repository.PageRequest) (*usecase.PageResult[*entity.User], error) {
	if err := policy.Check(policy.ProfileList, caller, nil); err != nil {
		return nil, err
	}
	if !profileType.IsValid() {
		return nil, errors.Wrap(domainerrors.ErrNotFound, "unknown profile type")
	}

	users, total, err := srv.userRepo.ListByType(ctx, profileType, page)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list profiles")
	}

	return &usecase.PageResult[*entity.User]{Items: users, Total: total}, nil
}

func (srv *profileService) normalize(input *usecase.UpdateProfileInput) {
	for _, field := range []*string{input.FirstName, input.LastName, input.Location, input.Tel, input.Description, input.WorkingHours} {
		if field != nil {
			*field = srv.sanitizer.Sanitize(*field)
		}
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		input.Email = &email
	}
}

func validateProfileInput(input *usecase.UpdateProfileInput) error {
	errs := domainerrors.FieldErrors{}
	checkLength(errs, "first_name", input.FirstName, nameMaxLength)
	checkLength(errs, "last_name", input.LastName, nameMaxLength)
	checkLength(errs, "location", input.Location, locationMaxLength)
	checkLength(errs, "tel", input.Tel, telMaxLength)
	checkLength(errs, "working_hours", input.WorkingHours, workingHoursMaxLength)

	if input.Email != nil {
		switch {
		case *input.Email == "":
			errs.Add("email", "This field may not be blank.")
		case !validEmail(*input.Email):
			errs.Add("email", "Enter a valid email address.")
		}
	}
	if input.File != nil && input.ClearFile {
		errs.Add("file", "Cannot upload and clear the file at once.")
	}

	return errs.Err()
}

func checkLength(errs domainerrors.FieldErrors, field string, value *string, limit int) {
	if value != nil && utf8.RuneCountInString(*value) > limit {
		errs.Add(field, "Ensure this field has no more than "+strconv.Itoa(limit)+" characters.")
	}
}

func applyProfileInput(user *entity.User, input *usecase.UpdateProfileInput, newKey string, now time.Time) {
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil {
		user.Email = *input.Email
	}

	profile := user.Profile
	if input.Location != nil {
		profile.Location = optional(*input.Location)
	}
	if input.Tel != nil {
		profile.Tel = optional(*input.Tel)
	}
	if input.Description != nil {
		profile.Description = optional(*input.Description)
	}
	if input.WorkingHours != nil {
		profile.WorkingHours = optional(*input.WorkingHours)
	}

	switch {
	case newKey != "":
		profile.AttachFile(newKey, now)
	case input.ClearFile:
		profile.ClearFile()
	}
}

// optional stores blanks as absent values.
func optional(value string) *string {
	if value == "" {
		return nil
	}

	return &value
}
