package postgres

import (
	"context"
	"strings"

	"coderr/internal/domain/entity"
	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/repository"
	"coderr/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID, preloading the profile.
func (repo *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("Profile").
		Where("id = ?", id).
		First(&userM).Error
	if err != nil {
		// If the error is 'record not found', return a domain-specific error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByUsername retrieves a single user by exact username, preloading the profile.
func (repo *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Preload("Profile").
		Where("username = ?", username).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by username")
	}

	return toUserDomain(&userM), nil
}

// ExistsByUsername checks the primary so a just-committed registration is seen.
func (repo *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Model(&model.UserModel{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check username")
	}

	return count > 0, nil
}

// ExistsByEmail compares case-insensitively against the primary.
func (repo *userRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	query := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Model(&model.UserModel{}).
		Where("lower(email) = ?", strings.ToLower(email))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check email")
	}

	return count > 0, nil
}

// Create persists a new user entity together with its profile.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		return mapUserWriteError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt
	if user.Profile != nil && userM.Profile != nil {
		user.Profile.UserID = userM.Profile.UserID
		user.Profile.CreatedAt = userM.Profile.CreatedAt
	}

	return nil
}

// Update modifies the user's names and email and all mutable profile fields.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	db := repo.db.WithContext(ctx)

	result := db.Model(&model.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"updated_at": gorm.Expr("now()"),
		})
	if result.Error != nil {
		return mapUserWriteError(result.Error, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	if user.Profile == nil {
		return nil
	}

	// Map form so nil pointers are written as NULL.
	err := db.Model(&model.ProfileModel{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]any{
			"file":          user.Profile.File,
			"uploaded_at":   user.Profile.UploadedAt,
			"location":      user.Profile.Location,
			"tel":           user.Profile.Tel,
			"description":   user.Profile.Description,
			"working_hours": user.Profile.WorkingHours,
			"updated_at":    gorm.Expr("now()"),
		}).Error
	if err != nil {
		return mapUserWriteError(err, "failed to update profile")
	}

	return nil
}

// ListByType pages through users of one profile type, oldest first.
func (repo *userRepository) ListByType(ctx context.Context, profileType entity.ProfileType, page repository.PageRequest) ([]*entity.User, int64, error) {
	base := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Where("profiles.type = ?", profileType.String())

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count users by type")
	}

	var users []*model.UserModel
	err := paginate(base.Session(&gorm.Session{}), page).
		Preload("Profile").
		Order("users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list users by type")
	}

	result := make([]*entity.User, 0, len(users))
	for _, u := range users {
		result = append(result, toUserDomain(u))
	}

	return result, total, nil
}

// CountByType counts profiles of one type.
func (repo *userRepository) CountByType(ctx context.Context, profileType entity.ProfileType) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.ProfileModel{}).
		Where("type = ?", profileType.String()).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count profiles")
	}

	return count, nil
}

func mapUserWriteError(err error, message string) error {
	if isUniqueConstraintViolation(err) {
		switch violatedConstraint(err) {
		case constraintUsername:
			return repository.ErrDuplicateUsername
		default:
			return repository.ErrDuplicateEmail
		}
	}
	if isNotNullConstraintViolation(err) || isCheckConstraintViolation(err) {
		return domainerrors.ErrValidationFailed.WrapMessage(message)
	}

	return domainerrors.NewDatabaseExecuteError(err, message)
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:           data.ID,
		Username:     data.Username,
		Email:        data.Email,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		PasswordHash: data.PasswordHash,
		IsStaff:      data.IsStaff,
		Profile:      toProfileDomain(data.Profile),
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:           data.ID,
		Username:     data.Username,
		Email:        data.Email,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		PasswordHash: data.PasswordHash,
		IsStaff:      data.IsStaff,
		Profile:      fromProfileDomain(data.Profile),
	}
}

func toProfileDomain(data *model.ProfileModel) *entity.Profile {
	if data == nil {
		return nil
	}

	return &entity.Profile{
		UserID:       data.UserID,
		Type:         entity.ProfileType(data.Type),
		File:         data.File,
		UploadedAt:   data.UploadedAt,
		Location:     data.Location,
		Tel:          data.Tel,
		Description:  data.Description,
		WorkingHours: data.WorkingHours,
		CreatedAt:    data.CreatedAt,
	}
}

func fromProfileDomain(data *entity.Profile) *model.ProfileModel {
	if data == nil {
		return nil
	}

	return &model.ProfileModel{
		UserID:       data.UserID,
		Type:         data.Type.String(),
		File:         data.File,
		UploadedAt:   data.UploadedAt,
		Location:     data.Location,
		Tel:          data.Tel,
		Description:  data.Description,
		WorkingHours: data.WorkingHours,
	}
}
