package impl

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	deliverycontext "coderr/internal/delivery/context"
	"coderr/internal/domain/entity"
	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/repository"
	"coderr/internal/domain/service"
	"coderr/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const usernameMaxLength = 150

var emailValidator = validator.New()

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates the identity and its profile in one transaction and issues a token.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	profileType := input.Type
	if profileType == "" {
		profileType = entity.ProfileTypeCustomer
	}

	if err := validateRegistration(username, email, input.Password, input.RepeatedPassword, profileType); err != nil {
		return nil, err
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Profile:      &entity.Profile{Type: profileType},
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		taken, err := userRepo.ExistsByEmail(ctx, email, 0)
		if err != nil {
			return errors.Wrap(err, "failed to check email")
		}
		if taken {
			return domainerrors.NewValidationError("email", "Email already exists.")
		}

		taken, err = userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return errors.Wrap(err, "failed to check username")
		}
		if taken {
			return domainerrors.NewValidationError("username", "A user with that username already exists.")
		}

		return mapUserConflict(userRepo.Create(ctx, user))
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("username", username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to register user")
	}

	srv.log(ctx).Info("User registered", slog.Int64("userID", user.ID), slog.String("type", profileType.String()))

	return srv.issue(user)
}

// Login checks the credentials and issues a token.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	errs := domainerrors.FieldErrors{}
	if strings.TrimSpace(input.Username) == "" {
		errs.Add("username", domainerrors.MsgRequired)
	}
	if input.Password == "" {
		errs.Add("password", domainerrors.MsgRequired)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	invalid := domainerrors.NewNonFieldError("Unable to log in with provided credentials.")

	user, err := srv.userRepo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, invalid
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login rejected", slog.Int64("userID", user.ID))

		return nil, invalid
	}

	return srv.issue(user)
}

// Authenticate validates the token and reloads the user, so role changes apply immediately.
func (srv *authService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	claims, err := srv.tokenService.ValidateToken(token)
	if err != nil {
		srv.log(ctx).Debug("Token rejected", slog.Any("error", err))

		return nil, domainerrors.ErrUnauthorized.WithMessage("Invalid token.")
	}

	user, err := srv.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUnauthorized.WithMessage("User not found.")
		}

		return nil, errors.Wrap(err, "failed to load token user")
	}

	return user, nil
}

func (srv *authService) issue(user *entity.User) (*usecase.AuthOutput, error) {
	token, err := srv.tokenService.GenerateToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate token")
	}

	return &usecase.AuthOutput{Token: token, User: user}, nil
}

func validateRegistration(username, email, password, repeated string, profileType entity.ProfileType) error {
	errs := domainerrors.FieldErrors{}

	switch {
	case username == "":
		errs.Add("username", domainerrors.MsgRequired)
	case utf8.RuneCountInString(username) > usernameMaxLength:
		errs.Add("username", "Ensure this field has no more than 150 characters.")
	}

	if email == "" {
		errs.Add("email", domainerrors.MsgRequired)
	} else if !validEmail(email) {
		errs.Add("email", "Enter a valid email address.")
	}

	if password == "" {
		errs.Add("password", domainerrors.MsgRequired)
	}
	if repeated == "" {
		errs.Add("repeated_password", domainerrors.MsgRequired)
	}
	if !profileType.IsValid() {
		errs.Add("type", "\""+profileType.String()+"\" is not a valid choice.")
	}
	if err := errs.Err(); err != nil {
		return err
	}

	if password != repeated {
		return domainerrors.NewValidationError("repeated_password", "Passwords do not match.")
	}

	return nil
}

func validEmail(email string) bool {
	return emailValidator.Var(email, "email") == nil
}

// mapUserConflict converts unique violations that slipped past the existence checks.
func mapUserConflict(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicateEmail):
		return domainerrors.NewValidationError("email", "Email already exists.")
	case errors.Is(err, repository.ErrDuplicateUsername):
		return domainerrors.NewValidationError("username", "A user with that username already exists.")
	default:
		return errors.Wrap(err, "failed to save user")
	}
}
