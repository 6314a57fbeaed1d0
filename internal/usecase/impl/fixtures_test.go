package impl

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"coderr/internal/domain/entity"
	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/policy"
	"coderr/internal/domain/service"
	mockRepo "coderr/internal/mocks/repository"
	mockSvc "coderr/internal/mocks/service"
	"coderr/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fixtures struct {
	store     *mockRepo.Store
	storage   *mockSvc.FileStorage
	publisher *mockSvc.EventPublisher

	auth     usecase.AuthUsecase
	profiles usecase.ProfileUsecase
	offers   usecase.OfferUsecase
	orders   usecase.OrderUsecase
	reviews  usecase.ReviewUsecase
	baseInfo usecase.BaseInfoUsecase
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixtures(t *testing.T) *fixtures {
	t.Helper()

	store := mockRepo.NewStore()
	storage := mockSvc.NewFileStorage()
	publisher := &mockSvc.EventPublisher{}
	logger := newDiscardLogger()

	txManager := store.TxManager()
	userRepo := mockRepo.NewUserRepository(store)
	offerRepo := mockRepo.NewOfferRepository(store)
	orderRepo := mockRepo.NewOrderRepository(store)
	reviewRepo := mockRepo.NewReviewRepository(store)

	return &fixtures{
		store:     store,
		storage:   storage,
		publisher: publisher,
		auth: NewAuthService(AuthServiceParams{
			TxManager:    txManager,
			UserRepo:     userRepo,
			Hasher:       mockSvc.PasswordHasher{},
			TokenService: mockSvc.TokenService{},
			Logger:       logger,
		}),
		profiles: NewProfileService(ProfileServiceParams{
			TxManager: txManager,
			UserRepo:  userRepo,
			Storage:   storage,
			Sanitizer: mockSvc.TextSanitizer{},
			Logger:    logger,
		}),
		offers: NewOfferService(OfferServiceParams{
			TxManager: txManager,
			OfferRepo: offerRepo,
			Storage:   storage,
			QRCode:    mockSvc.QRCodeService{},
			Sanitizer: mockSvc.TextSanitizer{},
			Publisher: publisher,
			Logger:    logger,
		}),
		orders: NewOrderService(OrderServiceParams{
			TxManager: txManager,
			OrderRepo: orderRepo,
			OfferRepo: offerRepo,
			UserRepo:  userRepo,
			Publisher: publisher,
			Logger:    logger,
		}),
		reviews: NewReviewService(ReviewServiceParams{
			TxManager:  txManager,
			ReviewRepo: reviewRepo,
			Sanitizer:  mockSvc.TextSanitizer{},
			Publisher:  publisher,
			Logger:     logger,
		}),
		baseInfo: NewBaseInfoService(BaseInfoServiceParams{
			UserRepo:   userRepo,
			OfferRepo:  offerRepo,
			ReviewRepo: reviewRepo,
			Logger:     logger,
		}),
	}
}

// register creates an account through the auth usecase and returns its caller.
func (f *fixtures) register(t *testing.T, username string, profileType entity.ProfileType) *policy.Caller {
	t.Helper()

	out, err := f.auth.Register(context.Background(), &usecase.RegisterInput{
		Username:         username,
		Email:            username + "@example.com",
		Password:         "secret-pass",
		RepeatedPassword: "secret-pass",
		Type:             profileType,
	})
	require.NoError(t, err)

	return policy.CallerFromUser(out.User)
}

func (f *fixtures) staff(t *testing.T) *policy.Caller {
	t.Helper()

	user := f.store.AddUser(&entity.User{
		Username: "admin",
		Email:    "admin@example.com",
		IsStaff:  true,
		Profile:  &entity.Profile{Type: entity.ProfileTypeCustomer},
	})

	return policy.CallerFromUser(user)
}

func threeTiers() []usecase.OfferDetailInput {
	return []usecase.OfferDetailInput{
		{Title: "Basic", Revisions: 1, DeliveryTimeInDays: 3, Price: 50, Features: []string{"Logo"}, OfferType: entity.OfferTypeBasic},
		{Title: "Standard", Revisions: 3, DeliveryTimeInDays: 5, Price: 100, Features: []string{"Logo", "Card"}, OfferType: entity.OfferTypeStandard},
		{Title: "Premium", Revisions: entity.UnlimitedRevisions, DeliveryTimeInDays: 7, Price: 200, Features: []string{"Logo", "Card", "Flyer"}, OfferType: entity.OfferTypePremium},
	}
}

func (f *fixtures) createOffer(t *testing.T, owner *policy.Caller, title string) *entity.Offer {
	t.Helper()

	offer, err := f.offers.CreateOffer(context.Background(), owner, &usecase.CreateOfferInput{
		Title:       title,
		Description: title + " description",
		Details:     threeTiers(),
	})
	require.NoError(t, err)

	return offer
}

func upload(name, content string) *service.Upload {
	return &service.Upload{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(content)),
		Content:     strings.NewReader(content),
	}
}

func httpCode(err error) int {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode()
	}

	return 0
}

func fieldErrors(t *testing.T, err error) domainerrors.FieldErrors {
	t.Helper()

	var validationErr *domainerrors.ValidationError
	require.True(t, errors.As(err, &validationErr), "expected validation error, got %v", err)

	return validationErr.Fields()
}

func ptr[T any](v T) *T {
	return &v
}
