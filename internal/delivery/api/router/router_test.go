package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"coderr/config"
	apimiddleware "coderr/internal/delivery/api/middleware"
	"coderr/internal/delivery/api/router/handler"
	"coderr/internal/delivery/api/validator"
	"coderr/internal/domain/entity"
	mockRepo "coderr/internal/mocks/repository"
	mockSvc "coderr/internal/mocks/service"
	"coderr/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	e       *echo.Echo
	store   *mockRepo.Store
	storage *mockSvc.FileStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	cfg := &config.Config{Pagination: &config.PaginationConfig{DefaultPageSize: 6, MaxPageSize: 100}}

	store := mockRepo.NewStore()
	storage := mockSvc.NewFileStorage()
	publisher := &mockSvc.EventPublisher{}
	txManager := store.TxManager()
	userRepo := mockRepo.NewUserRepository(store)
	offerRepo := mockRepo.NewOfferRepository(store)
	orderRepo := mockRepo.NewOrderRepository(store)
	reviewRepo := mockRepo.NewReviewRepository(store)

	authUC := impl.NewAuthService(impl.AuthServiceParams{
		TxManager: txManager, UserRepo: userRepo, Hasher: mockSvc.PasswordHasher{},
		TokenService: mockSvc.TokenService{}, Logger: logger,
	})
	profileUC := impl.NewProfileService(impl.ProfileServiceParams{
		TxManager: txManager, UserRepo: userRepo, Storage: storage, Sanitizer: mockSvc.TextSanitizer{}, Logger: logger,
	})
	offerUC := impl.NewOfferService(impl.OfferServiceParams{
		TxManager: txManager, OfferRepo: offerRepo, Storage: storage, QRCode: mockSvc.QRCodeService{},
		Sanitizer: mockSvc.TextSanitizer{}, Publisher: publisher, Logger: logger,
	})
	orderUC := impl.NewOrderService(impl.OrderServiceParams{
		TxManager: txManager, OrderRepo: orderRepo, OfferRepo: offerRepo, UserRepo: userRepo,
		Publisher: publisher, Logger: logger,
	})
	reviewUC := impl.NewReviewService(impl.ReviewServiceParams{
		TxManager: txManager, ReviewRepo: reviewRepo, Sanitizer: mockSvc.TextSanitizer{}, Publisher: publisher, Logger: logger,
	})
	baseInfoUC := impl.NewBaseInfoService(impl.BaseInfoServiceParams{
		UserRepo: userRepo, OfferRepo: offerRepo, ReviewRepo: reviewRepo, Logger: logger,
	})

	e := echo.New()
	e.Pre(TrailingSlash())
	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(logger).HandleHTTPError
	e.Validator = validator.New()

	NewRouter(RouterParams{
		AuthHandler:     handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: authUC}),
		ProfileHandler:  handler.NewProfileHandler(handler.ProfileHandlerParams{ProfileUC: profileUC, Storage: storage, Config: cfg}),
		OfferHandler:    handler.NewOfferHandler(handler.OfferHandlerParams{OfferUC: offerUC, Storage: storage, Config: cfg}),
		OrderHandler:    handler.NewOrderHandler(handler.OrderHandlerParams{OrderUC: orderUC, Config: cfg}),
		ReviewHandler:   handler.NewReviewHandler(handler.ReviewHandlerParams{ReviewUC: reviewUC, Config: cfg}),
		BaseInfoHandler: handler.NewBaseInfoHandler(handler.BaseInfoHandlerParams{BaseInfoUC: baseInfoUC}),
		MediaHandler:    handler.NewMediaHandler(handler.MediaHandlerParams{Storage: storage}),
		AuthMiddleware:  apimiddleware.NewAuthMiddleware(authUC, logger),
	}).RegisterRoutes(e)

	return &testServer{e: e, store: store, storage: storage}
}

func (s *testServer) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Token "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	return rec
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	return s.serve(req, token)
}

func (s *testServer) doMultipart(t *testing.T, method, path, token string, fields map[string]string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for k, content := range files {
		part, err := writer.CreateFormFile(k, k+".png")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())

	return s.serve(req, token)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())

	return out
}

type errorBody struct {
	Error struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Details map[string][]string `json:"details"`
	} `json:"error"`
}

type authBody struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

func (s *testServer) register(t *testing.T, username string, profileType entity.ProfileType) authBody {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/registration/", "", map[string]any{
		"username":          username,
		"email":             username + "@example.com",
		"password":          "secret-pass",
		"repeated_password": "secret-pass",
		"type":              string(profileType),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[authBody](t, rec)
}

func offerPayload(title string) map[string]any {
	return map[string]any{
		"title":       title,
		"description": title + " description",
		"details": []map[string]any{
			{"title": "Basic", "revisions": 1, "delivery_time_in_days": 3, "price": 50, "features": []string{"Logo"}, "offer_type": "basic"},
			{"title": "Standard", "revisions": 3, "delivery_time_in_days": 5, "price": 100, "features": []string{"Logo", "Card"}, "offer_type": "standard"},
			{"title": "Premium", "revisions": -1, "delivery_time_in_days": 7, "price": 200, "features": []string{"Logo", "Card", "Flyer"}, "offer_type": "premium"},
		},
	}
}

type offerBody struct {
	ID      int64   `json:"id"`
	Image   *string `json:"image"`
	Details []struct {
		ID        int64  `json:"id"`
		Price     int    `json:"price"`
		OfferType string `json:"offer_type"`
	} `json:"details"`
}

func (s *testServer) createOffer(t *testing.T, token, title string) offerBody {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/offers/", token, offerPayload(title))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[offerBody](t, rec)
}

func TestRegistrationAndLogin(t *testing.T) {
	s := newTestServer(t)

	registered := s.register(t, "alice", entity.ProfileTypeCustomer)
	assert.NotEmpty(t, registered.Token)

	rec := s.do(t, http.MethodPost, "/api/login/", "", map[string]string{"username": "alice", "password": "secret-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, registered.UserID, decode[authBody](t, rec).UserID)

	rec = s.do(t, http.MethodPost, "/api/login/", "", map[string]string{"username": "alice", "password": "wrong"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error.Details, "non_field_errors")
}

func TestRegistration_ValidationDetails(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", entity.ProfileTypeCustomer)

	rec := s.do(t, http.MethodPost, "/api/registration/", "", map[string]any{
		"username": "bob", "email": "ALICE@example.com", "password": "a", "repeated_password": "a",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	assert.Equal(t, []string{"Email already exists."}, body.Error.Details["email"])
}

func TestMalformedJSONIsValidationError(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/registration/", bytes.NewBufferString("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := s.serve(req, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error.Details, "non_field_errors")
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)
	customer := s.register(t, "alice", entity.ProfileTypeCustomer)
	path := fmt.Sprintf("/api/profile/%d/", customer.UserID)

	rec := s.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, decode[errorBody](t, rec).Error.Details)

	rec = s.do(t, http.MethodGet, path, "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, path, customer.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[map[string]any](t, rec)
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, "customer", profile["type"])
	assert.Equal(t, "", profile["location"])
	assert.Equal(t, "", profile["file"])
}

func TestTrailingSlashIsAdded(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/base-info", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[map[string]any](t, rec)
	assert.InDelta(t, 0, info["average_rating"], 0)
	assert.InDelta(t, 0, info["offer_count"], 0)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/nothing-here/", "", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[errorBody](t, rec).Error.Code)
}

func TestProfileUpdate_MultipartFile(t *testing.T) {
	s := newTestServer(t)
	customer := s.register(t, "alice", entity.ProfileTypeCustomer)
	other := s.register(t, "bob", entity.ProfileTypeCustomer)
	path := fmt.Sprintf("/api/profile/%d/", customer.UserID)

	rec := s.doMultipart(t, http.MethodPatch, path, other.Token, map[string]string{"location": "Berlin"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.doMultipart(t, http.MethodPatch, path, customer.Token,
		map[string]string{"location": "Berlin", "type": "business"}, map[string]string{"file": "png-bytes"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decode[map[string]any](t, rec)
	assert.Equal(t, "Berlin", profile["location"])
	assert.Equal(t, "customer", profile["type"])
	assert.Equal(t, "http://media.test/profile/file-1", profile["file"])

	rec = s.do(t, http.MethodGet, "/media/profile/file-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/profiles/customer/", customer.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Count   int64            `json:"count"`
		Results []map[string]any `json:"results"`
	}](t, rec)
	assert.EqualValues(t, 2, page.Count)
	assert.NotEqual(t, "", page.Results[0]["uploaded_at"])
	assert.Equal(t, "", page.Results[1]["uploaded_at"])

	rec = s.do(t, http.MethodPatch, path, customer.Token, map[string]any{"file": nil})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decode[map[string]any](t, rec)["file"])
	assert.False(t, s.storage.Has("profile/file-1"))
}

func TestOffers_CreateAndRoles(t *testing.T) {
	s := newTestServer(t)
	business := s.register(t, "shop", entity.ProfileTypeBusiness)
	customer := s.register(t, "alice", entity.ProfileTypeCustomer)

	rec := s.do(t, http.MethodPost, "/api/offers/", "", offerPayload("Design"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/offers/", customer.Token, offerPayload("Design"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	offer := s.createOffer(t, business.Token, "Design")
	assert.Len(t, offer.Details, 3)
	assert.Nil(t, offer.Image)

	payload := offerPayload("Broken")
	payload["details"] = payload["details"].([]map[string]any)[:2]
	rec = s.do(t, http.MethodPost, "/api/offers/", business.Token, payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error.Details, "non_field_errors")

	payload = offerPayload("Missing price")
	delete(payload["details"].([]map[string]any)[1], "price")
	rec = s.do(t, http.MethodPost, "/api/offers/", business.Token, payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"This field is required."}, decode[errorBody](t, rec).Error.Details["details.1.price"])
}

func TestOffers_CreateMultipart(t *testing.T) {
	s := newTestServer(t)
	business := s.register(t, "shop", entity.ProfileTypeBusiness)

	details, err := json.Marshal(offerPayload("x")["details"])
	require.NoError(t, err)

	rec := s.doMultipart(t, http.MethodPost, "/api/offers/", business.Token,
		map[string]string{"title": "Logo", "description": "Logos", "details": string(details)},
		map[string]string{"image": "image-bytes"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	offer := decode[offerBody](t, rec)
	require.NotNil(t, offer.Image)
	assert.Equal(t, "http://media.test/offers/file-1", *offer.Image)
}

func TestOffers_ListPaginationAndFilters(t *testing.T) {
	s := newTestServer(t)
	business := s.register(t, "shop", entity.ProfileTypeBusiness)
	for i := range 7 {
		s.createOffer(t, business.Token, fmt.Sprintf("Offer %d", i))
	}

	type listBody struct {
		Count    int64   `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []struct {
			ID         int64          `json:"id"`
			MinPrice   int            `json:"min_price"`
			UserDetail map[string]any `json:"user_detail"`
			Details    []struct {
				URL string `json:"url"`
			} `json:"details"`
		} `json:"results"`
	}

	rec := s.do(t, http.MethodGet, "/api/offers/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[listBody](t, rec)
	assert.EqualValues(t, 7, first.Count)
	assert.Len(t, first.Results, 6)
	assert.Nil(t, first.Previous)
	require.NotNil(t, first.Next)
	assert.Equal(t, "http://example.com/api/offers/?page=2", *first.Next)
	assert.Equal(t, 50, first.Results[0].MinPrice)
	assert.Equal(t, "shop", first.Results[0].UserDetail["username"])
	assert.Contains(t, first.Results[0].Details[0].URL, "http://example.com/api/offerdetails/")

	rec = s.do(t, http.MethodGet, "/api/offers/?page=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[listBody](t, rec)
	assert.Len(t, second.Results, 1)
	assert.Nil(t, second.Next)
	require.NotNil(t, second.Previous)
	assert.Equal(t, "http://example.com/api/offers/", *second.Previous)

	for _, path := range []string{"/api/offers/?page=3", "/api/offers/?page=abc", "/api/offers/?page=0"} {
		rec = s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	rec = s.do(t, http.MethodGet, "/api/offers/?page_size=100&min_price=60", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[listBody](t, rec).Count)

	rec = s.do(t, http.MethodGet, "/api/offers/?creator_id=abc", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error.Details, "creator_id")
}

func TestOffers_RetrieveUpdateDelete(t *testing.T) {
	s := newTestServer(t)
	business := s.register(t, "shop", entity.ProfileTypeBusiness)
	rival := s.register(t, "rival", entity.ProfileTypeBusiness)
	offer := s.createOffer(t, business.Token, "Design")
	path := fmt.Sprintf("/api/offers/%d/", offer.ID)

	rec := s.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, path, rival.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, decode[map[string]any](t, rec), "user_detail")

	patch := map[string]any{"details": []map[string]any{{"offer_type": "premium", "price": 250}}}
	rec = s.do(t, http.MethodPatch, path, rival.Token, patch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, path, business.Token, patch)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[offerBody](t, rec)
	require.Len(t, updated.Details, 3)
	for _, d := range updated.Details {
		if d.OfferType == "premium" {
			assert.Equal(t, 250, d.Price)
		}
	}

	rec = s.do(t, http.MethodPatch, path, business.Token, map[string]any{"details": []map[string]any{{"offer_type": "gold", "price": 1}}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error.Details, "details.0.offer_type")

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/offerdetails/%d/", offer.Details[0].ID), rival.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "basic", decode[map[string]any](t, rec)["offer_type"])

	rec = s.do(t, http.MethodGet, path+"qr/", rival.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))

	rec = s.do(t, http.MethodDelete, path, business.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, path, rival.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/offers/abc/", rival.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrders_Workflow(t *testing.T) {
	s := newTestServer(t)
	business := s.register(t, "shop", entity.ProfileTypeBusiness)
	customer := s.register(t, "alice", entity.ProfileTypeCustomer)
	offer := s.createOffer(t, business.Token, "Design")

	rec := s.do(t, http.MethodPost, "/api/orders/", business.Token, map[string]any{"offer_detail_id": offer.Details[1].ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/orders/", business.Token, map[string]any{"offer_detail_id": "abc"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/orders/", customer.Token, map[string]any{"offer_detail_id": "abc"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error.Details, "offer_detail_id")

	rec = s.do(t, http.MethodPost, "/api/orders/", customer.Token, map[string]any{"offer_detail_id": 9999})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/orders/", customer.Token, map[string]any{"offer_detail_id": offer.Details[1].ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[map[string]any](t, rec)
	assert.Equal(t, "in_progress", order["status"])
	assert.Equal(t, "standard", order["offer_type"])
	assert.InDelta(t, 100, order["price"], 0)
	assert.InDelta(t, float64(business.UserID), order["business_user"], 0)
	path := fmt.Sprintf("/api/orders/%v/", order["id"])

	rec = s.do(t, http.MethodPatch, path, customer.Token, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, path, business.Token, map[string]any{"status": "completed", "price": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error.Details, "non_field_errors")

	rec = s.do(t, http.MethodPatch, path, business.Token, map[string]any{"status": "shipped"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error.Details, "status")

	rec = s.do(t, http.MethodPatch, path, business.Token, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", decode[map[string]any](t, rec)["status"])

	countPath := fmt.Sprintf("/api/completed-order-count/%d/", business.UserID)
	rec = s.do(t, http.MethodGet, countPath, customer.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1, decode[map[string]any](t, rec)["completed_order_count"], 0)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/order-count/%d/", business.UserID), customer.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0, decode[map[string]any](t, rec)["order_count"], 0)

	rec = s.do(t, http.MethodGet, "/api/order-count/9999/", customer.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/orders/", customer.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1, decode[map[string]any](t, rec)["count"], 0)

	rec = s.do(t, http.MethodDelete, path, business.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	staff := s.store.AddUser(&entity.User{
		Username: "admin", Email: "admin@example.com", IsStaff: true,
		Profile: &entity.Profile{Type: entity.ProfileTypeCustomer},
	})
	rec = s.do(t, http.MethodDelete, path, fmt.Sprintf("token-%d", staff.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestReviews_Workflow(t *testing.T) {
	s := newTestServer(t)
	business := s.register(t, "shop", entity.ProfileTypeBusiness)
	customer := s.register(t, "alice", entity.ProfileTypeCustomer)
	other := s.register(t, "bob", entity.ProfileTypeCustomer)

	rec := s.do(t, http.MethodPost, "/api/reviews/", customer.Token, map[string]any{"business_user": business.UserID, "description": "Great"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"This field is required."}, decode[errorBody](t, rec).Error.Details["rating"])

	rec = s.do(t, http.MethodPost, "/api/reviews/", business.Token, map[string]any{"description": "Great"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	review := map[string]any{"business_user": business.UserID, "rating": 4, "description": "Great"}
	rec = s.do(t, http.MethodPost, "/api/reviews/", customer.Token, review)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	path := fmt.Sprintf("/api/reviews/%v/", created["id"])

	rec = s.do(t, http.MethodPost, "/api/reviews/", customer.Token, review)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error.Details, "non_field_errors")

	rec = s.do(t, http.MethodPatch, path, other.Token, map[string]any{"rating": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, path, customer.Token, map[string]any{"rating": 5, "business_user": business.UserID})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error.Details, "non_field_errors")

	rec = s.do(t, http.MethodPatch, path, customer.Token, map[string]any{"rating": "high"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error.Details, "rating")

	rec = s.do(t, http.MethodPatch, path, customer.Token, map[string]any{"rating": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 5, decode[map[string]any](t, rec)["rating"], 0)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/reviews/?business_user_id=%d", business.UserID), other.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1, decode[map[string]any](t, rec)["count"], 0)

	rec = s.do(t, http.MethodGet, "/api/base-info/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[map[string]any](t, rec)
	assert.InDelta(t, 1, info["review_count"], 0)
	assert.InDelta(t, 5, info["average_rating"], 0)
	assert.InDelta(t, 1, info["business_profile_count"], 0)

	rec = s.do(t, http.MethodDelete, path, customer.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func (s *testServer) doRaw(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	return s.serve(req, token)
}

func TestAnonymousMalformedBodyIsUnauthorized(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/offers/"},
		{http.MethodPatch, "/api/offers/1/"},
		{http.MethodPost, "/api/orders/"},
		{http.MethodPatch, "/api/orders/1/"},
		{http.MethodPost, "/api/reviews/"},
		{http.MethodPatch, "/api/reviews/1/"},
		{http.MethodPatch, "/api/profile/1/"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := s.doRaw(tt.method, tt.path, "", "{not json")

			assert.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
		})
	}
}

func TestNonPositivePathIDIsUnauthorizedForAnonymous(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/orders/0/", "/api/offers/0/", "/api/reviews/0/", "/api/profile/0/", "/api/order-count/0/"} {
		rec := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := s.do(t, http.MethodPatch, "/api/orders/0/", "", map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	customer := s.register(t, "alice", entity.ProfileTypeCustomer)
	rec = s.do(t, http.MethodPatch, "/api/orders/0/", customer.Token, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOffers_InvalidDetailsAfterRoleCheck(t *testing.T) {
	s := newTestServer(t)
	customer := s.register(t, "alice", entity.ProfileTypeCustomer)
	business := s.register(t, "shop", entity.ProfileTypeBusiness)

	badDetails := `{"title":"Design","description":"d","details":[{"offer_type":"basic"}]}`

	rec := s.doRaw(http.MethodPost, "/api/offers/", "", badDetails)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.doRaw(http.MethodPost, "/api/offers/", customer.Token, badDetails)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.doRaw(http.MethodPost, "/api/offers/", business.Token, badDetails)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[errorBody](t, rec).Error.Details)
}

func TestOffers_MalformedPatchAfterOwnershipCheck(t *testing.T) {
	s := newTestServer(t)
	business := s.register(t, "shop", entity.ProfileTypeBusiness)
	rival := s.register(t, "rival", entity.ProfileTypeBusiness)
	offer := s.createOffer(t, business.Token, "Design")
	path := fmt.Sprintf("/api/offers/%d/", offer.ID)

	rec := s.doRaw(http.MethodPatch, path, rival.Token, `{"details":5}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.doRaw(http.MethodPatch, "/api/offers/999/", rival.Token, `{"details":5}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.doRaw(http.MethodPatch, path, business.Token, `{"details":5}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Error.Details, "details")
}

func TestMalformedPatchAfterOwnershipCheck(t *testing.T) {
	s := newTestServer(t)
	business := s.register(t, "shop", entity.ProfileTypeBusiness)
	customer := s.register(t, "alice", entity.ProfileTypeCustomer)
	other := s.register(t, "bob", entity.ProfileTypeCustomer)
	offer := s.createOffer(t, business.Token, "Design")

	rec := s.do(t, http.MethodPost, "/api/orders/", customer.Token, map[string]any{"offer_detail_id": offer.Details[0].ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orderID := decode[map[string]any](t, rec)["id"]

	rec = s.do(t, http.MethodPost, "/api/reviews/", customer.Token, map[string]any{
		"business_user": business.UserID, "rating": 4, "description": "Good",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reviewID := decode[map[string]any](t, rec)["id"]

	tests := []struct {
		name  string
		path  string
		owner string
	}{
		{"order", fmt.Sprintf("/api/orders/%v/", orderID), business.Token},
		{"review", fmt.Sprintf("/api/reviews/%v/", reviewID), customer.Token},
		{"profile", fmt.Sprintf("/api/profile/%d/", customer.UserID), customer.Token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.doRaw(http.MethodPatch, tt.path, other.Token, "{not json")
			assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

			rec = s.doRaw(http.MethodPatch, tt.path, tt.owner, "{not json")
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec = s.doRaw(http.MethodPatch, "/api/reviews/999/", other.Token, "{not json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
