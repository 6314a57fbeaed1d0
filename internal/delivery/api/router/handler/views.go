package handler

import (
	"strconv"
	"time"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// Response representations. Optional profile text serializes as "" rather than null.

type authView struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   int64  `json:"user_id"`
}

type profileView struct {
	User         int64     `json:"user"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	File         string    `json:"file"`
	Location     string    `json:"location"`
	Tel          string    `json:"tel"`
	Description  string    `json:"description"`
	WorkingHours string    `json:"working_hours"`
	Type         string    `json:"type"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

type businessProfileView struct {
	User         int64  `json:"user"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	File         string `json:"file"`
	Location     string `json:"location"`
	Tel          string `json:"tel"`
	Description  string `json:"description"`
	WorkingHours string `json:"working_hours"`
	Type         string `json:"type"`
}

type customerProfileView struct {
	User       int64  `json:"user"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	File       string `json:"file"`
	UploadedAt string `json:"uploaded_at"`
	Type       string `json:"type"`
}

type offerDetailView struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	Revisions          int      `json:"revisions"`
	DeliveryTimeInDays int      `json:"delivery_time_in_days"`
	Price              int      `json:"price"`
	Features           []string `json:"features"`
	OfferType          string   `json:"offer_type"`
}

type offerView struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Image       *string           `json:"image"`
	Description string            `json:"description"`
	Details     []offerDetailView `json:"details"`
}

type detailLinkView struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

type userDetailView struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

type offerSummaryView struct {
	ID              int64            `json:"id"`
	User            int64            `json:"user"`
	Title           string           `json:"title"`
	Image           *string          `json:"image"`
	Description     string           `json:"description"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Details         []detailLinkView `json:"details"`
	MinPrice        *int             `json:"min_price"`
	MinDeliveryTime *int             `json:"min_delivery_time"`
	UserDetail      *userDetailView  `json:"user_detail,omitempty"`
}

type orderView struct {
	ID                 int64     `json:"id"`
	CustomerUser       int64     `json:"customer_user"`
	BusinessUser       int64     `json:"business_user"`
	Title              string    `json:"title"`
	Revisions          int       `json:"revisions"`
	DeliveryTimeInDays int       `json:"delivery_time_in_days"`
	Price              int       `json:"price"`
	Features           []string  `json:"features"`
	OfferType          string    `json:"offer_type"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type reviewView struct {
	ID           int64     `json:"id"`
	BusinessUser int64     `json:"business_user"`
	Reviewer     int64     `json:"reviewer"`
	Rating       int       `json:"rating"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type baseInfoView struct {
	ReviewCount          int64   `json:"review_count"`
	AverageRating        float64 `json:"average_rating"`
	BusinessProfileCount int64   `json:"business_profile_count"`
	OfferCount           int64   `json:"offer_count"`
}

func newAuthView(token string, user *entity.User) authView {
	return authView{Token: token, Username: user.Username, Email: user.Email, UserID: user.ID}
}

func textOrEmpty(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func fileURL(storage service.FileStorage, key *string) string {
	if key == nil || *key == "" {
		return ""
	}

	return storage.URL(*key)
}

func imageURL(storage service.FileStorage, key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	u := storage.URL(*key)

	return &u
}

func profileOf(user *entity.User) *entity.Profile {
	if user.Profile == nil {
		return &entity.Profile{}
	}

	return user.Profile
}

func newProfileView(storage service.FileStorage, user *entity.User) profileView {
	p := profileOf(user)

	return profileView{
		User:         user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		File:         fileURL(storage, p.File),
		Location:     textOrEmpty(p.Location),
		Tel:          textOrEmpty(p.Tel),
		Description:  textOrEmpty(p.Description),
		WorkingHours: textOrEmpty(p.WorkingHours),
		Type:         string(p.Type),
		Email:        user.Email,
		CreatedAt:    user.CreatedAt,
	}
}

func newBusinessProfileView(storage service.FileStorage, user *entity.User) businessProfileView {
	p := profileOf(user)

	return businessProfileView{
		User:         user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		File:         fileURL(storage, p.File),
		Location:     textOrEmpty(p.Location),
		Tel:          textOrEmpty(p.Tel),
		Description:  textOrEmpty(p.Description),
		WorkingHours: textOrEmpty(p.WorkingHours),
		Type:         string(p.Type),
	}
}

func newCustomerProfileView(storage service.FileStorage, user *entity.User) customerProfileView {
	p := profileOf(user)

	uploadedAt := ""
	if p.UploadedAt != nil {
		uploadedAt = p.UploadedAt.UTC().Format(time.RFC3339Nano)
	}

	return customerProfileView{
		User:       user.ID,
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		File:       fileURL(storage, p.File),
		UploadedAt: uploadedAt,
		Type:       string(p.Type),
	}
}

func newOfferDetailView(d *entity.OfferDetail) offerDetailView {
	features := d.Features
	if features == nil {
		features = []string{}
	}

	return offerDetailView{
		ID:                 d.ID,
		Title:              d.Title,
		Revisions:          d.Revisions,
		DeliveryTimeInDays: d.DeliveryTimeInDays,
		Price:              d.Price,
		Features:           features,
		OfferType:          string(d.OfferType),
	}
}

func newOfferView(storage service.FileStorage, offer *entity.Offer) offerView {
	details := make([]offerDetailView, 0, len(offer.Details))
	for _, d := range offer.Details {
		details = append(details, newOfferDetailView(d))
	}

	return offerView{
		ID:          offer.ID,
		Title:       offer.Title,
		Image:       imageURL(storage, offer.Image),
		Description: offer.Description,
		Details:     details,
	}
}

// newOfferSummaryView renders list and retrieve items. Owner details are included when loaded.
func newOfferSummaryView(c echo.Context, storage service.FileStorage, offer *entity.Offer, withOwner bool) offerSummaryView {
	links := make([]detailLinkView, 0, len(offer.Details))
	for _, d := range offer.Details {
		links = append(links, detailLinkView{
			ID:  d.ID,
			URL: absoluteURL(c, "/api/offerdetails/"+strconv.FormatInt(d.ID, 10)+"/"),
		})
	}

	view := offerSummaryView{
		ID:              offer.ID,
		User:            offer.UserID,
		Title:           offer.Title,
		Image:           imageURL(storage, offer.Image),
		Description:     offer.Description,
		CreatedAt:       offer.CreatedAt,
		UpdatedAt:       offer.UpdatedAt,
		Details:         links,
		MinPrice:        offer.MinPrice(),
		MinDeliveryTime: offer.MinDeliveryTime(),
	}

	if withOwner && offer.Owner != nil {
		view.UserDetail = &userDetailView{
			FirstName: offer.Owner.FirstName,
			LastName:  offer.Owner.LastName,
			Username:  offer.Owner.Username,
		}
	}

	return view
}

func newOrderView(order *entity.Order) orderView {
	view := orderView{
		ID:           order.ID,
		CustomerUser: order.CustomerUserID,
		BusinessUser: order.BusinessUserID,
		Status:       string(order.Status),
		Features:     []string{},
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}

	if d := order.Detail; d != nil {
		view.Title = d.Title
		view.Revisions = d.Revisions
		view.DeliveryTimeInDays = d.DeliveryTimeInDays
		view.Price = d.Price
		view.OfferType = string(d.OfferType)
		if d.Features != nil {
			view.Features = d.Features
		}
	}

	return view
}

func newReviewView(review *entity.Review) reviewView {
	return reviewView{
		ID:           review.ID,
		BusinessUser: review.BusinessUserID,
		Reviewer:     review.ReviewerID,
		Rating:       review.Rating,
		Description:  review.Description,
		CreatedAt:    review.CreatedAt,
		UpdatedAt:    review.UpdatedAt,
	}
}

func newBaseInfoView(info *entity.BaseInfo) baseInfoView {
	return baseInfoView{
		ReviewCount:          info.ReviewCount,
		AverageRating:        info.AverageRating,
		BusinessProfileCount: info.BusinessProfileCount,
		OfferCount:           info.OfferCount,
	}
}

func mapSlice[T, V any](items []T, fn func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}

	return out
}
