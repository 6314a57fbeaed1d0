package entity

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a customer's rating of a business user. One per reviewer and business.
type Review struct {
	ID             int64
	BusinessUserID int64
	ReviewerID     int64
	Rating         int
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RatingInRange reports whether rating lies in the accepted scale.
func RatingInRange(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
