package entity

// BaseInfo is the public marketplace summary.
type BaseInfo struct {
	ReviewCount          int64
	AverageRating        float64 // Rounded to one decimal, 0 without reviews.
	BusinessProfileCount int64
	OfferCount           int64
}
