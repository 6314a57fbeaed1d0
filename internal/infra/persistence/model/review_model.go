package model

import (
	"time"
)

// ReviewModel mirrors the 'reviews' table. A reviewer reviews a business user at most once.
type ReviewModel struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	BusinessUserID int64  `gorm:"not null;uniqueIndex:uq_reviews_reviewer_business"`
	ReviewerID     int64  `gorm:"not null;uniqueIndex:uq_reviews_reviewer_business"`
	Rating         int    `gorm:"not null"`
	Description    string `gorm:"type:text;not null;default:''"`
	CreatedAt      time.Time
	UpdatedAt      time.Time `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (ReviewModel) TableName() string {
	return "reviews"
}
