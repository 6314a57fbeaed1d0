package model

import (
	"time"

	"gorm.io/datatypes"
)

// OfferModel mirrors the 'offers' table.
type OfferModel struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	UserID      int64   `gorm:"not null;index"`
	Title       string  `gorm:"type:varchar(100);not null"`
	Description string  `gorm:"type:text;not null"`
	Image       *string `gorm:"type:varchar(255)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time `gorm:"index"`

	User    *UserModel          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Details []*OfferDetailModel `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (OfferModel) TableName() string {
	return "offers"
}

// OfferDetailModel mirrors the 'offer_details' table. One row per (offer, tier).
type OfferDetailModel struct {
	ID                 int64                       `gorm:"primaryKey;autoIncrement"`
	OfferID            int64                       `gorm:"not null;uniqueIndex:uq_offer_details_offer_type"`
	Title              string                      `gorm:"type:varchar(100);not null"`
	Revisions          int                         `gorm:"not null"`
	DeliveryTimeInDays int                         `gorm:"not null"`
	Price              int                         `gorm:"not null"`
	Features           datatypes.JSONSlice[string] `gorm:"type:jsonb;not null"`
	OfferType          string                      `gorm:"type:varchar(20);not null;uniqueIndex:uq_offer_details_offer_type"`

	Offer *OfferModel `gorm:"foreignKey:OfferID"`
}

// TableName explicitly sets the table name for GORM.
func (OfferDetailModel) TableName() string {
	return "offer_details"
}
