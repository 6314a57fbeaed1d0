package model

import (
	"time"
)

// OrderModel mirrors the 'orders' table. Tier fields are read through OfferDetail.
type OrderModel struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	CustomerUserID int64  `gorm:"not null;index"`
	BusinessUserID int64  `gorm:"not null;index:idx_orders_business_status"`
	OfferDetailID  int64  `gorm:"not null"`
	Status         string `gorm:"type:varchar(20);not null;default:'in_progress';index:idx_orders_business_status"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	OfferDetail *OfferDetailModel `gorm:"foreignKey:OfferDetailID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}
