package entity

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the OrderStatus is a valid value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Order links a customer to one offer tier of a business user.
// Tier attributes are read through Detail, so they follow later tier edits.
type Order struct {
	ID             int64
	CustomerUserID int64
	BusinessUserID int64
	OfferDetailID  int64
	Status         OrderStatus
	Detail         *OfferDetail
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsParty reports whether the user is the customer or the business of the order.
func (o *Order) IsParty(userID int64) bool {
	return o.CustomerUserID == userID || o.BusinessUserID == userID
}
