package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderStatusPlaced         = "placed"
	OrderStatusAccepted       = "accepted"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
)

// Order is one line item sold by one seller to one buyer. CreatedAt is
// the placed time; each later transition stamps its own column. Buyer
// contact fields are snapshots so profile edits never rewrite history.
type Order struct {
	gorm.Model
	SellerID       uint       `gorm:"index;not null" json:"sellerId"`
	BuyerID        uint       `gorm:"index;not null" json:"buyerId"`
	BuyerName      string     `json:"buyerName"`
	BuyerPhone     string     `json:"buyerPhone"`
	BuyerEmail     string     `json:"buyerEmail"`
	Liters         float64    `gorm:"not null" json:"liters"`
	Total          float64    `gorm:"not null" json:"total"`
	Status         string     `gorm:"not null" json:"status"`
	AcceptedTime   *time.Time `json:"acceptedTime,omitempty"`
	DispatchedTime *time.Time `json:"dispatchedTime,omitempty"`
	DeliveredTime  *time.Time `json:"deliveredTime,omitempty"`
	Lat            *float64   `json:"lat,omitempty"`
	Lng            *float64   `json:"lng,omitempty"`
	LocationTime   *time.Time `json:"locationTime,omitempty"`
}
