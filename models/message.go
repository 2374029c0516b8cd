package models

import "gorm.io/gorm"

// Message is an append-only seller notification. Never mutated or
// deleted once written.
type Message struct {
	gorm.Model
	SellerID uint   `gorm:"index;not null" json:"sellerId"`
	OrderID  uint   `json:"orderId"`
	Text     string `json:"text"`
}
