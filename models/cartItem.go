package models

import "gorm.io/gorm"

type CartItem struct {
	gorm.Model
	BuyerID  uint    `gorm:"index;not null" json:"buyerId"`
	SellerID uint    `gorm:"not null" json:"sellerId"`
	Liters   float64 `gorm:"not null" json:"liters"`
	MilkCost float64 `json:"milkCost"` // unit price captured at add time
}
