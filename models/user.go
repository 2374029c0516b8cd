package models

import "gorm.io/gorm"

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

const (
	MilkTypeCow     = "cow"
	MilkTypeBuffalo = "buffalo"
)

type User struct {
	gorm.Model
	Role     string   `gorm:"not null" json:"role"`
	Fname    string   `gorm:"not null" json:"fname"`
	Lname    string   `gorm:"not null" json:"lname"`
	Phone    string   `gorm:"unique;not null" json:"phone"`
	Email    string   `gorm:"unique;not null" json:"email"`
	Password string   `gorm:"not null" json:"-"` // bcrypt hash, never serialised
	MilkType string   `json:"milkType,omitempty"`
	MilkCost *float64 `json:"milkCost,omitempty"`
	Address  string   `json:"address"`
	Photo    string   `json:"photo,omitempty"`
}

// FullName is the display name snapshotted onto orders.
func (u *User) FullName() string {
	if u.Lname == "" {
		return u.Fname
	}
	return u.Fname + " " + u.Lname
}
