package models

import (
	"time"

	"gorm.io/gorm"
)

// LoginToken backs token revocation: a JWT is only honoured while its
// row exists. Logout deletes the row.
type LoginToken struct {
	gorm.Model
	Token          string `gorm:"size:512;index"`
	ExpirationTime time.Time
	UserID         uint
	Role           string
}
