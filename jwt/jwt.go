package jwt

import (
	"errors"
	"os"
	"time"

	"milkmart/models"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// TokenValidity is the fixed lifetime of every issued token.
const TokenValidity = 7 * 24 * time.Hour

var ErrMalformedClaims = errors.New("jwt: malformed claims")

// Claims is the identity carried by a verified token. Ownership checks
// trust these verbatim; the current role is not re-fetched per call.
type Claims struct {
	UserID uint
	Role   string
	Phone  string
	Fname  string
}

func secretKey() []byte {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return []byte(secret)
	}
	return []byte("dev_secret")
}

// GenerateToken signs an HS256 token embedding the user's identity.
func GenerateToken(user *models.User, expTime int64) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["userID"] = user.ID
	claims["role"] = user.Role
	claims["phone"] = user.Phone
	claims["fname"] = user.Fname
	claims["exp"] = expTime

	tokenString, err := token.SignedString(secretKey())
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyToken checks signature and expiry, then requires a live
// LoginToken row so logged-out tokens stop working immediately.
func VerifyToken(tokenString *string, db *gorm.DB) (*Claims, error) {
	token, err := jwt.Parse(*tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secretKey(), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	var loginToken models.LoginToken
	err = db.Where("token = ?", *tokenString).First(&loginToken).Error
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformedClaims
	}
	userID, ok := mapClaims["userID"].(float64)
	if !ok {
		return nil, ErrMalformedClaims
	}
	role, _ := mapClaims["role"].(string)
	phone, _ := mapClaims["phone"].(string)
	fname, _ := mapClaims["fname"].(string)

	return &Claims{
		UserID: uint(userID),
		Role:   role,
		Phone:  phone,
		Fname:  fname,
	}, nil
}
