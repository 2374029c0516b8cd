package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"milkmart/jwt"
	"milkmart/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// ValidateEmail checks the address shape before any uniqueness check.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validMilkType(milkType string) bool {
	return milkType == models.MilkTypeCow || milkType == models.MilkTypeBuffalo
}

func issueToken(db *gorm.DB, user *models.User) (string, error) {
	expTime := time.Now().Add(jwt.TokenValidity)
	token, err := jwt.GenerateToken(user, expTime.Unix())
	if err != nil {
		return "", err
	}

	loginToken := models.LoginToken{
		Token:          token,
		ExpirationTime: expTime,
		UserID:         user.ID,
		Role:           user.Role,
	}
	if err := db.Create(&loginToken).Error; err != nil {
		return "", err
	}

	return token, nil
}

// RegisterHandler creates a buyer or seller account and logs it in.
func RegisterHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	var registerReq struct {
		Role     string   `json:"role" binding:"required"`
		Fname    string   `json:"fname" binding:"required"`
		Lname    string   `json:"lname" binding:"required"`
		Phone    string   `json:"phone" binding:"required"`
		Email    string   `json:"email" binding:"required"`
		Password string   `json:"password" binding:"required"`
		MilkType string   `json:"milkType"`
		MilkCost *float64 `json:"milkCost"`
		Address  string   `json:"address"`
		Photo    string   `json:"photo"`
	}
	if err := c.ShouldBindJSON(&registerReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing fields",
		})
		return
	}

	if registerReq.Role != models.RoleBuyer && registerReq.Role != models.RoleSeller {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Role must be buyer or seller",
		})
		return
	}

	if !ValidateEmail(registerReq.Email) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid email",
		})
		return
	}

	if registerReq.Role == models.RoleSeller {
		if registerReq.MilkCost == nil || registerReq.MilkType == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Seller must provide milkType and milkCost",
			})
			return
		}
		if !validMilkType(registerReq.MilkType) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "milkType must be cow or buffalo",
			})
			return
		}
		if *registerReq.MilkCost <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "milkCost must be greater than zero",
			})
			return
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registerReq.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Registration failed",
		})
		return
	}

	newUser := models.User{
		Role:     registerReq.Role,
		Fname:    registerReq.Fname,
		Lname:    registerReq.Lname,
		Phone:    registerReq.Phone,
		Email:    strings.ToLower(registerReq.Email),
		Password: string(hashedPassword),
		Address:  registerReq.Address,
		Photo:    registerReq.Photo,
	}
	if registerReq.Role == models.RoleSeller {
		newUser.MilkType = registerReq.MilkType
		newUser.MilkCost = registerReq.MilkCost
	}

	// The unique indexes on phone and email are authoritative: no
	// check-then-create, so concurrent duplicates still come back as
	// a conflict rather than a raw constraint failure. Email is
	// stored lowercased, which makes its uniqueness case-insensitive.
	if err := db.Create(&newUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "User already exists",
			})
			return
		}
		logrus.WithError(err).Error("failed to store new user")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Registration failed",
		})
		return
	}

	token, err := issueToken(db, &newUser)
	if err != nil {
		logrus.WithError(err).Error("failed to issue token at registration")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Registration failed",
		})
		return
	}

	if newUser.Role == models.RoleSeller {
		RefreshSellerToCache(c, rdb, &newUser)
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  newUser,
		"token": token,
	})
}

// LoginHandler authenticates by phone and password. Unknown phone and
// wrong password are deliberately indistinguishable to the caller.
func LoginHandler(c *gin.Context, db *gorm.DB) {
	var loginReq struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing fields",
		})
		return
	}

	var user models.User
	err := db.First(&user, "phone = ?", loginReq.Phone).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid credentials",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Login failed",
		})
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginReq.Password))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid credentials",
		})
		return
	}

	token, err := issueToken(db, &user)
	if err != nil {
		logrus.WithError(err).Error("failed to issue token at login")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Login failed",
		})
		return
	}

	c.Header("Authorization", "Bearer "+token)
	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// LogOutHandler revokes the presented token.
func LogOutHandler(c *gin.Context, db *gorm.DB) {
	token, exists := c.Get("Token")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "No token",
		})
		return
	}

	result := db.Delete(&models.LoginToken{}, "token = ?", token)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Logout failed",
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Already logged out",
		})
		return
	}

	c.Header("Authorization", "")
	c.JSON(http.StatusOK, gin.H{
		"ok": true,
	})
}

// GetMeHandler returns the caller's own profile.
func GetMeHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return
	}

	var user models.User
	err := db.First(&user, "id = ?", userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load profile",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMeHandler applies a partial profile update. Provided fields
// overwrite, absent fields are left alone. Pricing fields only apply
// to sellers.
func UpdateMeHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load profile",
		})
		return
	}

	var updateReq struct {
		Fname    *string  `json:"fname"`
		Lname    *string  `json:"lname"`
		Email    *string  `json:"email"`
		Address  *string  `json:"address"`
		Photo    *string  `json:"photo"`
		MilkType *string  `json:"milkType"`
		MilkCost *float64 `json:"milkCost"`
	}
	if err := c.ShouldBindJSON(&updateReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	if updateReq.Email != nil {
		email := strings.ToLower(*updateReq.Email)
		if !ValidateEmail(email) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid email",
			})
			return
		}
		if email != user.Email {
			var other models.User
			err := db.First(&other, "email = ? AND id <> ?", email, user.ID).Error
			if err == nil {
				c.JSON(http.StatusConflict, gin.H{
					"error": "Email already in use",
				})
				return
			}
			if err != gorm.ErrRecordNotFound {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to update profile",
				})
				return
			}
		}
		user.Email = email
	}

	if updateReq.Fname != nil {
		user.Fname = *updateReq.Fname
	}
	if updateReq.Lname != nil {
		user.Lname = *updateReq.Lname
	}
	if updateReq.Address != nil {
		user.Address = *updateReq.Address
	}
	if updateReq.Photo != nil {
		user.Photo = *updateReq.Photo
	}

	if user.Role == models.RoleSeller {
		if updateReq.MilkType != nil {
			if !validMilkType(*updateReq.MilkType) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "milkType must be cow or buffalo",
				})
				return
			}
			user.MilkType = *updateReq.MilkType
		}
		if updateReq.MilkCost != nil {
			if *updateReq.MilkCost <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "milkCost must be greater than zero",
				})
				return
			}
			user.MilkCost = updateReq.MilkCost
		}
	}

	// The early email lookup gives the friendly message; the unique
	// index still backstops a concurrent claim of the same address.
	if err := db.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Email already in use",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update profile",
		})
		return
	}

	if user.Role == models.RoleSeller {
		RefreshSellerToCache(c, rdb, &user)
	}

	c.JSON(http.StatusOK, user)
}
