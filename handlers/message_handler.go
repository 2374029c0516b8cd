package handlers

import (
	"net/http"

	"milkmart/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetMessageListHandler returns the seller's notification feed, newest
// first. The route group already rejects non-sellers.
func GetMessageListHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return
	}

	var messages []models.Message
	err := db.Where("seller_id = ?", userID).Order("created_at DESC").Find(&messages).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load messages",
		})
		return
	}

	if messages == nil {
		messages = []models.Message{}
	}
	c.JSON(http.StatusOK, messages)
}
