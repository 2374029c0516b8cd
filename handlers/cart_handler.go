package handlers

import (
	"net/http"

	"milkmart/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AddToCartHandler stages a prospective line item for the caller. The
// unit price is captured as sent and not re-validated against the
// seller's live price until placement.
func AddToCartHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return
	}

	var cartItemReq struct {
		SellerID uint    `json:"sellerId" binding:"required"`
		Liters   float64 `json:"liters" binding:"required"`
		MilkCost float64 `json:"milkCost"`
	}
	if err := c.ShouldBindJSON(&cartItemReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing sellerId or liters",
		})
		return
	}
	if cartItemReq.Liters <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "liters must be greater than zero",
		})
		return
	}

	cartItem := models.CartItem{
		BuyerID:  userID.(uint),
		SellerID: cartItemReq.SellerID,
		Liters:   cartItemReq.Liters,
		MilkCost: cartItemReq.MilkCost,
	}
	if err := db.Create(&cartItem).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to add cart item",
		})
		return
	}

	c.JSON(http.StatusCreated, cartItem)
}

// GetCartHandler lists the caller's own cart items.
func GetCartHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return
	}

	var cartItems []models.CartItem
	err := db.Where("buyer_id = ?", userID).Order("created_at").Find(&cartItems).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load cart",
		})
		return
	}

	if cartItems == nil {
		cartItems = []models.CartItem{}
	}
	c.JSON(http.StatusOK, cartItems)
}

// DeleteCartItemHandler removes one item, but only when both the item
// id and the owning buyer match. A miss is reported honestly as 404.
func DeleteCartItemHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return
	}

	itemID := c.Param("itemID")

	result := db.Where("id = ? AND buyer_id = ?", itemID, userID).Delete(&models.CartItem{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to remove cart item",
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Cart item not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
	})
}
