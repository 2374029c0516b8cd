package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"milkmart/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type orderItemReq struct {
	SellerID uint    `json:"sellerId"`
	Liters   float64 `json:"liters"`
	MilkCost float64 `json:"milkCost"`
}

// SendOrderHandler converts line items into orders, one order per
// resolved item. Explicit items in the request body take precedence
// over the caller's persisted cart; only a cart-sourced submission
// clears the cart afterwards. Line items whose seller id does not
// resolve are skipped, not failed.
func SendOrderHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return
	}

	var buyer models.User
	if err := db.First(&buyer, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Buyer not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to place order",
		})
		return
	}

	// An absent or empty body means "order my cart". A body that is
	// present but fails to parse must not: rejecting it here keeps
	// malformed input from creating orders and draining the cart.
	var orderReq struct {
		Items []orderItemReq `json:"items"`
	}
	if err := c.ShouldBindJSON(&orderReq); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	fromCart := len(orderReq.Items) == 0
	items := orderReq.Items
	if fromCart {
		var cartItems []models.CartItem
		err := db.Where("buyer_id = ?", buyer.ID).Order("created_at").Find(&cartItems).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load cart",
			})
			return
		}
		for _, cartItem := range cartItems {
			items = append(items, orderItemReq{
				SellerID: cartItem.SellerID,
				Liters:   cartItem.Liters,
				MilkCost: cartItem.MilkCost,
			})
		}
	}

	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No items to order",
		})
		return
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to place order",
		})
		return
	}

	newOrders := make([]models.Order, 0, len(items))

	for _, item := range items {
		if item.Liters <= 0 {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "liters must be greater than zero",
			})
			return
		}

		var seller models.User
		err := tx.First(&seller, "id = ? AND role = ?", item.SellerID, models.RoleSeller).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				logrus.WithFields(logrus.Fields{
					"request_id": c.GetString("RequestID"),
					"seller_id":  item.SellerID,
					"buyer_id":   buyer.ID,
				}).Warn("skipping line item with unknown seller")
				continue
			}
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to place order",
			})
			return
		}

		// The seller's live price wins over the cart-captured one.
		unitPrice := item.MilkCost
		if seller.MilkCost != nil {
			unitPrice = *seller.MilkCost
		}
		total := unitPrice * item.Liters

		order := models.Order{
			SellerID:   seller.ID,
			BuyerID:    buyer.ID,
			BuyerName:  buyer.FullName(),
			BuyerPhone: buyer.Phone,
			BuyerEmail: buyer.Email,
			Liters:     item.Liters,
			Total:      total,
			Status:     models.OrderStatusPlaced,
		}
		if err := tx.Create(&order).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to place order",
			})
			return
		}

		message := models.Message{
			SellerID: seller.ID,
			OrderID:  order.ID,
			Text:     fmt.Sprintf("New order from %s: %gL. Total ₹%g", order.BuyerName, order.Liters, order.Total),
		}
		if err := tx.Create(&message).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to place order",
			})
			return
		}

		newOrders = append(newOrders, order)
	}

	if fromCart {
		if err := tx.Where("buyer_id = ?", buyer.ID).Delete(&models.CartItem{}).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to place order",
			})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to place order",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"orders": newOrders,
	})
}

// GetOrderListHandler lists the caller's side of the ledger: sellers
// see their sales, buyers their purchases. Newest first.
func GetOrderListHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return
	}

	role, _ := c.Get("Role")
	ownerColumn := "buyer_id"
	if role == models.RoleSeller {
		ownerColumn = "seller_id"
	}

	var orders []models.Order
	err := db.Where(ownerColumn+" = ?", userID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load orders",
		})
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

// loadOwnedOrder fetches an order and enforces visibility: only the
// order's buyer or seller may see it. Writes the error response itself
// and returns nil on failure.
func loadOwnedOrder(c *gin.Context, db *gorm.DB) *models.Order {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return nil
	}

	var order models.Order
	err := db.First(&order, "id = ?", c.Param("orderID")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load order",
		})
		return nil
	}

	if order.BuyerID != userID.(uint) && order.SellerID != userID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Not your order",
		})
		return nil
	}

	return &order
}

// GetOrderDataHandler reads a single order the caller owns a side of.
func GetOrderDataHandler(c *gin.Context, db *gorm.DB) {
	order := loadOwnedOrder(c, db)
	if order == nil {
		return
	}
	c.JSON(http.StatusOK, order)
}

// transitionOrder is the lifecycle core: an atomic compare-and-set on
// the stored status. The WHERE clause requires the immediately
// preceding state, so a stale or duplicate call affects zero rows and
// is rejected instead of double-applying a timestamp.
func transitionOrder(c *gin.Context, db *gorm.DB, fromStatus, toStatus, stampColumn string) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return
	}

	var order models.Order
	err := db.First(&order, "id = ?", c.Param("orderID")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load order",
		})
		return
	}

	if order.SellerID != userID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Not your order",
		})
		return
	}

	result := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, fromStatus).
		Updates(map[string]interface{}{
			"status":    toStatus,
			stampColumn: time.Now(),
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update order",
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Order must be %s to become %s", fromStatus, toStatus),
		})
		return
	}

	if err := db.First(&order, "id = ?", order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load order",
		})
		return
	}

	if toStatus == models.OrderStatusAccepted {
		message := models.Message{
			SellerID: order.SellerID,
			OrderID:  order.ID,
			Text:     fmt.Sprintf("You accepted order #%d from %s: %gL for ₹%g", order.ID, order.BuyerName, order.Liters, order.Total),
		}
		if err := db.Create(&message).Error; err != nil {
			logrus.WithError(err).WithField("order_id", order.ID).
				Error("failed to record acceptance notification")
		}
	}

	c.JSON(http.StatusOK, order)
}

func AcceptOrderHandler(c *gin.Context, db *gorm.DB) {
	transitionOrder(c, db, models.OrderStatusPlaced, models.OrderStatusAccepted, "accepted_time")
}

func DispatchOrderHandler(c *gin.Context, db *gorm.DB) {
	transitionOrder(c, db, models.OrderStatusAccepted, models.OrderStatusOutForDelivery, "dispatched_time")
}

func DeliverOrderHandler(c *gin.Context, db *gorm.DB) {
	transitionOrder(c, db, models.OrderStatusOutForDelivery, models.OrderStatusDelivered, "delivered_time")
}

// UpdateOrderLocationHandler records a live position mid-delivery. If
// the order has not been dispatched yet, it is opportunistically moved
// to out_for_delivery; an order already past that point keeps its
// status.
func UpdateOrderLocationHandler(c *gin.Context, db *gorm.DB) {
	userID, ok := c.Get("UserID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid token",
		})
		return
	}

	var locationReq struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&locationReq); err != nil || locationReq.Lat == nil || locationReq.Lng == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "lat and lng must be numbers",
		})
		return
	}

	var order models.Order
	err := db.First(&order, "id = ?", c.Param("orderID")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load order",
		})
		return
	}

	if order.SellerID != userID.(uint) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Not your order",
		})
		return
	}

	now := time.Now()
	err = db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"lat":           *locationReq.Lat,
			"lng":           *locationReq.Lng,
			"location_time": now,
		}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update location",
		})
		return
	}

	// Conditional write again: advancing is a no-op once the order is
	// already out for delivery or delivered.
	err = db.Model(&models.Order{}).
		Where("id = ? AND status IN ?", order.ID, []string{models.OrderStatusPlaced, models.OrderStatusAccepted}).
		Updates(map[string]interface{}{
			"status":          models.OrderStatusOutForDelivery,
			"dispatched_time": now,
		}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update order status",
		})
		return
	}

	if err := db.First(&order, "id = ?", order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load order",
		})
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetOrderLocationHandler returns the last recorded position, visible
// to either side of the order.
func GetOrderLocationHandler(c *gin.Context, db *gorm.DB) {
	order := loadOwnedOrder(c, db)
	if order == nil {
		return
	}

	if order.Lat == nil || order.Lng == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No location recorded",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lat":  order.Lat,
		"lng":  order.Lng,
		"time": order.LocationTime,
	})
}
