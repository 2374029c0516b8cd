package routers

import (
	"net/http"

	"milkmart/handlers"
	"milkmart/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRouters assembles the REST surface. rdb may be nil; the seller
// catalog then serves straight from the database.
func SetupRouters(db *gorm.DB, rdb *redis.Client) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Authorization")
		c.Next()
	})
	if err := router.SetTrustedProxies(nil); err != nil {
		logrus.WithError(err).Warn("failed to configure trusted proxies")
	}

	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Token resolution for every route; whether a token is required is
	// decided per group below.
	router.Use(middleware.AuthMiddleware(db))
	{
		router.POST("/api/register", func(c *gin.Context) {
			handlers.RegisterHandler(c, db, rdb)
		})
		router.POST("/api/login", func(c *gin.Context) {
			handlers.LoginHandler(c, db)
		})
		router.GET("/api/sellers", func(c *gin.Context) {
			handlers.GetSellerListHandler(c, db, rdb)
		})

		loginRequired := router.Group("/api")
		loginRequired.Use(middleware.CheckLoginMiddleware())
		{
			loginRequired.POST("/logout", func(c *gin.Context) {
				handlers.LogOutHandler(c, db)
			})
			loginRequired.GET("/me", func(c *gin.Context) {
				handlers.GetMeHandler(c, db)
			})
			loginRequired.PUT("/me", func(c *gin.Context) {
				handlers.UpdateMeHandler(c, db, rdb)
			})

			loginRequired.GET("/cart", func(c *gin.Context) {
				handlers.GetCartHandler(c, db)
			})
			loginRequired.POST("/cart", func(c *gin.Context) {
				handlers.AddToCartHandler(c, db)
			})
			loginRequired.DELETE("/cart/:itemID", func(c *gin.Context) {
				handlers.DeleteCartItemHandler(c, db)
			})

			loginRequired.POST("/orders", func(c *gin.Context) {
				handlers.SendOrderHandler(c, db)
			})
			loginRequired.GET("/orders", func(c *gin.Context) {
				handlers.GetOrderListHandler(c, db)
			})
			loginRequired.GET("/orders/:orderID", func(c *gin.Context) {
				handlers.GetOrderDataHandler(c, db)
			})
			loginRequired.GET("/orders/:orderID/location", func(c *gin.Context) {
				handlers.GetOrderLocationHandler(c, db)
			})
		}

		sellerRequired := router.Group("/api")
		sellerRequired.Use(middleware.CheckLoginMiddleware(), middleware.CheckSellerPermissionMiddleware())
		{
			sellerRequired.POST("/orders/:orderID/accept", func(c *gin.Context) {
				handlers.AcceptOrderHandler(c, db)
			})
			sellerRequired.POST("/orders/:orderID/dispatch", func(c *gin.Context) {
				handlers.DispatchOrderHandler(c, db)
			})
			sellerRequired.POST("/orders/:orderID/deliver", func(c *gin.Context) {
				handlers.DeliverOrderHandler(c, db)
			})
			sellerRequired.POST("/orders/:orderID/location", func(c *gin.Context) {
				handlers.UpdateOrderLocationHandler(c, db)
			})
			sellerRequired.GET("/messages", func(c *gin.Context) {
				handlers.GetMessageListHandler(c, db)
			})
		}
	}

	return router
}
