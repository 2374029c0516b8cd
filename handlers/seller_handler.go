package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"milkmart/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const sellersCacheKey = "sellers"

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// GetSellerListHandler returns every seller profile, password-stripped.
// Reads go through a redis ZSET keyed by user ID; a miss or a redis
// failure falls back to the database and rebuilds the cache.
func GetSellerListHandler(c *gin.Context, db *gorm.DB, rdb *redis.Client) {
	if rdb != nil {
		cached, err := rdb.ZRange(c, sellersCacheKey, 0, -1).Result()
		if err == nil && len(cached) > 0 {
			sellers := make([]models.User, 0, len(cached))
			for _, member := range cached {
				var seller models.User
				if err := json.Unmarshal([]byte(member), &seller); err != nil {
					logrus.WithError(err).Warn("bad seller cache entry, skipping")
					continue
				}
				sellers = append(sellers, seller)
			}
			c.JSON(http.StatusOK, sellers)
			return
		}
	}

	var sellers []models.User
	err := db.Where("role = ?", models.RoleSeller).Find(&sellers).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load sellers",
		})
		return
	}

	if rdb != nil {
		rebuildSellerCache(c, rdb, sellers)
	}

	if sellers == nil {
		sellers = []models.User{}
	}
	c.JSON(http.StatusOK, sellers)
}

func rebuildSellerCache(c *gin.Context, rdb *redis.Client, sellers []models.User) {
	if err := rdb.Del(c, sellersCacheKey).Err(); err != nil {
		logrus.WithError(err).Warn("failed to reset seller cache")
		return
	}

	for _, seller := range sellers {
		sellerJSON, err := json.Marshal(seller)
		if err != nil {
			logrus.WithError(err).Warn("failed to serialise seller for cache")
			continue
		}
		err = rdb.ZAdd(c, sellersCacheKey, redis.Z{
			Score:  float64(seller.ID),
			Member: sellerJSON,
		}).Err()
		if err != nil {
			logrus.WithError(err).Warn("failed to cache seller")
		}
	}
}

// RefreshSellerToCache replaces one seller's cache entry after a
// registration or profile update. Best effort: the database row is
// already written, so cache failures only cost freshness.
func RefreshSellerToCache(c *gin.Context, rdb *redis.Client, seller *models.User) {
	if rdb == nil {
		return
	}

	score := float64(seller.ID)
	if err := rdb.ZRemRangeByScore(c, sellersCacheKey, formatScore(score), formatScore(score)).Err(); err != nil {
		logrus.WithError(err).Warn("failed to evict seller cache entry")
		return
	}

	sellerJSON, err := json.Marshal(seller)
	if err != nil {
		logrus.WithError(err).Warn("failed to serialise seller for cache")
		return
	}
	err = rdb.ZAdd(c, sellersCacheKey, redis.Z{
		Score:  score,
		Member: sellerJSON,
	}).Err()
	if err != nil {
		logrus.WithError(err).Warn("failed to cache seller")
	}
}
