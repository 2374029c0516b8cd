package jwt_test

import (
	"testing"
	"time"

	"milkmart/config"
	"milkmart/jwt"
	"milkmart/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

func testUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		Role:     models.RoleSeller,
		Fname:    "Sita",
		Lname:    "Devi",
		Phone:    "9400000001",
		Email:    "sita@seller.test",
		Password: "irrelevant-hash",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func storeLoginToken(t *testing.T, db *gorm.DB, token string, user *models.User, exp time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.LoginToken{
		Token:          token,
		ExpirationTime: exp,
		UserID:         user.ID,
		Role:           user.Role,
	}).Error)
}

func TestTokenRoundTrip(t *testing.T) {
	db := setupDB(t)
	user := testUser(t, db)

	exp := time.Now().Add(jwt.TokenValidity)
	token, err := jwt.GenerateToken(user, exp.Unix())
	require.NoError(t, err)
	storeLoginToken(t, db, token, user, exp)

	claims, err := jwt.VerifyToken(&token, db)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleSeller, claims.Role)
	assert.Equal(t, user.Phone, claims.Phone)
	assert.Equal(t, user.Fname, claims.Fname)
}

func TestVerifyRejectsRevokedToken(t *testing.T) {
	db := setupDB(t)
	user := testUser(t, db)

	// Well-formed, correctly signed, but no LoginToken row backs it.
	token, err := jwt.GenerateToken(user, time.Now().Add(jwt.TokenValidity).Unix())
	require.NoError(t, err)

	_, err = jwt.VerifyToken(&token, db)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	db := setupDB(t)
	user := testUser(t, db)

	exp := time.Now().Add(-time.Hour)
	token, err := jwt.GenerateToken(user, exp.Unix())
	require.NoError(t, err)
	storeLoginToken(t, db, token, user, exp)

	_, err = jwt.VerifyToken(&token, db)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	db := setupDB(t)

	garbage := "not.a.token"
	_, err := jwt.VerifyToken(&garbage, db)
	assert.Error(t, err)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	db := setupDB(t)
	user := testUser(t, db)

	exp := time.Now().Add(jwt.TokenValidity)
	token, err := jwt.GenerateToken(user, exp.Unix())
	require.NoError(t, err)
	storeLoginToken(t, db, token, user, exp)

	tampered := token[:len(token)-2] + "xx"
	_, err = jwt.VerifyToken(&tampered, db)
	assert.Error(t, err)
}
