package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"milkmart/config"
	"milkmart/routers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupRouter builds the full engine over a fresh in-memory database,
// so every test exercises the real middleware chain and routes.
func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Each sqlite :memory: connection is its own database; pin the
	// pool to one connection so all queries see the same schema.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))

	return routers.SetupRouters(db, nil), db
}

// doRawRequest sends the body exactly as given, for exercising inputs
// that must not survive JSON encoding (malformed payloads).
func doRawRequest(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doRequest(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type authResult struct {
	Token string
	ID    uint
}

func register(t *testing.T, r *gin.Engine, payload map[string]interface{}) authResult {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"ID"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.NotZero(t, resp.User.ID)
	return authResult{Token: resp.Token, ID: resp.User.ID}
}

func registerBuyer(t *testing.T, r *gin.Engine, phone string) authResult {
	t.Helper()
	return register(t, r, map[string]interface{}{
		"role":     "buyer",
		"fname":    "Basu",
		"lname":    "Rao",
		"phone":    phone,
		"email":    phone + "@buyer.test",
		"password": "secret123",
		"address":  "12 Lake Road",
	})
}

func registerSeller(t *testing.T, r *gin.Engine, phone string, milkCost float64) authResult {
	t.Helper()
	return register(t, r, map[string]interface{}{
		"role":     "seller",
		"fname":    "Sita",
		"lname":    "Devi",
		"phone":    phone,
		"email":    phone + "@seller.test",
		"password": "secret123",
		"milkType": "cow",
		"milkCost": milkCost,
		"address":  "4 Dairy Lane",
	})
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
