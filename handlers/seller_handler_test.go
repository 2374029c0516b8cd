package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSellerListIsPublicAndStripped(t *testing.T) {
	r, _ := setupRouter(t)
	registerBuyer(t, r, "9300000001")
	seller := registerSeller(t, r, "9300000002", 45)

	w := doRequest(r, http.MethodGet, "/api/sellers", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sellers []map[string]interface{}
	decodeBody(t, w, &sellers)
	require.Len(t, sellers, 1)

	assert.Equal(t, float64(seller.ID), sellers[0]["ID"])
	assert.Equal(t, "seller", sellers[0]["role"])
	assert.Equal(t, "cow", sellers[0]["milkType"])
	assert.Equal(t, 45.0, sellers[0]["milkCost"])
	assert.NotContains(t, sellers[0], "password")
	assert.NotContains(t, sellers[0], "Password")
}

func TestSellerListEmpty(t *testing.T) {
	r, _ := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/api/sellers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestMessagesAreSellerOnly(t *testing.T) {
	r, _ := setupRouter(t)
	buyer := registerBuyer(t, r, "9300000003")
	seller := registerSeller(t, r, "9300000004", 45)

	w := doRequest(r, http.MethodGet, "/api/messages", buyer.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, http.MethodGet, "/api/messages", seller.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = doRequest(r, http.MethodGet, "/api/messages", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMessagesArePerSeller(t *testing.T) {
	r, _ := setupRouter(t)
	sellerA := registerSeller(t, r, "9300000005", 45)
	sellerB := registerSeller(t, r, "9300000006", 55)
	buyer := registerBuyer(t, r, "9300000007")

	w := doRequest(r, http.MethodPost, "/api/orders", buyer.Token, map[string]interface{}{
		"items": []map[string]interface{}{
			{"sellerId": sellerA.ID, "liters": 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var messages []map[string]interface{}
	decodeBody(t, doRequest(r, http.MethodGet, "/api/messages", sellerA.Token, nil), &messages)
	assert.Len(t, messages, 1)

	decodeBody(t, doRequest(r, http.MethodGet, "/api/messages", sellerB.Token, nil), &messages)
	assert.Empty(t, messages)
}
