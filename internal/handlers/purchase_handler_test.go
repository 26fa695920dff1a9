package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luxewin/raffle-api/internal/middleware"
	"github.com/luxewin/raffle-api/internal/models"
	"github.com/luxewin/raffle-api/internal/services"
)

type stubVerifier struct {
	settled map[string]bool
}

func (s *stubVerifier) ConfirmPayment(ctx context.Context, ref string) (bool, error) {
	return s.settled[ref], nil
}

type nopEmitter struct{}

func (nopEmitter) Emit(ctx context.Context, kind string, userID uuid.UUID, payload map[string]interface{}) {
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *stubVerifier, *models.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Role{}, &models.User{}, &models.Raffle{}, &models.Purchase{}))

	user := &models.User{Email: "alice@example.com", Password: "hashed", FullName: "Alice"}
	require.NoError(t, db.Create(user).Error)

	verifier := &stubVerifier{settled: map[string]bool{}}
	svc := services.NewRaffleService(db, verifier, nopEmitter{})

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.RaffleServiceMiddleware(svc))
	r.Use(func(c *gin.Context) {
		c.Set("user_id", user.ID)
		c.Next()
	})
	r.POST("/v1/purchases", SubmitPurchase)
	r.GET("/v1/purchases", ListPurchases)

	return r, db, verifier, user
}

func postPurchase(t *testing.T, r *gin.Engine, body PurchaseRequest) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/purchases", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitPurchaseHandler(t *testing.T) {
	r, db, verifier, _ := newTestRouter(t)

	raffle := &models.Raffle{
		Title:        "Handler Raffle",
		TicketPrice:  250,
		TotalTickets: 4,
		StartDate:    time.Now().Add(-time.Hour),
		EndDate:      time.Now().Add(24 * time.Hour),
		IsActive:     true,
	}
	require.NoError(t, db.Create(raffle).Error)
	verifier.settled["pay-ok"] = true

	t.Run("created", func(t *testing.T) {
		w := postPurchase(t, r, PurchaseRequest{
			RaffleID: raffle.ID, Quantity: 2, TotalAmount: 500, PaymentReference: "pay-ok",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var purchase models.Purchase
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &purchase))
		assert.Equal(t, 2, purchase.Quantity)
	})

	t.Run("amount mismatch is a bad request", func(t *testing.T) {
		verifier.settled["pay-bad-amount"] = true
		w := postPurchase(t, r, PurchaseRequest{
			RaffleID: raffle.ID, Quantity: 1, TotalAmount: 9999, PaymentReference: "pay-bad-amount",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("capacity exhaustion is a conflict", func(t *testing.T) {
		verifier.settled["pay-too-many"] = true
		w := postPurchase(t, r, PurchaseRequest{
			RaffleID: raffle.ID, Quantity: 3, TotalAmount: 750, PaymentReference: "pay-too-many",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unsettled payment is a bad request", func(t *testing.T) {
		w := postPurchase(t, r, PurchaseRequest{
			RaffleID: raffle.ID, Quantity: 1, TotalAmount: 250, PaymentReference: "pay-unsettled",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown raffle is not found", func(t *testing.T) {
		verifier.settled["pay-missing"] = true
		w := postPurchase(t, r, PurchaseRequest{
			RaffleID: uuid.New(), Quantity: 1, TotalAmount: 250, PaymentReference: "pay-missing",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("listing returns own purchases", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/purchases?raffle_id=%s", raffle.ID), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var purchases []models.Purchase
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &purchases))
		assert.Len(t, purchases, 1)
	})
}
