package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/luxewin/raffle-api/internal/helpers"
	"github.com/luxewin/raffle-api/internal/middleware"
	"github.com/luxewin/raffle-api/internal/models"
	"github.com/luxewin/raffle-api/internal/services"
)

type PurchaseRequest struct {
	RaffleID         uuid.UUID `json:"raffle_id" binding:"required"`
	Quantity         int       `json:"quantity" binding:"required,min=1"`
	TotalAmount      int64     `json:"total_amount" binding:"required,min=1"` // cents
	PaymentReference string    `json:"payment_reference" binding:"required"`
}

func SubmitPurchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	svc := middleware.GetRaffleService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Raffle service not found.")
		return
	}

	purchase, err := svc.SubmitPurchase(c.Request.Context(), services.PurchaseInput{
		RaffleID:         req.RaffleID,
		UserID:           userID.(uuid.UUID),
		Quantity:         req.Quantity,
		ClaimedTotal:     req.TotalAmount,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, purchase)
}

func ListPurchases(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	userUUID := userID.(uuid.UUID)

	svc := middleware.GetRaffleService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Raffle service not found.")
		return
	}

	filter := services.PurchaseFilter{UserID: &userUUID}
	if raffleParam := c.Query("raffle_id"); raffleParam != "" {
		raffleID, err := uuid.Parse(raffleParam)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid raffle ID.")
			return
		}
		filter.RaffleID = &raffleID
	}
	filter.Skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))

	purchases, err := svc.ListPurchases(c.Request.Context(), filter)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, purchases)
}

func GetPurchase(c *gin.Context) {
	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid purchase ID.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	svc := middleware.GetRaffleService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Raffle service not found.")
		return
	}

	purchase, err := svc.GetPurchase(c.Request.Context(), purchaseID, userID.(uuid.UUID))
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, purchase)
}

func generateReceiptData(purchase *models.Purchase) string {
	secretKey := os.Getenv("JWT_SECRET")
	signature := generateReceiptSignature(purchase.ID, purchase.RaffleID, purchase.UserID, secretKey)
	return fmt.Sprintf("purchase:%s;raffle:%s;quantity:%d;signature:%s",
		purchase.ID.String(),
		purchase.RaffleID.String(),
		purchase.Quantity,
		signature,
	)
}

func generateReceiptSignature(purchaseID, raffleID, userID uuid.UUID, secretKey string) string {
	data := fmt.Sprintf("%s:%s:%s", purchaseID.String(), raffleID.String(), userID.String())
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateReceiptQR renders a signed QR receipt for one of the caller's
// purchases.
func GenerateReceiptQR(c *gin.Context) {
	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid purchase ID.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	svc := middleware.GetRaffleService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Raffle service not found.")
		return
	}

	purchase, err := svc.GetPurchase(c.Request.Context(), purchaseID, userID.(uuid.UUID))
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}

	qrImage, err := qrcode.Encode(generateReceiptData(purchase), qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}
