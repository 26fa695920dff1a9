package handlers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/google/uuid"
	"github.com/xendit/xendit-go/v6/invoice"

	"github.com/luxewin/raffle-api/internal/helpers"
	"github.com/luxewin/raffle-api/internal/middleware"
)

type CheckoutRequest struct {
	RaffleID uuid.UUID `json:"raffle_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// CreateCheckout opens a Xendit invoice for raffleID x quantity. The invoice
// id it returns is the payment reference the client later submits the
// purchase with.
func CreateCheckout(c *gin.Context) {
	var req CheckoutRequest
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

	raffle, err := svc.GetRaffle(c.Request.Context(), req.RaffleID)
	if err != nil {
		helpers.RespondWithServiceError(c, err)
		return
	}
	if !raffle.IsActive || !raffle.EndDate.After(time.Now()) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Raffle is not open for purchases.")
		return
	}

	totalCents := int64(req.Quantity) * raffle.TicketPrice

	xenditClient := middleware.GetXenditClient(c)
	if xenditClient == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment client not found.")
		return
	}

	externalID := fmt.Sprintf("raffle-%s-user-%s-%d", raffle.ID, userID.(uuid.UUID), time.Now().Unix())
	invoiceReq := *invoice.NewCreateInvoiceRequest(externalID, float64(totalCents)/100)
	invoiceReq.SetDescription(fmt.Sprintf("%d ticket(s) for %s", req.Quantity, raffle.Title))

	inv, _, xerr := xenditClient.InvoiceApi.CreateInvoice(c.Request.Context()).
		CreateInvoiceRequest(invoiceReq).Execute()
	if xerr != nil {
		logger.Errorf("creating invoice for raffle %s: %v", raffle.ID, xerr)
		helpers.RespondWithError(c, http.StatusServiceUnavailable, "Payment provider unavailable. Please retry.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment_reference": inv.GetId(),
		"invoice_url":       inv.GetInvoiceUrl(),
		"total_amount":      totalCents,
	})
}

// PaymentWebhook acknowledges Xendit invoice callbacks. Settlement state is
// never trusted from the callback body; the purchase flow re-checks the
// invoice with the provider before committing anything.
func PaymentWebhook(c *gin.Context) {
	expected := os.Getenv("XENDIT_CALLBACK_TOKEN")
	if expected == "" || c.GetHeader("X-Callback-Token") != expected {
		helpers.RespondWithError(c, http.StatusUnauthorized, "Invalid callback token.")
		return
	}

	var event map[string]interface{}
	if err := c.ShouldBindJSON(&event); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid callback payload.")
		return
	}

	logger.Infof("payment callback: invoice=%v status=%v", event["id"], event["status"])
	c.JSON(http.StatusOK, gin.H{"received": true})
}
