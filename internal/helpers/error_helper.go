package helpers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luxewin/raffle-api/internal/services"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: customMessage,
	})
}

// RespondWithServiceError maps the service error taxonomy onto HTTP statuses.
// Transient failures become 503 so clients know a plain retry may succeed;
// everything else is terminal for the request as submitted.
func RespondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRaffleNotFound),
		errors.Is(err, services.ErrPurchaseNotFound):
		RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrCapacityExceeded),
		errors.Is(err, services.ErrPaymentReferenceInUse),
		errors.Is(err, services.ErrRaffleLocked):
		RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrRaffleClosed),
		errors.Is(err, services.ErrAmountMismatch),
		errors.Is(err, services.ErrPaymentNotConfirmed),
		errors.Is(err, services.ErrWinnerAlreadySelected),
		errors.Is(err, services.ErrRaffleStillOpen),
		errors.Is(err, services.ErrNoParticipants),
		errors.Is(err, services.ErrInvalidRaffle):
		RespondWithError(c, http.StatusBadRequest, err.Error())
	case services.IsTransient(err):
		RespondWithError(c, http.StatusServiceUnavailable, "Temporary failure. Please retry.")
	default:
		RespondWithError(c, http.StatusInternalServerError, "Unexpected error.")
	}
}
