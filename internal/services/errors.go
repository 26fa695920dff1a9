package services

import (
	"errors"
	"fmt"
)

var (
	ErrRaffleNotFound        = errors.New("raffle not found")
	ErrPurchaseNotFound      = errors.New("purchase not found")
	ErrRaffleClosed          = errors.New("raffle is not open for purchases")
	ErrCapacityExceeded      = errors.New("not enough tickets remaining")
	ErrAmountMismatch        = errors.New("total amount does not match ticket price")
	ErrPaymentNotConfirmed   = errors.New("payment not confirmed")
	ErrWinnerAlreadySelected = errors.New("winner already selected")
	ErrRaffleStillOpen       = errors.New("raffle has not ended yet")
	ErrNoParticipants        = errors.New("no participants in raffle")
	ErrPaymentReferenceInUse = errors.New("payment reference already used by a different purchase")
	ErrRaffleLocked          = errors.New("raffle has purchases and can no longer be repriced or rescheduled")
)

// TransientError marks an I/O failure the caller may retry as-is, as opposed
// to a terminal rejection of the request.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}
