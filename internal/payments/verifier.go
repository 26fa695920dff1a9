package payments

import "context"

// Verifier answers whether an externally created payment has settled.
// A false result with a nil error means the provider was reached and the
// payment has not settled; a non-nil error means the provider could not be
// consulted and the caller may retry.
type Verifier interface {
	ConfirmPayment(ctx context.Context, paymentReference string) (bool, error)
}
