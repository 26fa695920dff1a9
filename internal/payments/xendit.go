package payments

import (
	"context"
	"fmt"

	"github.com/xendit/xendit-go/v6"
	"github.com/xendit/xendit-go/v6/invoice"
)

// XenditVerifier confirms payments against Xendit invoices. The payment
// reference callers carry is the Xendit invoice id.
type XenditVerifier struct {
	client *xendit.APIClient
}

func NewXenditVerifier(client *xendit.APIClient) *XenditVerifier {
	return &XenditVerifier{client: client}
}

func (v *XenditVerifier) ConfirmPayment(ctx context.Context, paymentReference string) (bool, error) {
	inv, _, err := v.client.InvoiceApi.GetInvoiceById(ctx, paymentReference).Execute()
	if err != nil {
		return false, fmt.Errorf("fetching invoice %s: %w", paymentReference, err)
	}

	switch inv.GetStatus() {
	case invoice.INVOICESTATUS_PAID, invoice.INVOICESTATUS_SETTLED:
		return true, nil
	default:
		return false, nil
	}
}
