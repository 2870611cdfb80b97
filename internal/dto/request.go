package dto

import "strings"

// PurchaseRequest is the optional body of a purchase. An empty or missing
// payment_reference is stored as NULL.
type PurchaseRequest struct {
	PaymentReference *string `json:"payment_reference"`
}

func (r PurchaseRequest) Reference() *string {
	if r.PaymentReference == nil || strings.TrimSpace(*r.PaymentReference) == "" {
		return nil
	}
	return r.PaymentReference
}
