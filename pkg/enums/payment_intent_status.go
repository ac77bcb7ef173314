package enums

import "fmt"

// PaymentIntentStatus mirrors the status values returned by the payment backend.
type PaymentIntentStatus string

const (
	PaymentIntentStatusRequiresPaymentMethod PaymentIntentStatus = "requires_payment_method"
	PaymentIntentStatusRequiresConfirmation  PaymentIntentStatus = "requires_confirmation"
	PaymentIntentStatusSucceeded             PaymentIntentStatus = "succeeded"
	PaymentIntentStatusCanceled              PaymentIntentStatus = "canceled"
)

var validPaymentIntentStatuses = []PaymentIntentStatus{
	PaymentIntentStatusRequiresPaymentMethod,
	PaymentIntentStatusRequiresConfirmation,
	PaymentIntentStatusSucceeded,
	PaymentIntentStatusCanceled,
}

// String implements fmt.Stringer.
func (p PaymentIntentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentIntentStatus.
func (p PaymentIntentStatus) IsValid() bool {
	for _, candidate := range validPaymentIntentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentIntentStatus converts raw input into a PaymentIntentStatus.
func ParsePaymentIntentStatus(value string) (PaymentIntentStatus, error) {
	for _, candidate := range validPaymentIntentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment intent status %q", value)
}
