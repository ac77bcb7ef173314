package enums

import "fmt"

// CheckoutStep tracks where a checkout session sits in its lifecycle.
type CheckoutStep string

const (
	CheckoutStepReview     CheckoutStep = "review"
	CheckoutStepPayment    CheckoutStep = "payment"
	CheckoutStepProcessing CheckoutStep = "processing"
	CheckoutStepSuccess    CheckoutStep = "success"
)

var validCheckoutSteps = []CheckoutStep{
	CheckoutStepReview,
	CheckoutStepPayment,
	CheckoutStepProcessing,
	CheckoutStepSuccess,
}

// String implements fmt.Stringer.
func (c CheckoutStep) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStep.
func (c CheckoutStep) IsValid() bool {
	for _, candidate := range validCheckoutSteps {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range validCheckoutSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}
