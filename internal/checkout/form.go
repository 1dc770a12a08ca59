package checkout

import "github.com/kevinvillajim/bcommerce-checkout/internal/domain"

// Form is what the user entered on the checkout page.
type Form struct {
	ShippingAddress    domain.Address     `json:"shippingAddress"`
	BillingAddress     *domain.Address    `json:"billingAddress,omitempty"`
	SameBillingAddress bool               `json:"sameBillingAddress"`
	Payment            domain.PaymentInfo `json:"payment"`
}

// Billing returns the billing address that is sent upstream. It is the
// shipping address when the user asked for the same address.
func (f Form) Billing() domain.Address {
	if f.SameBillingAddress || f.BillingAddress == nil {
		return f.ShippingAddress
	}
	return *f.BillingAddress
}

// ValidateAddresses checks the shipping address and, unless the same
// address flag is set, the billing address.
func ValidateAddresses(f Form) domain.ValidationErrors {
	errs := f.ShippingAddress.Validate("shipping")

	if !f.SameBillingAddress {
		if f.BillingAddress == nil {
			errs.Add("billing", "billing address is required")
		} else {
			errs = append(errs, f.BillingAddress.Validate("billing")...)
		}
	}

	return errs
}

// ValidateForm runs every rule that blocks submission: addresses and the
// fields of the selected payment method.
func ValidateForm(f Form) domain.ValidationErrors {
	errs := ValidateAddresses(f)
	return append(errs, f.Payment.Validate()...)
}
