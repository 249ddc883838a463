package checkout

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront-api/models"
)

var ErrUnknownField = errors.New("unknown checkout field")

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipPattern    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	phonePattern  = regexp.MustCompile(`^(\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}$`)
	cardPattern   = regexp.MustCompile(`^\d{13,19}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

type fieldRule struct {
	label   string
	tag     string
	invalid string
}

var fieldRules = map[string]fieldRule{
	"firstName":  {label: "First name", tag: "present"},
	"lastName":   {label: "Last name", tag: "present"},
	"email":      {label: "Email", tag: "present,email_shape", invalid: "Please enter a valid email address"},
	"phone":      {label: "Phone number", tag: "present,na_phone", invalid: "Please enter a valid phone number"},
	"address":    {label: "Address", tag: "present"},
	"city":       {label: "City", tag: "present"},
	"state":      {label: "State", tag: "present"},
	"zipCode":    {label: "ZIP code", tag: "present,zip_code", invalid: "Please enter a valid ZIP code"},
	"country":    {label: "Country", tag: "present"},
	"cardHolder": {label: "Cardholder name", tag: "present"},
	"cardNumber": {label: "Card number", tag: "present,card_number", invalid: "Please enter a valid card number"},
	"expiryDate": {label: "Expiry date", tag: "present,card_expiry", invalid: "Please enter a valid expiry date (MM/YY)"},
	"cvv":        {label: "CVV", tag: "present,cvv", invalid: "Please enter a valid CVV"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("checkout: registering %s: %v", tag, err))
		}
	}

	must("present", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	must("email_shape", matchTrimmed(emailPattern))
	must("zip_code", matchTrimmed(zipPattern))
	must("na_phone", matchTrimmed(phonePattern))
	must("card_expiry", matchTrimmed(expiryPattern))
	must("cvv", matchTrimmed(cvvPattern))
	must("card_number", func(fl validator.FieldLevel) bool {
		digits := strings.Join(strings.Fields(fl.Field().String()), "")
		return cardPattern.MatchString(digits)
	})
	return v
}

func matchTrimmed(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(strings.TrimSpace(fl.Field().String()))
	}
}

// ValidateField checks one form field and returns the message to show next to it, or "".
func ValidateField(field, value string) (string, error) {
	rule, ok := fieldRules[field]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	err := validate.Var(value, rule.tag)
	if err == nil {
		return "", nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Tag() != "present" {
		return rule.invalid, nil
	}
	return rule.label + " is required", nil
}

// KnownField reports whether field belongs to any checkout step.
func KnownField(field string) bool {
	_, ok := fieldRules[field]
	return ok
}

func fieldValue(order *models.OrderData, field string) string {
	switch field {
	case "firstName":
		return order.Customer.FirstName
	case "lastName":
		return order.Customer.LastName
	case "email":
		return order.Customer.Email
	case "phone":
		return order.Customer.Phone
	case "address":
		return order.Shipping.Address
	case "city":
		return order.Shipping.City
	case "state":
		return order.Shipping.State
	case "zipCode":
		return order.Shipping.ZipCode
	case "country":
		return order.Shipping.Country
	case "cardHolder":
		return order.Payment.CardHolder
	case "cardNumber":
		return order.Payment.CardNumber
	case "expiryDate":
		return order.Payment.ExpiryDate
	case "cvv":
		return order.Payment.CVV
	}
	return ""
}

func setFieldValue(order *models.OrderData, field, value string) {
	switch field {
	case "firstName":
		order.Customer.FirstName = value
	case "lastName":
		order.Customer.LastName = value
	case "email":
		order.Customer.Email = value
	case "phone":
		order.Customer.Phone = value
	case "address":
		order.Shipping.Address = value
	case "city":
		order.Shipping.City = value
	case "state":
		order.Shipping.State = value
	case "zipCode":
		order.Shipping.ZipCode = value
	case "country":
		order.Shipping.Country = value
	case "cardHolder":
		order.Payment.CardHolder = value
	case "cardNumber":
		order.Payment.CardNumber = value
	case "expiryDate":
		order.Payment.ExpiryDate = value
	case "cvv":
		order.Payment.CVV = value
	}
}
