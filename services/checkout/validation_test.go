package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateField(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantMsg string
	}{
		{"blank first name", "firstName", "   ", "First name is required"},
		{"first name", "firstName", "Ada", ""},
		{"empty email", "email", "", "Email is required"},
		{"email without tld", "email", "ada@example", "Please enter a valid email address"},
		{"email with space", "email", "ada lovelace@example.com", "Please enter a valid email address"},
		{"email", "email", "ada@example.com", ""},
		{"zip five digits", "zipCode", "94107", ""},
		{"zip plus four", "zipCode", "94107-1234", ""},
		{"zip too short", "zipCode", "9410", "Please enter a valid ZIP code"},
		{"zip bad suffix", "zipCode", "94107-12", "Please enter a valid ZIP code"},
		{"phone plain", "phone", "5551234567", ""},
		{"phone dashes", "phone", "555-123-4567", ""},
		{"phone with country code", "phone", "+1 (555) 123-4567", ""},
		{"phone too short", "phone", "555-1234", "Please enter a valid phone number"},
		{"card 16 digits", "cardNumber", "4111111111111111", ""},
		{"card with spaces", "cardNumber", "4111 1111 1111 1111", ""},
		{"card 13 digits", "cardNumber", "4222222222222", ""},
		{"card too short", "cardNumber", "411111111111", "Please enter a valid card number"},
		{"card too long", "cardNumber", "41111111111111111111", "Please enter a valid card number"},
		{"card letters", "cardNumber", "4111-1111-1111-1111", "Please enter a valid card number"},
		{"expiry", "expiryDate", "09/27", ""},
		{"expiry month 13", "expiryDate", "13/27", "Please enter a valid expiry date (MM/YY)"},
		{"expiry month 00", "expiryDate", "00/27", "Please enter a valid expiry date (MM/YY)"},
		{"expiry four digit year", "expiryDate", "09/2027", "Please enter a valid expiry date (MM/YY)"},
		{"cvv three", "cvv", "123", ""},
		{"cvv four", "cvv", "1234", ""},
		{"cvv two", "cvv", "12", "Please enter a valid CVV"},
		{"blank cvv", "cvv", "", "CVV is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ValidateField(tt.field, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestValidateField_UnknownField(t *testing.T) {
	_, err := ValidateField("favouriteColor", "blue")
	assert.ErrorIs(t, err, ErrUnknownField)
}
