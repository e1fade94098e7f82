package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrInvalidLength indicates phone number length is not 10 digits
	ErrInvalidLength = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidPrefix indicates phone number doesn't start with a Rwandan mobile prefix
	ErrInvalidPrefix = errors.New("phone number must start with 072, 073, 078 or 079")
)

// CountryCode is Rwanda's international dialling code
const CountryCode = "250"

// operatorByPrefix maps Rwandan mobile prefixes to their network
var operatorByPrefix = map[string]string{
	"072": "Airtel",
	"073": "Airtel",
	"078": "MTN",
	"079": "MTN",
}

var (
	digitsOnly = regexp.MustCompile(`^\d+$`)
	separators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "", ".", "")
)

// PhoneValidator handles phone number validation
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a Rwandan mobile number.
// Accepts 0781234567, 078 123 4567, 250781234567 or +250 781 234 567 and
// returns the local 10-digit form.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !digitsOnly.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}
	if len(sanitized) != 10 {
		return "", ErrInvalidLength
	}
	if !v.IsValidPrefix(sanitized) {
		return "", ErrInvalidPrefix
	}

	return sanitized, nil
}

// Sanitize strips separators and rewrites a leading 250 country code to 0
func (v *PhoneValidator) Sanitize(phone string) string {
	phone = separators.Replace(phone)

	if strings.HasPrefix(phone, CountryCode) && len(phone) == 12 {
		phone = "0" + phone[len(CountryCode):]
	}

	return phone
}

// IsValidPrefix checks if phone number has a valid Rwandan mobile prefix
func (v *PhoneValidator) IsValidPrefix(phone string) bool {
	if len(phone) < 3 {
		return false
	}
	_, ok := operatorByPrefix[phone[:3]]
	return ok
}

// Format returns the display form 07X XXX XXXX
func (v *PhoneValidator) Format(phone string) (string, error) {
	sanitized, err := v.Validate(phone)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", sanitized[0:3], sanitized[3:6], sanitized[6:10]), nil
}

// ToMSISDN returns the international form without the plus sign, e.g. 250781234567
func (v *PhoneValidator) ToMSISDN(phone string) (string, error) {
	sanitized, err := v.Validate(phone)
	if err != nil {
		return "", err
	}
	return CountryCode + sanitized[1:], nil
}

// GetOperator returns the mobile operator name based on prefix
func (v *PhoneValidator) GetOperator(phone string) (string, error) {
	sanitized, err := v.Validate(phone)
	if err != nil {
		return "", err
	}
	return operatorByPrefix[sanitized[:3]], nil
}

// IsValid is a convenience method that returns true if phone is valid
func (v *PhoneValidator) IsValid(phone string) bool {
	_, err := v.Validate(phone)
	return err == nil
}
