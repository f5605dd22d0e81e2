// utils/validation.go
package utils

import (
	"net/mail"
	"regexp"
	"strings"
)

// MinPhoneDigits is the shortest phone number accepted for an owner.
const MinPhoneDigits = 10

var (
	nonDigits = regexp.MustCompile(`\D`)
	e164      = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
)

// ValidatePhone reports whether phone is an E.164 number such as +525512345678.
func ValidatePhone(phone string) bool {
	return e164.MatchString(phone)
}

// NormalizePhone strips formatting characters. A number written with a
// leading "+" keeps it and must then be valid E.164; any other number is
// reduced to its digits. ok is false when fewer than MinPhoneDigits remain.
func NormalizePhone(phone string) (normalized string, ok bool) {
	digits := nonDigits.ReplaceAllString(phone, "")
	if len(digits) < MinPhoneDigits {
		return digits, false
	}
	if strings.HasPrefix(strings.TrimSpace(phone), "+") {
		normalized = "+" + digits
		return normalized, ValidatePhone(normalized)
	}
	return digits, true
}

// ToE164 returns phone in E.164 form, prefixing countryCode to a number
// stored without one.
func ToE164(phone, countryCode string) (string, bool) {
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + strings.TrimPrefix(countryCode, "+") + phone
	}
	return phone, ValidatePhone(phone)
}

func ValidateEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == strings.TrimSpace(email)
}
