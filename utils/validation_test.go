package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	digits, ok := NormalizePhone("(55) 1234-5678")
	assert.True(t, ok)
	assert.Equal(t, "5512345678", digits)

	_, ok = NormalizePhone("55-12")
	assert.False(t, ok)

	phone, ok := NormalizePhone(" +52 55 9876 5432")
	assert.True(t, ok)
	assert.Equal(t, "+525598765432", phone)

	_, ok = NormalizePhone("+0 55 9876 5432")
	assert.False(t, ok)
	_, ok = NormalizePhone("+52 5598 7654 3210 9876")
	assert.False(t, ok)
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+525512345678"))
	assert.False(t, ValidatePhone("5512345678"))
	assert.False(t, ValidatePhone("+52 55 1234 5678"))
	assert.False(t, ValidatePhone("+0123456789"))
}

func TestToE164(t *testing.T) {
	phone, ok := ToE164("5512345678", "52")
	assert.True(t, ok)
	assert.Equal(t, "+525512345678", phone)

	phone, ok = ToE164("+14155550100", "52")
	assert.True(t, ok)
	assert.Equal(t, "+14155550100", phone)

	phone, ok = ToE164("5512345678", "+52")
	assert.True(t, ok)
	assert.Equal(t, "+525512345678", phone)

	_, ok = ToE164("5512345678", "")
	assert.True(t, ok)
	_, ok = ToE164("0512345678", "")
	assert.False(t, ok)
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("vet@example.com"))
	assert.False(t, ValidateEmail("vet"))
	assert.False(t, ValidateEmail("Vet <vet@example.com>"))
}
