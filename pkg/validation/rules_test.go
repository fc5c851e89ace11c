package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"account-service/pkg/validation"
)

func TestValidEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"new@mail.com", true},
		{"a@b.co", true},
		{"first.last@sub.domain.org", true},
		{"bad", false},
		{"", false},
		{"no-at.mail.com", false},
		{"no-dot@mail", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, validation.ValidEmail(tc.email), "email %q", tc.email)
	}
}

func TestValidPassword(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"abc12345", true},
		{"A1b2C3d4e5", true},
		{"short1", false},      // under 8 chars
		{"abcdefgh", false},    // no digit
		{"12345678", false},    // no letter
		{"abc 1234", false},    // non-alphanumeric
		{"abc@12345", false},   // symbol not allowed
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, validation.ValidPassword(tc.password), "password %q", tc.password)
	}
}
