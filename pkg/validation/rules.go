package validation

import "regexp"

// Strictly formatting email in format "xxxx@yyyy.zzzz"
var mailRegex = regexp.MustCompile(`.+@.+\..+`)

var alnumPwdRegex = regexp.MustCompile(`^[A-Za-z\d]{8,}$`)

// ValidEmail reports whether s has a plausible local@domain.tld shape.
func ValidEmail(s string) bool {
	return mailRegex.MatchString(s)
}

// ValidPassword requires at least 8 alphanumeric characters with at least one
// letter and one digit. Go's regexp has no lookahead, so the letter/digit
// presence is checked separately.
func ValidPassword(s string) bool {
	if !alnumPwdRegex.MatchString(s) {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasLetter = true
		}
	}
	return hasLetter && hasDigit
}
