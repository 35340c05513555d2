package auth

import (
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// Strength grades a password for the sign-up meter
type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

// ValidateEmail checks the address shape before any provider call
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &AuthError{Category: CategoryInvalidCredentials, Code: CodeMissingField, Message: "Email is required"}
	}
	if !emailPattern.MatchString(email) {
		return &AuthError{Category: CategoryInvalidCredentials, Code: CodeInvalidEmail, Message: "Please enter a valid email address"}
	}
	return nil
}

// ValidatePassword enforces the sign-up password policy: at least eight
// characters with an upper-case letter, a lower-case letter and a digit.
func ValidatePassword(password string) error {
	weak := func(msg string) error {
		return &AuthError{Category: CategoryWeakPassword, Code: CodeWeakPassword, Message: msg}
	}
	if len([]rune(password)) < MinPasswordLength {
		return weak("Password must be at least 8 characters long")
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper {
		return weak("Password must contain at least one uppercase letter")
	}
	if !lower {
		return weak("Password must contain at least one lowercase letter")
	}
	if !digit {
		return weak("Password must contain at least one number")
	}
	return nil
}

// PasswordStrength grades password. Policy-compliant passwords are medium;
// those that also have a symbol or twelve or more characters are strong.
func PasswordStrength(password string) Strength {
	if ValidatePassword(password) != nil {
		return StrengthWeak
	}
	if len([]rune(password)) >= 12 || strings.IndexFunc(password, isSymbol) >= 0 {
		return StrengthStrong
	}
	return StrengthMedium
}

func isSymbol(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
