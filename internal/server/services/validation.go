package services

import (
	"net/mail"
	"strings"
	"unicode"
)

// User-facing messages. The wording mirrors the forms these results are
// rendered into, so they stay stable even if internals change.
const (
	msgNameTooShort      = "Name must be at least 2 characters long."
	msgInvalidEmail      = "Please enter a valid email."
	msgPasswordEmpty     = "Password field must not be empty."
	msgPasswordLength    = "Be at least 8 characters long."
	msgPasswordLetter    = "Contain at least one letter."
	msgPasswordNumber    = "Contain at least one number."
	msgPasswordSpecial   = "Contain at least one special character."
	msgNoAccount         = "No user found with this email."
	msgIncorrectPassword = "Incorrect password."
	msgEmailTaken        = "An account with this email already exists."
	msgSignupFailed      = "An error occurred while creating your account."
	msgLoginFailed       = "Something went wrong. Please try again."
)

func validateSignup(sub Submission) map[string][]string {
	errs := map[string][]string{}

	if len(strings.TrimSpace(sub.Name)) < 2 {
		errs["name"] = []string{msgNameTooShort}
	}
	if !validEmail(sub.Email) {
		errs["email"] = []string{msgInvalidEmail}
	}
	if rules := passwordViolations(sub.Password); len(rules) > 0 {
		errs["password"] = rules
	}

	return errs
}

func validateLogin(sub Submission) map[string][]string {
	errs := map[string][]string{}

	if !validEmail(sub.Email) {
		errs["email"] = []string{msgInvalidEmail}
	}
	if sub.Password == "" {
		errs["password"] = []string{msgPasswordEmpty}
	}

	return errs
}

// passwordViolations returns one message per violated policy rule, so the
// caller can render the full list.
func passwordViolations(password string) []string {
	var violations []string

	if len(password) < 8 {
		violations = append(violations, msgPasswordLength)
	}

	var hasLetter, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsNumber(r):
			hasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !hasLetter {
		violations = append(violations, msgPasswordLetter)
	}
	if !hasNumber {
		violations = append(violations, msgPasswordNumber)
	}
	if !hasSpecial {
		violations = append(violations, msgPasswordSpecial)
	}

	return violations
}

func validEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " \t") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// normalizeEmail lowercases the address so lookups and the unique
// constraint compare case-insensitively.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
