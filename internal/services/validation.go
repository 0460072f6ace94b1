package services

import (
	"net/mail"
	"strings"

	"github.com/Harshith014/resumeUploader/internal/auth"
)

const minPasswordLen = 6

const (
	msgNameRequired     = "Name is required"
	msgInvalidEmail     = "Please include a valid email"
	msgPasswordShort    = "Please enter a password with 6 or more characters"
	msgPasswordLong     = "Please enter a password with 72 or fewer bytes"
	msgPasswordRequired = "Password is required"
)

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	return strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") &&
		!strings.HasSuffix(domain, ".")
}

func checkPassword(errs *fieldErrors, password string) {
	switch {
	case len([]rune(password)) < minPasswordLen:
		errs.add("password", msgPasswordShort)
	case len(password) > auth.MaxPasswordBytes:
		errs.add("password", msgPasswordLong)
	}
}

func validateRegister(in RegisterInput) error {
	var errs fieldErrors
	if strings.TrimSpace(in.Name) == "" {
		errs.add("name", msgNameRequired)
	}
	if !validEmail(NormalizeEmail(in.Email)) {
		errs.add("email", msgInvalidEmail)
	}
	checkPassword(&errs, in.Password)
	return errs.err()
}

func validateLogin(email, password string) error {
	var errs fieldErrors
	if !validEmail(NormalizeEmail(email)) {
		errs.add("email", msgInvalidEmail)
	}
	if password == "" {
		errs.add("password", msgPasswordRequired)
	}
	return errs.err()
}

// ValidateProfile checks the supplied profile fields. Empty fields are
// treated as not supplied.
func ValidateProfile(in ProfileInput) error {
	var errs fieldErrors
	if email := NormalizeEmail(in.Email); email != "" && !validEmail(email) {
		errs.add("email", msgInvalidEmail)
	}
	if in.Password != "" {
		checkPassword(&errs, in.Password)
	}
	return errs.err()
}
