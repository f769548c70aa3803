package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"portfolio-api/internal/util"
	"portfolio-api/pkg/apierror"
)

const (
	bcryptCost = 10

	minPasswordLen = 6
	maxPasswordLen = 100
	minNameLen     = 2
	maxNameLen     = 50

	bcryptMaxBytes = 72
)

// bcryptInput truncates to the 72 bytes bcrypt actually uses; newer
// x/crypto versions reject longer input instead of ignoring the tail.
func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxBytes {
		b = b[:bcryptMaxBytes]
	}
	return b
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func passwordMatches(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)) == nil
}

func validatePassword(field string, password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLen {
		return apierror.Validation(field, "Password must be at least 6 characters")
	}
	if n > maxPasswordLen {
		return apierror.Validation(field, "Password must not exceed 100 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apierror.Validation("email", "Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return apierror.Validation("email", "Invalid email format")
	}
	return nil
}

func validateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < minNameLen {
		return apierror.Validation("name", "Name must be at least 2 characters")
	}
	if n > maxNameLen {
		return apierror.Validation("name", "Name must not exceed 50 characters")
	}
	return nil
}

// requiredText validates a field that must be present and non-blank.
func requiredText(field string, label string, v *string) (string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", apierror.Validation(field, label+" is required")
	}
	return strings.TrimSpace(*v), nil
}

// optionalText trims v and maps blank input to nil.
func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// patchText applies an update: nil keeps the current value, blank clears it.
func patchText(current *string, v *string) *string {
	if v == nil {
		return current
	}
	return optionalText(v)
}

// slugFor picks an explicit slug when given, else derives one from fallback.
func slugFor(explicit *string, fallback string) (string, error) {
	source := fallback
	if explicit != nil && strings.TrimSpace(*explicit) != "" {
		source = *explicit
	}
	slug := util.Slugify(source)
	if slug == "" {
		return "", apierror.Validation("slug", "Slug could not be derived")
	}
	return slug, nil
}
