package schema

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FormatFunc reports whether a string satisfies a named format.
type FormatFunc func(string) bool

// Layouts accepted by the date formats.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = time.RFC3339
)

// validator.Validate caches parsed tags and is safe for concurrent use.
var tagValidator = validator.New()

func checkTag(value, tag string) bool {
	return tagValidator.Var(value, tag) == nil
}

// IsEmail reports whether s is an email address.
func IsEmail(s string) bool { return checkTag(s, "email") }

// IsURI reports whether s is an absolute URL with a scheme.
func IsURI(s string) bool { return checkTag(s, "url") }

// IsDate reports whether s is a full date such as 2024-02-29.
func IsDate(s string) bool { return checkTag(s, "datetime="+DateLayout) }

// IsDateTime reports whether s is an RFC 3339 timestamp.
func IsDateTime(s string) bool { return checkTag(s, "datetime="+DateTimeLayout) }

// IsUUID reports whether s is a UUID in its canonical or braced/urn form.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// DefaultFormats returns a fresh copy of the built-in format table.
func DefaultFormats() map[string]FormatFunc {
	return map[string]FormatFunc{
		"email":     IsEmail,
		"uri":       IsURI,
		"url":       IsURI,
		"date":      IsDate,
		"date-time": IsDateTime,
		"uuid":      IsUUID,
	}
}
