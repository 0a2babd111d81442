// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
)

var (
	issnPattern = regexp.MustCompile(`^\d{4}-?\d{3}[\dXx]$`)
	doiPattern  = regexp.MustCompile(`(?i)^(https?://(dx\.)?doi\.org/|doi:\s*)?10\.\d{4,9}/\S+$`)
	isbnPattern = regexp.MustCompile(`^(\d{9}[\dXx]|\d{13})$`)
)

// ValidateISSN accepts 1234-5678 and 12345678 forms with an optional X check digit.
func ValidateISSN(issn string) bool {
	return issnPattern.MatchString(issn)
}

// ValidateDOI accepts bare DOIs and doi.org URLs.
func ValidateDOI(doi string) bool {
	return doiPattern.MatchString(doi)
}

// ValidateISBN checks ISBN-10 or ISBN-13 digits after removing hyphens and spaces.
func ValidateISBN(isbn string) bool {
	compact := strings.NewReplacer("-", "", " ", "").Replace(isbn)
	return isbnPattern.MatchString(compact)
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
