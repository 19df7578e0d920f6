package util

import (
	"fmt"
	"regexp"
)

// validSlugChars matches only lowercase alphanumerics and hyphens.
var validSlugChars = regexp.MustCompile(`^[a-z0-9\-]+$`)

// ValidateSlug checks that an identifier (board name, network or metric
// ID) is usable as a storage and URL path key:
//   - At least 2 characters
//   - Only lowercase alphanumerics and hyphens
//   - First and last characters must be alphanumeric
func ValidateSlug(name string) error {
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters, got %d", len(name))
	}

	if !validSlugChars.MatchString(name) {
		return fmt.Errorf("name %q contains invalid characters (only a-z, 0-9, and hyphens are allowed)", name)
	}

	if !isAlphanumeric(name[0]) {
		return fmt.Errorf("name must start with an alphanumeric character, got %q", string(name[0]))
	}

	if name[len(name)-1] == '-' {
		return fmt.Errorf("name must not end with a hyphen, got %q", string(name[len(name)-1]))
	}

	return nil
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
