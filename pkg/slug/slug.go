package slug

import "regexp"

// slugPattern is the canonical routing-key format: lowercase
// alphanumeric and hyphens, at least one character.
var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// IsValid reports whether s is usable as a module routing key.
func IsValid(s string) bool {
	return slugPattern.MatchString(s)
}
