package services

import "strings"

// trimmedPtr trims the pointed-to value and reports whether it was provided.
func trimmedPtr(value *string) (string, bool) {
	if value == nil {
		return "", false
	}
	return strings.TrimSpace(*value), true
}

// optionalID returns nil for blank ids.
func optionalID(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
