package errors

import (
	"strings"
	"unicode"
)

// ValidateCollectionName validates a topology collection name.
// Collection names end up in URL paths, cache keys and Mongo collection
// names, so they are restricted to a conservative character set:
//   - No empty names
//   - Maximum length of 128 characters
//   - ASCII letters, digits, '_' and '-' only
func ValidateCollectionName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "collection name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "collection name too long (max 128 characters)")
	}

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return New(ErrCodeInvalidInput, "collection name contains invalid character %q", r)
		}
	}

	return nil
}

// ValidateVertexID validates a vertex id received from a client.
func ValidateVertexID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "vertex id cannot be empty")
	}

	if len(id) > 512 {
		return New(ErrCodeInvalidInput, "vertex id too long (max 512 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "vertex id contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
