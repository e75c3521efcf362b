package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"lounge-chat/internal/domain"
)

// Field length bounds applied to inbound posts, counted in characters
// rather than bytes so multibyte text is not penalized.
const (
	MessageMaxLength = 1000
	NameMaxLength    = 64
)

// ValidateText checks the raw text field from a decoded request body.
// Returns the trimmed text, or a ValidationError when the value is not a
// string, is blank after trimming, or exceeds the length bound.
func ValidateText(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", &domain.ValidationError{Field: "text", Reason: "text must be a string"}
	}

	text := strings.TrimSpace(s)
	if len(text) == 0 {
		return "", &domain.ValidationError{Field: "text", Reason: "text cannot be empty"}
	}
	if utf8.RuneCountInString(text) > MessageMaxLength {
		return "", &domain.ValidationError{Field: "text", Reason: fmt.Sprintf("text must be <= %d characters", MessageMaxLength)}
	}

	return text, nil
}

// ValidateUsername mirrors ValidateText with the name length bound.
func ValidateUsername(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", &domain.ValidationError{Field: "username", Reason: "username must be a string"}
	}

	username := strings.TrimSpace(s)
	if len(username) == 0 {
		return "", &domain.ValidationError{Field: "username", Reason: "username cannot be empty"}
	}
	if utf8.RuneCountInString(username) > NameMaxLength {
		return "", &domain.ValidationError{Field: "username", Reason: fmt.Sprintf("username must be <= %d characters", NameMaxLength)}
	}

	return username, nil
}

// ValidateDisplayName yields fallback when the field is absent, null, or
// blank after trimming; an omitted display name is not an error. A present
// non-string value or an over-long name is rejected.
func ValidateDisplayName(raw any, fallback string) (string, error) {
	if raw == nil {
		return fallback, nil
	}

	s, ok := raw.(string)
	if !ok {
		return "", &domain.ValidationError{Field: "displayName", Reason: "displayName must be a string"}
	}

	displayName := strings.TrimSpace(s)
	if len(displayName) == 0 {
		return fallback, nil
	}
	if utf8.RuneCountInString(displayName) > NameMaxLength {
		return "", &domain.ValidationError{Field: "displayName", Reason: fmt.Sprintf("displayName must be <= %d characters", NameMaxLength)}
	}

	return displayName, nil
}
