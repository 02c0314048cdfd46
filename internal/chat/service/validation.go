package service

import (
	"strings"
	"unicode/utf8"

	commonerrors "github.com/yuizumi/chatspace/internal/common/errors"
)

const (
	MaxNameLength    = 50
	MaxContentLength = 1000
)

// ValidateUserName trims the display name and enforces its length bounds.
// The returned error message names the violated constraint; it is shown to
// the caller as-is.
func ValidateUserName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", commonerrors.NewInvalidInput("Name cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return "", commonerrors.NewInvalidInput("Name cannot exceed 50 characters")
	}
	return trimmed, nil
}

// ValidateMessageContent trims the message body and enforces its length
// bounds.
func ValidateMessageContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", commonerrors.NewInvalidInput("Message content cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxContentLength {
		return "", commonerrors.NewInvalidInput("Message content cannot exceed 1000 characters")
	}
	return trimmed, nil
}
