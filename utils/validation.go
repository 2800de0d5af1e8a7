package utils

import (
	"errors"
	"fmt"
	"sharevault/models"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 150
	MaxDescriptionLength = 1000
	MinPasswordLength    = 4
	MaxPasswordLength    = 72 // bcrypt input limit
)

// ValidationError marks a malformed request, rejected before any storage call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func ValidateTitle(title string) error {
	if title == "" {
		return NewValidationError("title is required")
	}
	if !utf8.ValidString(title) {
		return NewValidationError("title contains invalid UTF-8 characters")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return NewValidationError(fmt.Sprintf("title too long (max %d characters)", MaxTitleLength))
	}
	return nil
}

func ValidateDescription(description string) error {
	if !utf8.ValidString(description) {
		return NewValidationError("description contains invalid UTF-8 characters")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return NewValidationError(fmt.Sprintf("description too long (max %d characters)", MaxDescriptionLength))
	}
	return nil
}

// ValidateVisibility checks the visibility value and that a password is
// supplied exactly when the file is password-gated.
func ValidateVisibility(visibility models.Visibility, password string) error {
	if !visibility.Valid() {
		return NewValidationError("visibility must be public, private or password")
	}
	if visibility == models.VisibilityPassword {
		return ValidateFilePassword(password)
	}
	if password != "" {
		return NewValidationError("password is only allowed with password visibility")
	}
	return nil
}

func ValidateFilePassword(password string) error {
	if password == "" {
		return NewValidationError("password is required for password visibility")
	}
	if len(password) < MinPasswordLength {
		return NewValidationError(fmt.Sprintf("password too short (min %d characters)", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return NewValidationError(fmt.Sprintf("password too long (max %d characters)", MaxPasswordLength))
	}
	return nil
}

func ValidateFileSize(size, maxSize int64) error {
	if size <= 0 {
		return NewValidationError("file content is empty")
	}
	if maxSize > 0 && size > maxSize {
		return NewValidationError(fmt.Sprintf("file size %d bytes exceeds maximum allowed size of %d bytes", size, maxSize))
	}
	return nil
}
