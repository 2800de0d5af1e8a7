package utils

import (
	"sharevault/models"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle("quarterly report.pdf"))
	assert.Error(t, ValidateTitle(""))
	assert.Error(t, ValidateTitle(strings.Repeat("x", MaxTitleLength+1)))
	assert.NoError(t, ValidateTitle(strings.Repeat("x", MaxTitleLength)))
}

func TestValidateDescription(t *testing.T) {
	assert.NoError(t, ValidateDescription(""))
	assert.NoError(t, ValidateDescription("short note"))
	assert.Error(t, ValidateDescription(strings.Repeat("x", MaxDescriptionLength+1)))
}

func TestValidateVisibility(t *testing.T) {
	assert.NoError(t, ValidateVisibility(models.VisibilityPublic, ""))
	assert.NoError(t, ValidateVisibility(models.VisibilityPrivate, ""))
	assert.NoError(t, ValidateVisibility(models.VisibilityPassword, "s3cret"))

	// Password must come exactly with password visibility.
	assert.Error(t, ValidateVisibility(models.VisibilityPassword, ""))
	assert.Error(t, ValidateVisibility(models.VisibilityPublic, "stray"))
	assert.Error(t, ValidateVisibility(models.Visibility("unlisted"), ""))
}

func TestValidateFilePassword(t *testing.T) {
	assert.NoError(t, ValidateFilePassword("good enough"))
	assert.Error(t, ValidateFilePassword(""))
	assert.Error(t, ValidateFilePassword("abc"))
	assert.Error(t, ValidateFilePassword(strings.Repeat("p", MaxPasswordLength+1)))
}

func TestValidateFileSize(t *testing.T) {
	assert.NoError(t, ValidateFileSize(10, 100))
	assert.NoError(t, ValidateFileSize(100, 100))
	assert.Error(t, ValidateFileSize(0, 100))
	assert.Error(t, ValidateFileSize(101, 100))
}

func TestValidationErrorDetection(t *testing.T) {
	err := ValidateTitle("")
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(assert.AnError))
	assert.False(t, IsValidationError(nil))
}
