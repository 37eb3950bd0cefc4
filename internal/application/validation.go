package application

import (
	"fmt"
	"strings"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// ValidateOneOf checks that value is one of the allowed values
func ValidateOneOf(fieldName, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   fieldName,
		Message: fmt.Sprintf("%s must be one of %s, got: %q", formatFieldName(fieldName), strings.Join(allowed, ", "), value),
	}
}

// ValidatePositive checks that a count is at least one
func ValidatePositive(fieldName string, n int) error {
	if n < 1 {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be at least 1, got: %d", formatFieldName(fieldName), n),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "sourcePath" -> "source path")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"sourcePath":    "source path",
		"outputPath":    "output path",
		"targetVersion": "target version",
		"mileagePolicy": "mileage policy",
		"fallback":      "fallback",
		"runID":         "run ID",
		"workers":       "workers",
		"dir":           "directory",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}
