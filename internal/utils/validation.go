package contextutils

// ValidateText checks that translation input text is present and within the configured maximum
func ValidateText(text string, maxLength int) error {
	if len(text) == 0 {
		return NewAppError(ErrorCodeMissingRequired, SeverityWarn, "Missing required field: text", "")
	}
	if maxLength > 0 && len(text) > maxLength {
		return NewAppError(ErrorCodeTextTooLong, SeverityWarn, "Text exceeds maximum length", "")
	}
	return nil
}

// ValidateLanguageCode validates that a language code is properly formatted
func ValidateLanguageCode(langCode string) error {
	if len(langCode) < 2 || len(langCode) > 10 {
		return NewAppError(ErrorCodeInvalidInput, SeverityWarn, "Language code must be 2-10 characters", "")
	}

	// Basic validation - should be alphanumeric with possible hyphens
	for _, char := range langCode {
		if (char < 'a' || char > 'z') && (char < 'A' || char > 'Z') && (char < '0' || char > '9') && char != '-' {
			return NewAppError(ErrorCodeInvalidInput, SeverityWarn, "Invalid language code format", "")
		}
	}

	return nil
}
