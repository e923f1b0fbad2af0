package workererrors

import (
	"fmt"
	"strings"
)

// ExtractUserFriendlyError creates a clean error message for the UI
func ExtractUserFriendlyError(err error) string {
	errStr := err.Error()

	// Common error patterns and their friendly messages
	errorMappings := []struct {
		pattern string
		message string
	}{
		{"template and profile are required", "VALIDATION: Job must carry 'template' and 'profile'"},
		{"frame and profile are required", "VALIDATION: Calibration job must carry 'frame' and 'profile'"},
		{"invalid language", "PROFILE: Unsupported printer language (use A, B, C, D or E)"},
		{"invalid dpi", "PROFILE: Invalid DPI value (use 203, 300 or 600)"},
		{"invalid label size", "PROFILE: Label width and height must be positive"},
		{"unknown element type", "TEMPLATE: Unknown element type in template"},
		{"payload is empty", "BARCODE: Payload is empty"},
		{"check digit is wrong", "BARCODE: Check digit does not match the payload"},
		{"appended the computed check digit", "BARCODE: Payload is missing its check digit"},
		{"encodes digits only", "BARCODE: Payload must be digits only"},
		{"needs exactly", "BARCODE: Payload length does not fit the symbology"},
		{"not connected", "PRINTER: Not connected - check cable and power"},
		{"no supported usb printer", "PRINTER: No USB label printer detected"},
		{"no serial ports", "PRINTER: No serial ports available"},
		{"short write", "PRINTER: Transfer interrupted - check the connection"},
		{"frame is not valid base64", "CALIBRATION: Frame must be base64-encoded"},
		{"frame is not a png", "CALIBRATION: Frame must be a PNG image"},
		{"reference marks", "CALIBRATION: Could not locate enough reference marks"},
	}

	// Check for matching patterns
	for _, mapping := range errorMappings {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(mapping.pattern)) {
			return mapping.message
		}
	}

	// Categorize by error source
	if strings.Contains(errStr, "parse job") {
		return "JSON: Invalid job structure"
	}
	if strings.Contains(errStr, "compile:") {
		return fmt.Sprintf("COMPILE: %s", extractInnerError(errStr))
	}
	if strings.Contains(errStr, "transport:") {
		return fmt.Sprintf("PRINTER: %s", extractInnerError(errStr))
	}
	if strings.Contains(errStr, "render:") {
		return fmt.Sprintf("PREVIEW: %s", extractInnerError(errStr))
	}
	if strings.Contains(errStr, "vision:") {
		return fmt.Sprintf("CALIBRATION: %s", extractInnerError(errStr))
	}

	// Fallback: return cleaned error
	return fmt.Sprintf("ERROR: %s", cleanErrorMessage(errStr))
}

// extractInnerError gets the innermost error message
func extractInnerError(errStr string) string {
	// Find the last colon-separated segment
	parts := strings.Split(errStr, ": ")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return errStr
}

// cleanErrorMessage removes verbose prefixes
func cleanErrorMessage(errStr string) string {
	// Remove common prefixes
	prefixes := []string{
		"parse job: ",
		"compile: ",
		"transport: ",
		"render: ",
		"vision: ",
	}
	result := errStr
	for _, prefix := range prefixes {
		result = strings.TrimPrefix(result, prefix)
	}
	return result
}
