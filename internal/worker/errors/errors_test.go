package workererrors

import (
	"errors"
	"testing"
)

func TestExtractUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected string
	}{
		// Specific Error Mappings
		{
			name:     "Missing template and profile",
			input:    errors.New("parse job: template and profile are required"),
			expected: "VALIDATION: Job must carry 'template' and 'profile'",
		},
		{
			name:     "Missing calibration frame",
			input:    errors.New("parse job: frame and profile are required"),
			expected: "VALIDATION: Calibration job must carry 'frame' and 'profile'",
		},
		{
			name:     "Invalid language",
			input:    errors.New("compile: invalid language \"Z\""),
			expected: "PROFILE: Unsupported printer language (use A, B, C, D or E)",
		},
		{
			name:     "Invalid DPI",
			input:    errors.New("compile: invalid dpi 72 (use 203, 300 or 600)"),
			expected: "PROFILE: Invalid DPI value (use 203, 300 or 600)",
		},
		{
			name:     "Invalid label size",
			input:    errors.New("invalid label size 0x30mm"),
			expected: "PROFILE: Label width and height must be positive",
		},
		{
			name:     "Unknown element type",
			input:    errors.New("unknown element type \"picture\""),
			expected: "TEMPLATE: Unknown element type in template",
		},
		{
			name:     "Empty barcode payload",
			input:    errors.New("barcode \"\": payload is empty"),
			expected: "BARCODE: Payload is empty",
		},
		{
			name:     "Checksum mismatch",
			input:    errors.New("barcode \"4006381333932\": trailing check digit is wrong"),
			expected: "BARCODE: Check digit does not match the payload",
		},
		{
			name:     "Digit-only symbology",
			input:    errors.New("barcode \"ABC\": ean13 encodes digits only"),
			expected: "BARCODE: Payload must be digits only",
		},
		{
			name:     "Wrong payload length",
			input:    errors.New("barcode \"12345\": ean8 needs exactly 8 digits, got 5"),
			expected: "BARCODE: Payload length does not fit the symbology",
		},
		{
			name:     "Not connected",
			input:    errors.New("transport: not connected"),
			expected: "PRINTER: Not connected - check cable and power",
		},
		{
			name:     "No USB printer",
			input:    errors.New("transport: no supported usb printer found"),
			expected: "PRINTER: No USB label printer detected",
		},
		{
			name:     "No serial ports",
			input:    errors.New("transport: no serial ports on host"),
			expected: "PRINTER: No serial ports available",
		},
		{
			name:     "Short write",
			input:    errors.New("transport: short write: 12 of 200 bytes"),
			expected: "PRINTER: Transfer interrupted - check the connection",
		},
		{
			name:     "Bad frame encoding",
			input:    errors.New("parse job: frame is not valid base64: illegal data"),
			expected: "CALIBRATION: Frame must be base64-encoded",
		},
		{
			name:     "Frame not a PNG",
			input:    errors.New("parse job: frame is not a PNG image: unexpected EOF"),
			expected: "CALIBRATION: Frame must be a PNG image",
		},

		// Categorization Logic
		{
			name:     "Parse error (categorization)",
			input:    errors.New("parse job: invalid character 'x'"),
			expected: "JSON: Invalid job structure",
		},
		{
			name:     "Compile error (categorization)",
			input:    errors.New("compile: something broke"),
			expected: "COMPILE: something broke",
		},
		{
			name:     "Transport error (categorization)",
			input:    errors.New("transport: device vanished"),
			expected: "PRINTER: device vanished",
		},
		{
			name:     "Vision error (categorization)",
			input:    errors.New("vision: empty frame"),
			expected: "CALIBRATION: empty frame",
		},

		// Fallback Logic
		{
			name:     "Fallback with clean error message",
			input:    errors.New("some random error"),
			expected: "ERROR: some random error",
		},
		{
			name:     "Render error (categorization)",
			input:    errors.New("render: specific draw error"),
			expected: "PREVIEW: specific draw error",
		},
		{
			name:     "Nested error",
			input:    errors.New("outer error, inner detail"),
			expected: "ERROR: outer error, inner detail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractUserFriendlyError(tt.input)
			if got != tt.expected {
				t.Errorf("ExtractUserFriendlyError() = %v, want %v", got, tt.expected)
			}
		})
	}
}
