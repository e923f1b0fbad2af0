// Package printer contains shared types to avoid import cycles.
package printer

// Summary provides a lightweight overview for health checks
type Summary struct {
	Status        string `json:"status"` // "ok", "warning", "error"
	DetectedCount int    `json:"detected_count"`
	USBCount      int    `json:"usb_count"`
	SerialCount   int    `json:"serial_count"`
}

// DetailDTO is the JSON response format for printer details
type DetailDTO struct {
	Vendor    string `json:"vendor"`
	Model     string `json:"model"`
	DPI       int    `json:"dpi"`
	Port      string `json:"port,omitempty"`
	Transport string `json:"transport"` // "usb" or "serial"
}
