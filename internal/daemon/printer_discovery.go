package daemon

import (
	"context"
	"log"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/labelpoint/labeld/internal/printer"
	"github.com/labelpoint/labeld/internal/transport"
)

// PrinterDiscovery handles printer enumeration with caching
type PrinterDiscovery struct {
	cache       []printer.DetailDTO
	lastRefresh time.Time
	cacheTTL    time.Duration
	mu          sync.RWMutex
}

// NewPrinterDiscovery creates a new discovery service
func NewPrinterDiscovery(ttl time.Duration) *PrinterDiscovery {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &PrinterDiscovery{
		cacheTTL: ttl,
	}
}

// GetPrinters returns cached printers or refreshes if stale
func (pd *PrinterDiscovery) GetPrinters(forceRefresh bool) ([]printer.DetailDTO, error) {
	pd.mu.RLock()
	if !forceRefresh && time.Since(pd.lastRefresh) < pd.cacheTTL && pd.cache != nil {
		result := make([]printer.DetailDTO, len(pd.cache))
		copy(result, pd.cache)
		pd.mu.RUnlock()
		return result, nil
	}
	pd.mu.RUnlock()

	pd.mu.Lock()
	defer pd.mu.Unlock()

	// Double-check after acquiring write lock
	if !forceRefresh && time.Since(pd.lastRefresh) < pd.cacheTTL && pd.cache != nil {
		result := make([]printer.DetailDTO, len(pd.cache))
		copy(result, pd.cache)
		return result, nil
	}

	printers, err := enumerateAll()
	if err != nil {
		if pd.cache != nil {
			result := make([]printer.DetailDTO, len(pd.cache))
			copy(result, pd.cache)
			return result, err // Return stale cache copy on error
		}
		return nil, err
	}

	pd.cache = printers
	pd.lastRefresh = time.Now()

	result := make([]printer.DetailDTO, len(printers))
	copy(result, printers)
	return result, nil
}

// enumerateAll lists USB label printers and host serial ports. Serial ports
// are reported without probing: a port is a candidate, not a confirmed
// printer.
func enumerateAll() ([]printer.DetailDTO, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	devices, err := transport.Enumerate(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]printer.DetailDTO, 0, len(devices))
	for _, d := range devices {
		out = append(out, printer.DetailDTO{
			Vendor:    d.Vendor,
			Model:     d.Model,
			DPI:       d.DPI,
			Port:      d.Port,
			Transport: string(transport.KindUSB),
		})
	}

	ports, err := serial.GetPortsList()
	if err != nil {
		// USB results are still valid without serial enumeration
		log.Printf("[PRINTERS] ⚠️ Serial enumeration failed: %v", err)
		return out, nil
	}
	for _, p := range ports {
		out = append(out, printer.DetailDTO{
			Vendor:    "Unknown",
			Model:     "Serial device",
			DPI:       203,
			Port:      p,
			Transport: string(transport.KindSerial),
		})
	}
	return out, nil
}

// GetSummary returns a lightweight summary for health checks
func (pd *PrinterDiscovery) GetSummary() printer.Summary {
	printers, err := pd.GetPrinters(false)
	if err != nil {
		return printer.Summary{Status: "error", DetectedCount: 0}
	}

	var usb, ser int
	for _, p := range printers {
		switch p.Transport {
		case string(transport.KindUSB):
			usb++
		case string(transport.KindSerial):
			ser++
		}
	}

	status := "ok"
	if usb == 0 && ser > 0 {
		status = "warning"
	} else if usb == 0 && ser == 0 {
		status = "error"
	}

	return printer.Summary{
		Status:        status,
		DetectedCount: len(printers),
		USBCount:      usb,
		SerialCount:   ser,
	}
}

// LogStartupDiagnostics logs printer info at service start
func (pd *PrinterDiscovery) LogStartupDiagnostics() {
	printers, err := pd.GetPrinters(true)
	if err != nil {
		log.Printf("[PRINTERS] ⚠️ Error enumerating printers: %v", err)
		return
	}

	log.Println("[PRINTERS] ══════════════════════════════════════════════════")
	log.Printf("[PRINTERS] 🖨️ Detected %d device(s)", len(printers))

	for _, p := range printers {
		if p.Transport == string(transport.KindUSB) {
			log.Printf("[PRINTERS]    • %s %s (%ddpi, usb)", p.Vendor, p.Model, p.DPI)
		}
	}

	if GetVerbose() {
		for _, p := range printers {
			if p.Transport == string(transport.KindSerial) {
				log.Printf("[PRINTERS]    (serial candidate) %s", p.Port)
			}
		}
	}
	log.Println("[PRINTERS] ══════════════════════════════════════════════════")
}
