package daemon

import (
	"testing"
	"time"
)

func TestNewPrinterDiscovery(t *testing.T) {
	ttl := 10 * time.Second
	pd := NewPrinterDiscovery(ttl)
	if pd.cacheTTL != ttl {
		t.Errorf("expected cacheTTL %v, got %v", ttl, pd.cacheTTL)
	}
}

func TestNewPrinterDiscoveryDefaultTTL(t *testing.T) {
	pd := NewPrinterDiscovery(0)
	if pd.cacheTTL != 30*time.Second {
		t.Errorf("expected default TTL 30s, got %v", pd.cacheTTL)
	}
}
