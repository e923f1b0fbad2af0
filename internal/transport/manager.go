// Package transport owns the runtime connection to a physical label printer
// over USB or serial and exposes a uniform byte/command send contract.
//
// One Manager per physical device. Connect and Send are not internally
// serialized: callers that share a Manager across goroutines must serialize
// access themselves. Disconnection is the only cancellation primitive; a
// hung device write blocks until the caller's context or its own
// timeout-and-disconnect wrapper intervenes.
package transport

import (
	"context"
	"io"
	"log"
	"sync"

	"github.com/pkg/errors"
)

// State of the connection lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Kind of transport carrying an open connection.
type Kind string

const (
	KindUSB    Kind = "usb"
	KindSerial Kind = "serial"
)

// DeviceInfo describes the printer detected behind a connection.
type DeviceInfo struct {
	Vendor string `json:"vendor"`
	Model  string `json:"model"`
	DPI    int    `json:"dpi"`
	Port   string `json:"port,omitempty"`
}

// Config tunes connection parameters.
type Config struct {
	SerialPort string // candidate port for ConnectSerial/Connect
	BaudRate   int    // defaults to 9600
}

// Manager owns one printer connection.
type Manager struct {
	cfg Config

	mu     sync.RWMutex // guards state/kind/info reads from health paths
	state  State
	kind   Kind
	info   DeviceInfo
	writer io.Writer
	closer func() error
}

// NewManager creates a disconnected manager.
func NewManager(cfg Config) *Manager {
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = 9600
	}
	return &Manager{cfg: cfg}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Kind returns the transport kind of an open connection, or "".
func (m *Manager) Kind() Kind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.kind
}

// Info returns the detected device info of an open connection.
func (m *Manager) Info() DeviceInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.info
}

// Connect tries USB first, then serial. It fails only when neither
// transport produced a connection.
func (m *Manager) Connect(ctx context.Context) error {
	usbErr := m.ConnectUSB(ctx)
	if usbErr == nil {
		return nil
	}
	log.Printf("[TRANSPORT] USB connect failed, trying serial: %v", usbErr)

	serialErr := m.ConnectSerial(ctx, m.cfg.SerialPort, m.cfg.BaudRate)
	if serialErr == nil {
		return nil
	}
	return errors.Errorf("no transport available: usb: %v; serial: %v", usbErr, serialErr)
}

// SendRaw writes a compiled command stream verbatim. The manager neither
// queues nor batches; concurrent writers must serialize externally.
func (m *Manager) SendRaw(ctx context.Context, data []byte) error {
	m.mu.RLock()
	w := m.writer
	st := m.state
	m.mu.RUnlock()

	if st != StateConnected || w == nil {
		return errors.New("not connected")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := w.Write(data)
	if err != nil {
		// A failed write means the device state is unknown; drop to
		// disconnected so the caller reconnects explicitly.
		_ = m.Disconnect()
		return errors.Wrap(err, "write to printer")
	}
	if n < len(data) {
		return errors.Errorf("short write: %d of %d bytes", n, len(data))
	}
	return nil
}

// SendCommand UTF-8 encodes a textual command stream and sends it raw.
func (m *Manager) SendCommand(ctx context.Context, cmd string) error {
	return m.SendRaw(ctx, []byte(cmd))
}

// Disconnect releases the connection scope in order (writer, device/port,
// state) and is idempotent regardless of prior state.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	closer := m.closer
	m.closer = nil
	m.writer = nil
	m.kind = ""
	m.info = DeviceInfo{}
	m.state = StateDisconnected
	m.mu.Unlock()

	if closer == nil {
		return nil
	}
	if err := closer(); err != nil {
		return errors.Wrap(err, "release transport")
	}
	return nil
}

// setConnected records an established connection.
func (m *Manager) setConnected(kind Kind, info DeviceInfo, w io.Writer, closer func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateConnected
	m.kind = kind
	m.info = info
	m.writer = w
	m.closer = closer
	log.Printf("[TRANSPORT] Connected via %s: %s %s (%ddpi)", kind, info.Vendor, info.Model, info.DPI)
}

// setState transitions the lifecycle state only.
func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}
