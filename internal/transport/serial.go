package transport

import (
	"context"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// ConnectSerial opens the named port at the given baud rate (9600 when
// zero) and acquires its byte-stream writer. When port is empty the first
// enumerated port on the host is used.
func (m *Manager) ConnectSerial(ctx context.Context, port string, baud int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if baud <= 0 {
		baud = 9600
	}
	m.setState(StateConnecting)

	if port == "" {
		ports, err := serial.GetPortsList()
		if err != nil {
			m.setState(StateDisconnected)
			return errors.Wrap(err, "list serial ports")
		}
		if len(ports) == 0 {
			m.setState(StateDisconnected)
			return errors.New("no serial ports on host")
		}
		port = ports[0]
	}

	p, err := serial.Open(port, &serial.Mode{BaudRate: baud})
	if err != nil {
		m.setState(StateDisconnected)
		return errors.Wrapf(err, "open serial port %s", port)
	}

	// Serial gives no identity to probe; report the generic profile.
	info := DeviceInfo{Vendor: "Unknown", Model: "Serial printer", DPI: 203, Port: port}
	m.setConnected(KindSerial, info, p, p.Close)
	return nil
}
