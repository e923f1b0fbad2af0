package transport

import (
	"context"
	"log"

	"github.com/google/gousb"
	"github.com/pkg/errors"
)

// ConnectUSB enumerates the bus against the vendor table, opens the first
// match, claims an interface with a bulk-OUT endpoint (preferring the USB
// printer class) and records the detected device info.
func (m *Manager) ConnectUSB(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.setState(StateConnecting)

	usbCtx := gousb.NewContext()

	devs, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		_, known := usbVendors[uint16(desc.Vendor)]
		return known
	})
	// OpenDevices can return both devices and an error; only fail when
	// nothing opened.
	if len(devs) == 0 {
		_ = usbCtx.Close()
		m.setState(StateDisconnected)
		if err != nil {
			return errors.Wrap(err, "enumerate usb devices")
		}
		return errors.New("no supported usb printer found")
	}

	dev := devs[0]
	for _, extra := range devs[1:] {
		_ = extra.Close()
	}

	if err := dev.SetAutoDetach(true); err != nil {
		log.Printf("[TRANSPORT] auto-detach unsupported: %v", err)
	}

	// Use the active configuration, selecting the default when unset.
	cfgNum, err := dev.ActiveConfigNum()
	if err != nil || cfgNum == 0 {
		cfgNum = 1
	}
	cfg, err := dev.Config(cfgNum)
	if err != nil {
		_ = dev.Close()
		_ = usbCtx.Close()
		m.setState(StateDisconnected)
		return errors.Wrap(err, "select usb configuration")
	}

	ifNum, epNum, found := findBulkOut(dev.Desc, cfgNum)
	if !found {
		_ = cfg.Close()
		_ = dev.Close()
		_ = usbCtx.Close()
		m.setState(StateDisconnected)
		return errors.New("no bulk-OUT endpoint on device")
	}

	intf, err := cfg.Interface(ifNum, 0)
	if err != nil {
		_ = cfg.Close()
		_ = dev.Close()
		_ = usbCtx.Close()
		m.setState(StateDisconnected)
		return errors.Wrap(err, "claim usb interface")
	}

	ep, err := intf.OutEndpoint(epNum)
	if err != nil {
		intf.Close()
		_ = cfg.Close()
		_ = dev.Close()
		_ = usbCtx.Close()
		m.setState(StateDisconnected)
		return errors.Wrap(err, "open bulk-OUT endpoint")
	}

	info := lookupModel(uint16(dev.Desc.Vendor), uint16(dev.Desc.Product))
	closer := func() error {
		intf.Close()
		_ = cfg.Close()
		_ = dev.Close()
		return usbCtx.Close()
	}
	m.setConnected(KindUSB, info, ep, closer)
	return nil
}

// findBulkOut locates an interface carrying a bulk-OUT endpoint, preferring
// the USB printer class (7).
func findBulkOut(desc *gousb.DeviceDesc, cfgNum int) (ifNum, epNum int, found bool) {
	type candidate struct {
		ifNum, epNum int
		printerClass bool
	}
	var candidates []candidate

	// Scan only the configuration that will actually be claimed.
	cfg, ok := desc.Configs[cfgNum]
	if !ok {
		return 0, 0, false
	}
	for _, intf := range cfg.Interfaces {
		if len(intf.AltSettings) == 0 {
			continue
		}
		alt := intf.AltSettings[0]
		for _, ep := range alt.Endpoints {
			if ep.Direction == gousb.EndpointDirectionOut && ep.TransferType == gousb.TransferTypeBulk {
				candidates = append(candidates, candidate{
					ifNum:        intf.Number,
					epNum:        ep.Number,
					printerClass: alt.Class == gousb.ClassPrinter,
				})
				break
			}
		}
	}

	for _, c := range candidates {
		if c.printerClass {
			return c.ifNum, c.epNum, true
		}
	}
	if len(candidates) > 0 {
		return candidates[0].ifNum, candidates[0].epNum, true
	}
	return 0, 0, false
}

// Enumerate lists supported printers currently on the bus without claiming
// them. Used by discovery and the health surface.
func Enumerate(ctx context.Context) ([]DeviceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	usbCtx := gousb.NewContext()
	defer func() { _ = usbCtx.Close() }()

	var out []DeviceInfo
	devs, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if _, known := usbVendors[uint16(desc.Vendor)]; known {
			out = append(out, lookupModel(uint16(desc.Vendor), uint16(desc.Product)))
		}
		return false // inspect only, never open
	})
	for _, d := range devs {
		_ = d.Close()
	}
	if err != nil {
		return out, errors.Wrap(err, "enumerate usb devices")
	}
	return out, nil
}
