package transport

// Known label printer USB vendor IDs. Enumeration matches against this
// table; anything else on the bus is ignored.
var usbVendors = map[uint16]string{
	0x0a5f: "Zebra",
	0x1203: "TSC",
	0x195f: "Godex",
	0x04f9: "Brother",
	0x0922: "Dymo",
}

// usbModels maps vendor:product pairs to a human label and native DPI.
// Unlisted products fall back to "Unknown"/203dpi.
var usbModels = map[uint32]DeviceInfo{
	key(0x0a5f, 0x0081): {Vendor: "Zebra", Model: "GK420d", DPI: 203},
	key(0x0a5f, 0x0084): {Vendor: "Zebra", Model: "GX430t", DPI: 300},
	key(0x0a5f, 0x0127): {Vendor: "Zebra", Model: "ZD410", DPI: 203},
	key(0x0a5f, 0x0172): {Vendor: "Zebra", Model: "ZD620", DPI: 300},
	key(0x1203, 0x0230): {Vendor: "TSC", Model: "TTP-244CE", DPI: 203},
	key(0x1203, 0x0330): {Vendor: "TSC", Model: "TE300", DPI: 300},
	key(0x195f, 0x0001): {Vendor: "Godex", Model: "G500", DPI: 203},
	key(0x04f9, 0x2028): {Vendor: "Brother", Model: "QL-570", DPI: 300},
	key(0x04f9, 0x209b): {Vendor: "Brother", Model: "QL-800", DPI: 300},
	key(0x0922, 0x0020): {Vendor: "Dymo", Model: "LabelWriter 450", DPI: 600},
	key(0x0922, 0x0028): {Vendor: "Dymo", Model: "LabelWriter 550", DPI: 300},
}

func key(vendor, product uint16) uint32 {
	return uint32(vendor)<<16 | uint32(product)
}

// lookupModel resolves detected hardware IDs to device info, falling back to
// the vendor table and then to Unknown at 203dpi.
func lookupModel(vendor, product uint16) DeviceInfo {
	if info, ok := usbModels[key(vendor, product)]; ok {
		return info
	}
	name := usbVendors[vendor]
	if name == "" {
		name = "Unknown"
	}
	return DeviceInfo{Vendor: name, Model: "Unknown", DPI: 203}
}
