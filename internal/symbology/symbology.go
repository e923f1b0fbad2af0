// Package symbology implements check digit computation and module-count
// estimation for the barcode symbologies supported by the label compiler.
package symbology

// Symbology identifies a barcode command language target.
type Symbology string

const (
	Code128 Symbology = "code128"
	EAN13   Symbology = "ean13"
	EAN8    Symbology = "ean8"
	UPCA    Symbology = "upca"
	QR      Symbology = "qr"
)

// Body lengths excluding the trailing check digit.
const (
	EAN13BodyLen = 12
	EAN8BodyLen  = 7
	UPCABodyLen  = 11
)

// IsDigitOnly reports whether the symbology accepts decimal digits only.
func (s Symbology) IsDigitOnly() bool {
	switch s {
	case EAN13, EAN8, UPCA:
		return true
	}
	return false
}

// IsMatrix reports whether the symbology is a 2D matrix code.
func (s Symbology) IsMatrix() bool {
	return s == QR
}

// PayloadLength returns the full payload length (body + check digit) for
// fixed-length symbologies, or 0 for variable-length ones.
func (s Symbology) PayloadLength() int {
	switch s {
	case EAN13:
		return EAN13BodyLen + 1
	case EAN8:
		return EAN8BodyLen + 1
	case UPCA:
		return UPCABodyLen + 1
	}
	return 0
}

// ChecksumDigit computes the check digit for the symbology over the payload
// body. EAN-13 weights digits 1,3 over the first 12; EAN-8 and UPC-A weight
// 3,1 over the first 7 and 11 respectively. Payloads shorter than the body
// length, or symbologies without a check digit, return -1.
func ChecksumDigit(payload string, sym Symbology) int {
	var bodyLen, firstWeight, secondWeight int
	switch sym {
	case EAN13:
		bodyLen, firstWeight, secondWeight = EAN13BodyLen, 1, 3
	case EAN8:
		bodyLen, firstWeight, secondWeight = EAN8BodyLen, 3, 1
	case UPCA:
		bodyLen, firstWeight, secondWeight = UPCABodyLen, 3, 1
	default:
		return -1
	}
	if len(payload) < bodyLen {
		return -1
	}

	sum := 0
	for i := 0; i < bodyLen; i++ {
		c := payload[i]
		if c < '0' || c > '9' {
			return -1
		}
		d := int(c - '0')
		if i%2 == 0 {
			sum += d * firstWeight
		} else {
			sum += d * secondWeight
		}
	}
	return (10 - sum%10) % 10
}

// VerifyChecksum recomputes the check digit over the payload body and
// compares it to the trailing digit. Payloads of the wrong length fail.
func VerifyChecksum(payload string, sym Symbology) bool {
	want := sym.PayloadLength()
	if want == 0 || len(payload) != want {
		return false
	}
	d := ChecksumDigit(payload, sym)
	if d < 0 {
		return false
	}
	return payload[len(payload)-1] == byte('0'+d)
}

// Linear symbology layout constants, in modules.
const (
	code128ModulesPerChar = 11
	code128Overhead       = 35 // start + check + stop + quiet zones
	ean13Modules          = 95
	ean8Modules           = 67
	upcaModules           = 95
)

// EstimateModuleCount estimates how many modules wide the printed symbol is.
// Linear symbologies use fixed layouts; QR uses a coarse five-step grid
// heuristic keyed by payload length. The QR estimate ignores the error
// correction level, so it under-reports for high-EC symbols; the density
// advisor treats it as approximate.
func EstimateModuleCount(payload string, sym Symbology) int {
	switch sym {
	case Code128:
		return len(payload)*code128ModulesPerChar + code128Overhead
	case EAN13:
		return ean13Modules
	case UPCA:
		return upcaModules
	case EAN8:
		return ean8Modules
	case QR:
		return qrGridSide(len(payload))
	}
	return 0
}

// qrGridSide picks a QR version by payload length and returns its side in
// modules. Versions 1-5 cover the payload sizes a shelf label carries.
func qrGridSide(n int) int {
	switch {
	case n <= 25:
		return 21
	case n <= 47:
		return 25
	case n <= 77:
		return 29
	case n <= 114:
		return 33
	default:
		return 37
	}
}
