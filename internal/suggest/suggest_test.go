package suggest

import (
	"testing"

	"github.com/labelpoint/labeld/internal/symbology"
)

func TestSuggestFixAddCheckDigit(t *testing.T) {
	// 11 digits on UPC-A: one short, append the check digit.
	res := SuggestFix("1234567890", symbology.UPCA)
	if res.Action != ActionNone {
		// 10 digits is neither body nor full length
		t.Logf("10 digits -> %s (%s)", res.Action, res.Reason)
	}

	res = SuggestFix("12345678901", symbology.UPCA)
	if res.Valid {
		t.Error("11-digit UPC-A reported valid")
	}
	if res.Action != ActionAddCheckDigit {
		t.Fatalf("action = %s; want add_checkdigit", res.Action)
	}
	if res.Confidence < 0.95 {
		t.Errorf("confidence = %v; want >= 0.95", res.Confidence)
	}
	if len(res.SuggestedPayload) != 12 {
		t.Fatalf("suggested payload %q is not 12 digits", res.SuggestedPayload)
	}
	if !symbology.VerifyChecksum(res.SuggestedPayload, symbology.UPCA) {
		t.Errorf("suggested payload %q does not verify", res.SuggestedPayload)
	}
}

func TestSuggestFixWrongCheckDigit(t *testing.T) {
	res := SuggestFix("036000291453", symbology.UPCA) // correct digit is 2
	if res.Valid || res.Action != ActionFixCheckDigit {
		t.Fatalf("got %+v; want fix_checkdigit", res)
	}
	if res.SuggestedPayload != "036000291452" {
		t.Errorf("suggested %q; want 036000291452", res.SuggestedPayload)
	}
	if res.Confidence < 0.99 {
		t.Errorf("confidence = %v; want >= 0.99", res.Confidence)
	}
}

func TestSuggestFixValidPayload(t *testing.T) {
	res := SuggestFix("036000291452", symbology.UPCA)
	if !res.Valid || res.Action != ActionNone {
		t.Errorf("valid payload got %+v", res)
	}
}

func TestSuggestFixNonDigit(t *testing.T) {
	res := SuggestFix("ABC-123", symbology.EAN13)
	if res.Valid {
		t.Error("non-digit EAN-13 reported valid")
	}
	if res.Action != ActionSwitchSymbology || res.SuggestedSymbology != symbology.Code128 {
		t.Errorf("got %+v; want switch to code128", res)
	}
	if res.Confidence != 0.95 {
		t.Errorf("confidence = %v; want 0.95", res.Confidence)
	}
}

func TestSuggestFixNonASCII(t *testing.T) {
	res := SuggestFix("précis-42", symbology.EAN13)
	if res.SuggestedSymbology != symbology.QR {
		t.Errorf("non-ASCII payload suggested %s; want qr", res.SuggestedSymbology)
	}
	if res.Confidence != 0.9 {
		t.Errorf("confidence = %v; want 0.9", res.Confidence)
	}
}

func TestSuggestFixLengthMatchesOtherSymbology(t *testing.T) {
	// 13 digits on EAN-8: matches EAN-13's profile.
	res := SuggestFix("4006381333931", symbology.EAN8)
	if res.Action != ActionSwitchSymbology || res.SuggestedSymbology != symbology.EAN13 {
		t.Errorf("got %+v; want switch to ean13", res)
	}
}

func TestSuggestFixCode128DigitUpgrade(t *testing.T) {
	res := SuggestFix("123456789012", symbology.Code128)
	if !res.Valid {
		t.Error("digit payload on code128 must stay valid")
	}
	if res.Action != ActionSwitchSymbology {
		t.Fatalf("action = %s; want advisory switch", res.Action)
	}
	if res.Blocking {
		t.Error("scanner-compat advisory must be non-blocking")
	}
	if res.Confidence != 0.7 {
		t.Errorf("confidence = %v; want 0.7", res.Confidence)
	}
}

func TestSuggestFixEmpty(t *testing.T) {
	for _, sym := range []symbology.Symbology{symbology.Code128, symbology.EAN13, symbology.QR} {
		res := SuggestFix("", sym)
		if res.Valid {
			t.Errorf("empty payload valid on %s", sym)
		}
		if res.Confidence != 1 {
			t.Errorf("empty payload confidence = %v on %s; want 1", res.Confidence, sym)
		}
		if res.SuggestedPayload != "" || res.Action != ActionNone {
			t.Errorf("empty payload produced a suggestion on %s: %+v", sym, res)
		}
	}
}

func TestSuggestFixQRAcceptsAnything(t *testing.T) {
	res := SuggestFix("https://example.com/p/42?x=π", symbology.QR)
	if !res.Valid {
		t.Errorf("QR payload rejected: %+v", res)
	}
}
