// Package suggest validates barcode payloads forgivingly: instead of
// rejecting bad input it proposes a concrete fix with a confidence score.
// Callers apply the proposed action only on explicit acceptance.
package suggest

import (
	"fmt"
	"unicode"

	"github.com/labelpoint/labeld/internal/symbology"
)

// Action names what the caller should do with the suggestion.
type Action string

const (
	ActionNone            Action = "none"
	ActionAddCheckDigit   Action = "add_checkdigit"
	ActionFixCheckDigit   Action = "fix_checkdigit"
	ActionSwitchSymbology Action = "switch_symbology"
)

// Result is the structured outcome of a payload check. Never an error:
// even garbage input produces a Result.
type Result struct {
	Valid              bool                `json:"valid"`
	Action             Action              `json:"action"`
	SuggestedPayload   string              `json:"suggestedPayload,omitempty"`
	SuggestedSymbology symbology.Symbology `json:"suggestedSymbology,omitempty"`
	Reason             string              `json:"reason"`
	Confidence         float64             `json:"confidence"`
	Blocking           bool                `json:"blocking"`
}

// SuggestFix checks a raw payload against the selected symbology and, where
// it does not fit, proposes the most likely correction.
func SuggestFix(payload string, sym symbology.Symbology) Result {
	if payload == "" {
		return Result{
			Valid:      false,
			Action:     ActionNone,
			Reason:     "payload is empty",
			Confidence: 1,
			Blocking:   true,
		}
	}

	digits := allDigits(payload)
	ascii := allASCII(payload)

	// Non-digit payload on a digit-only symbology: the payload cannot encode
	// at all, so propose a symbology that can carry it.
	if sym.IsDigitOnly() && !digits {
		if !ascii {
			return Result{
				Valid:              false,
				Action:             ActionSwitchSymbology,
				SuggestedSymbology: symbology.QR,
				Reason:             fmt.Sprintf("%s encodes digits only and the payload is not ASCII", sym),
				Confidence:         0.9,
				Blocking:           true,
			}
		}
		return Result{
			Valid:              false,
			Action:             ActionSwitchSymbology,
			SuggestedSymbology: symbology.Code128,
			Reason:             fmt.Sprintf("%s encodes digits only", sym),
			Confidence:         0.95,
			Blocking:           true,
		}
	}

	if sym.IsDigitOnly() {
		full := sym.PayloadLength()
		switch {
		case len(payload) == full-1:
			// One digit short: the user typed the body, append the check digit.
			d := symbology.ChecksumDigit(payload, sym)
			return Result{
				Valid:            false,
				Action:           ActionAddCheckDigit,
				SuggestedPayload: fmt.Sprintf("%s%d", payload, d),
				Reason:           fmt.Sprintf("%s needs %d digits; appended the computed check digit", sym, full),
				Confidence:       0.98,
				Blocking:         true,
			}
		case len(payload) == full:
			if symbology.VerifyChecksum(payload, sym) {
				return Result{Valid: true, Action: ActionNone, Reason: "payload verifies", Confidence: 1}
			}
			d := symbology.ChecksumDigit(payload, sym)
			return Result{
				Valid:            false,
				Action:           ActionFixCheckDigit,
				SuggestedPayload: payload[:full-1] + fmt.Sprintf("%d", d),
				Reason:           "trailing check digit is wrong",
				Confidence:       0.99,
				Blocking:         true,
			}
		default:
			// Wrong length. If it matches another digit symbology's profile,
			// the user likely picked the wrong type.
			if other := lengthMatch(len(payload), sym); other != "" {
				return Result{
					Valid:              false,
					Action:             ActionSwitchSymbology,
					SuggestedSymbology: other,
					Reason:             fmt.Sprintf("%d digits matches %s, not %s", len(payload), other, sym),
					Confidence:         0.9,
					Blocking:           true,
				}
			}
			return Result{
				Valid:      false,
				Action:     ActionNone,
				Reason:     fmt.Sprintf("%s needs exactly %d digits, got %d", sym, full, len(payload)),
				Confidence: 1,
				Blocking:   true,
			}
		}
	}

	// Code128 carries anything ASCII; but an all-digit payload at a retail
	// length scans more widely as UPC-A/EAN-13. Advisory only.
	if sym == symbology.Code128 && digits {
		if other := lengthMatch(len(payload), sym); other != "" {
			return Result{
				Valid:              true,
				Action:             ActionSwitchSymbology,
				SuggestedSymbology: other,
				Reason:             fmt.Sprintf("all-digit payload of %d digits; %s has wider scanner support", len(payload), other),
				Confidence:         0.7,
				Blocking:           false,
			}
		}
	}

	if sym == symbology.Code128 && !ascii {
		return Result{
			Valid:              false,
			Action:             ActionSwitchSymbology,
			SuggestedSymbology: symbology.QR,
			Reason:             "payload is not ASCII",
			Confidence:         0.9,
			Blocking:           true,
		}
	}

	return Result{Valid: true, Action: ActionNone, Reason: "payload accepted", Confidence: 1}
}

// lengthMatch returns a digit symbology whose full payload length matches n,
// excluding the one already selected.
func lengthMatch(n int, current symbology.Symbology) symbology.Symbology {
	for _, s := range []symbology.Symbology{symbology.EAN13, symbology.UPCA, symbology.EAN8} {
		if s != current && s.PayloadLength() == n {
			return s
		}
	}
	return ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func allASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
