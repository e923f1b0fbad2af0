// Package dialect compiles a label template plus a resolved data record into
// the native command stream of one of five printer command languages. The
// output is handed verbatim to the transport; no post-generation validation.
package dialect

import (
	"fmt"

	"github.com/labelpoint/labeld/internal/label"
)

// Compile generates the command stream for the profile's language. The only
// errors are an unknown language or an invalid profile; elements that
// resolve to nothing are skipped, since partial labels are normal.
func Compile(tpl *label.Template, profile *label.PrinterProfile, rec label.DataRecord) ([]byte, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	items := resolve(tpl, profile, rec)

	switch profile.Language {
	case label.LanguageA:
		return compilePrefixed(tpl, profile, items), nil
	case label.LanguageB:
		return compileLineOriented(tpl, profile, items), nil
	case label.LanguageC:
		return compileDeclarative(tpl, profile, items), nil
	case label.LanguageD:
		return compileMarkup(tpl, profile, items), nil
	case label.LanguageE:
		return compileBinary(tpl, profile, items), nil
	}
	return nil, fmt.Errorf("unknown language %q", profile.Language)
}
