package label

// DataRecord is the flat field->string mapping resolved once per physical
// label. Keys follow the wire names of FieldKind plus "barcode" for the
// barcode payload.
type DataRecord map[string]string

// Wire key for the barcode payload.
const RecordBarcode = "barcode"

// Field returns the record value for a text field kind.
func (r DataRecord) Field(k FieldKind) string {
	return r[string(k)]
}

// BarcodePayload returns the barcode payload, falling back to the SKU when
// no explicit payload is set. Shelf labels commonly encode the SKU.
func (r DataRecord) BarcodePayload() string {
	if v := r[RecordBarcode]; v != "" {
		return v
	}
	return r[string(FieldSKU)]
}
