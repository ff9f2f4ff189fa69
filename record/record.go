// Package record turns a single line of OCR output from a packing list into a
// typed shipment record.
//
// The package is pure: no I/O, no logging, no shared state. Callers decide how
// to report lines that are not rows or that fail numeric validation; both are
// reported through Outcome rather than through errors.
package record

import "strconv"

// MinTokens is the smallest token count a data row can have: three leading
// identity fields, five trailing measurement fields and an (empty)
// description in between.
const MinTokens = 9

// Record is one shipment row.
type Record struct {
	CaseNumber  string  `json:"case_number"`
	LotNumber   string  `json:"lot_number"`
	YarnID      string  `json:"yarn_id"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
	Cones       int     `json:"cones"`
	GrossWeight float64 `json:"gross_weight"`
	TareWeight  int     `json:"tare_weight"`
	NetWeight   float64 `json:"net_weight"`
}

// Headers are the column titles of a record, in field order.
var Headers = []string{
	"Case #",
	"Lot #",
	"Yarn ID",
	"Description",
	"Color",
	"# of Cones",
	"Gross Weight",
	"Tare Weight",
	"Net Weight LBS",
}

// Keys are the serialized field names, in field order.
var Keys = []string{
	"case_number",
	"lot_number",
	"yarn_id",
	"description",
	"color",
	"cones",
	"gross_weight",
	"tare_weight",
	"net_weight",
}

// Values returns the fields in column order.
func (r Record) Values() []any {
	return []any{
		r.CaseNumber,
		r.LotNumber,
		r.YarnID,
		r.Description,
		r.Color,
		r.Cones,
		r.GrossWeight,
		r.TareWeight,
		r.NetWeight,
	}
}

// Strings returns the fields formatted as text, in column order. Floats use the
// shortest representation that round-trips.
func (r Record) Strings() []string {
	return []string{
		r.CaseNumber,
		r.LotNumber,
		r.YarnID,
		r.Description,
		r.Color,
		strconv.Itoa(r.Cones),
		strconv.FormatFloat(r.GrossWeight, 'f', -1, 64),
		strconv.Itoa(r.TareWeight),
		strconv.FormatFloat(r.NetWeight, 'f', -1, 64),
	}
}

// Map returns the record keyed by serialized field name.
func (r Record) Map() map[string]any {
	vals := r.Values()
	m := make(map[string]any, len(Keys))
	for i, k := range Keys {
		m[k] = vals[i]
	}
	return m
}
