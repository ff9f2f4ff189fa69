// Package export writes extracted shipment records to spreadsheets and
// reports. Every format uses the column order of record.Headers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/wudi/packlist/record"
)

// ErrNoRecords is returned by exporters that refuse to write an empty table.
var ErrNoRecords = errors.New("no records to export")

// Format names an output format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, records []record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(record.Headers); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(rec.Strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
