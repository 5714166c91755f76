package utils

import (
	"encoding/csv"
	"io"
	"strings"
)

// UTF8BOM is prepended to every exported file so spreadsheet tools pick up
// the encoding.
const UTF8BOM = "\uFEFF"

// ExportSeparator is the delimiter of all CSV exports. Downstream spreadsheet
// tooling depends on it, so it is part of the external contract.
const ExportSeparator = ';'

// NewExportWriter returns a csv.Writer configured for the export contract,
// with the BOM already written.
func NewExportWriter(w io.Writer) (*csv.Writer, error) {
	if _, err := io.WriteString(w, UTF8BOM); err != nil {
		return nil, err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ExportSeparator
	return cw, nil
}

// DetectCSVSeparator guesses the column separator of an uploaded file,
// preferring ';' over ',' by raw character count in the header line (falling
// back to the whole content when there is no line break).
func DetectCSVSeparator(content string) rune {
	sample := content
	if idx := strings.IndexAny(content, "\r\n"); idx >= 0 {
		sample = content[:idx]
	}
	if sample == "" {
		sample = content
	}
	if strings.Count(sample, ";") >= strings.Count(sample, ",") {
		return ';'
	}
	return ','
}

// StripBOM removes a leading UTF-8 byte-order mark, which spreadsheet tools
// tend to prepend to saved CSV files.
func StripBOM(content string) string {
	return strings.TrimPrefix(content, UTF8BOM)
}
