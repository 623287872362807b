// Package export serializes projected response records into downloadable files.
package export

import (
	"fmt"
	"strings"

	"formpulse/internal/analytics"
)

// Format is a supported export encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts csv, json or pdf (case-insensitive). Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Table is the exporter input: a header plus records sharing it
type Table struct {
	Title   string
	Columns []string
	Rows    []*analytics.Record
}

// row lays rec out under t.Columns. Records projected from the same schema
// already share that layout; anything else is looked up column by column.
func (t Table) row(rec *analytics.Record) []string {
	if keys := rec.Keys(); equalStrings(keys, t.Columns) {
		return rec.Values()
	}
	out := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		v, _ := rec.Get(col)
		out = append(out, v)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// File is a rendered export
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Render encodes t in format f.
func Render(t Table, f Format) (*File, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatCSV:
		data, err = CSV(t)
	case FormatJSON:
		data, err = JSON(t)
	case FormatPDF:
		data, err = PDF(t)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", f, err)
	}
	return &File{
		Filename:    Filename(t.Title, f),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}

// Filename is "<title>-responses.<ext>" with path separators and quotes removed.
func Filename(title string, f Format) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\n', '\r':
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	if clean == "" {
		clean = "form"
	}
	return clean + "-responses." + string(f)
}
