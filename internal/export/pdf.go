package export

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

const (
	pdfFontSize   = 8
	pdfRowHeight  = 6
	pdfTitleSize  = 14
	pdfCellMargin = 2
)

// PDF renders a landscape A4 table titled "<title> - Responses". The header row
// repeats on every page and cell text is truncated to the column width.
func PDF(t Table) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(false, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	colW := pageW - left - right
	if n := len(t.Columns); n > 0 {
		colW /= float64(n)
	}

	header := func() {
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range t.Columns {
			pdf.CellFormat(colW, pdfRowHeight, fit(pdf, tr, col, colW), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", pdfFontSize)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", pdfTitleSize)
	pdf.CellFormat(0, 10, tr(t.Title+" - Responses"), "", 1, "L", false, 0, "")
	header()

	for _, rec := range t.Rows {
		if pdf.GetY()+pdfRowHeight > pageH-bottom {
			pdf.AddPage()
			header()
		}
		for _, v := range t.row(rec) {
			pdf.CellFormat(colW, pdfRowHeight, fit(pdf, tr, v, colW), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit translates s for the core fonts, truncating the UTF-8 text with an
// ellipsis until the translated form fits in width w. Truncation happens before
// translation so multi-byte characters are never split.
func fit(pdf *fpdf.Fpdf, tr func(string) string, s string, w float64) string {
	limit := w - pdfCellMargin
	if out := tr(s); pdf.GetStringWidth(out) <= limit {
		return out
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		cand := tr(string(runes) + "...")
		if pdf.GetStringWidth(cand) <= limit {
			return cand
		}
	}
	return ""
}
