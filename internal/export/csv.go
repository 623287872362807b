package export

import (
	"bytes"
	"encoding/csv"
)

// CSV renders one header row followed by one row per record.
func CSV(t Table) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(t.Columns); err != nil {
		return nil, err
	}
	for _, rec := range t.Rows {
		if err := w.Write(t.row(rec)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
