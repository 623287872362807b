package export

import (
	"encoding/json"

	"formpulse/internal/analytics"
)

// JSON renders the records as a pretty-printed array of objects.
func JSON(t Table) ([]byte, error) {
	rows := t.Rows
	if rows == nil {
		rows = []*analytics.Record{}
	}
	return json.MarshalIndent(rows, "", "  ")
}
