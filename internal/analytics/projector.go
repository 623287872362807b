package analytics

import (
	"bytes"
	"encoding/json"
	"time"

	"formpulse/internal/model"
)

const (
	ColumnResponseID  = "responseId"
	ColumnSubmittedAt = "submittedAt"
)

// Record is one flattened response. Columns keep their insertion order so
// tabular exporters and JSON output agree on layout.
type Record struct {
	keys   []string
	values map[string]string
}

func newRecord(capacity int) *Record {
	return &Record{
		keys:   make([]string, 0, capacity),
		values: make(map[string]string, capacity),
	}
}

// Set writes a column. Re-setting an existing column keeps its position and
// replaces its value.
func (r *Record) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns a column value.
func (r *Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the column names in order.
func (r *Record) Keys() []string {
	return append([]string{}, r.keys...)
}

// Values returns the column values in key order.
func (r *Record) Values() []string {
	out := make([]string, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.values[k])
	}
	return out
}

func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Columns is the header shared by every record projected from questions.
// Questions with identical text collapse into one column.
func Columns(questions []model.Question) []string {
	seen := make(map[string]bool, len(questions)+2)
	cols := []string{ColumnResponseID, ColumnSubmittedAt}
	seen[ColumnResponseID] = true
	seen[ColumnSubmittedAt] = true
	for _, q := range questions {
		if seen[q.Text] {
			continue
		}
		seen[q.Text] = true
		cols = append(cols, q.Text)
	}
	return cols
}

// Project flattens each response into a Record keyed by question text, in
// schema order. When two questions share a text the later one's value wins.
func Project(questions []model.Question, responses []model.Response) []*Record {
	out := make([]*Record, 0, len(responses))
	for i := range responses {
		r := &responses[i]
		rec := newRecord(len(questions) + 2)
		rec.Set(ColumnResponseID, r.ID)
		rec.Set(ColumnSubmittedAt, formatTime(r.SubmittedAt))
		for _, q := range questions {
			val := ""
			if ans, ok := r.Answer(q.ID); ok {
				val = ans.Value.Render()
			}
			rec.Set(q.Text, val)
		}
		out = append(out, rec)
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
