package model

import (
	"encoding/json"
	"time"
)

// SampleLimit is how many text answers are shown before collapsing into an overflow count.
const SampleLimit = 5

// ResultKind tags an AggregateResult
type ResultKind string

const (
	ResultFrequency   ResultKind = "frequency"   // choice and rating questions
	ResultText        ResultKind = "text"        // free-text questions
	ResultUnsupported ResultKind = "unsupported" // file uploads and unknown types
)

// Bucket is one chart bar: an observed value and how often it occurred
type Bucket struct {
	Name  string `json:"name" bson:"name"`
	Value int    `json:"value" bson:"value"`
}

// AggregateResult is the per-question summary of a response set
type AggregateResult struct {
	Kind    ResultKind    `json:"kind"`
	Buckets []Bucket      `json:"buckets,omitempty"` // first-seen order
	Texts   []AnswerValue `json:"-"`                 // full list, submission order
}

// Samples is the display view of a text result.
func (r AggregateResult) Samples() []AnswerValue {
	if len(r.Texts) <= SampleLimit {
		return r.Texts
	}
	return r.Texts[:SampleLimit]
}

// Overflow counts text answers hidden from the display view.
func (r AggregateResult) Overflow() int {
	if len(r.Texts) <= SampleLimit {
		return 0
	}
	return len(r.Texts) - SampleLimit
}

// Total is the number of observations behind the result.
func (r AggregateResult) Total() int {
	if r.Kind == ResultText {
		return len(r.Texts)
	}
	n := 0
	for _, b := range r.Buckets {
		n += b.Value
	}
	return n
}

type aggregateResultJSON struct {
	Kind     ResultKind    `json:"kind"`
	Buckets  []Bucket      `json:"buckets,omitempty"`
	Texts    []AnswerValue `json:"texts,omitempty"`
	Samples  []AnswerValue `json:"samples,omitempty"`
	Overflow int           `json:"overflow,omitempty"`
	Total    int           `json:"total"`
}

func (r AggregateResult) MarshalJSON() ([]byte, error) {
	out := aggregateResultJSON{Kind: r.Kind, Total: r.Total()}
	switch r.Kind {
	case ResultFrequency:
		out.Buckets = r.Buckets
		if out.Buckets == nil {
			out.Buckets = []Bucket{}
		}
	case ResultText:
		out.Texts = r.Texts
		out.Samples = r.Samples()
		out.Overflow = r.Overflow()
	}
	return json.Marshal(out)
}

func (r *AggregateResult) UnmarshalJSON(data []byte) error {
	var in aggregateResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = AggregateResult{Kind: in.Kind, Buckets: in.Buckets, Texts: in.Texts}
	return nil
}

// QuestionSummary pairs a question with its aggregate
type QuestionSummary struct {
	Question Question        `json:"question"`
	Result   AggregateResult `json:"result"`
}

// FilterableQuestion is a question offered as a filter target
type FilterableQuestion struct {
	QuestionID string   `json:"questionId"`
	Text       string   `json:"text"`
	Options    []string `json:"options"`
}

// AnalyticsSummary is the analytics dashboard for one form and filter
type AnalyticsSummary struct {
	FormID              string               `json:"formId"`
	Title               string               `json:"title"`
	TotalResponses      int                  `json:"totalResponses"`
	FilteredResponses   int                  `json:"filteredResponses"`
	Filter              map[string]string    `json:"filter"`
	FilterableQuestions []FilterableQuestion `json:"filterableQuestions"`
	Questions           []QuestionSummary    `json:"questions"`
	GeneratedAt         time.Time            `json:"generatedAt"`
}
