// Package analytics turns a form schema and its responses into per-question
// aggregates, filtered response sets and flat export records. Everything here is
// pure: no I/O, no shared state, and inputs are never mutated.
package analytics

import "formpulse/internal/model"

// strategy is the accumulation rule for a question type
type strategy int

const (
	strategyUnsupported strategy = iota
	strategyScalar
	strategyFanOut
	strategyText
)

func strategyFor(t model.QuestionType) strategy {
	switch t {
	case model.QuestionTypeSingleChoice, model.QuestionTypeRating:
		return strategyScalar
	case model.QuestionTypeMultiChoice:
		return strategyFanOut
	case model.QuestionTypeShortText, model.QuestionTypeLongText:
		return strategyText
	case model.QuestionTypeFileUpload:
		return strategyUnsupported
	default:
		return strategyUnsupported
	}
}

// counter is an insertion-ordered value -> count map
type counter struct {
	index   map[string]int
	buckets []model.Bucket
}

func (c *counter) add(name string) {
	if i, ok := c.index[name]; ok {
		c.buckets[i].Value++
		return
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	c.index[name] = len(c.buckets)
	c.buckets = append(c.buckets, model.Bucket{Name: name, Value: 1})
}

type accumulator struct {
	strategy strategy
	counts   counter
	texts    []model.AnswerValue
}

func (a *accumulator) add(v model.AnswerValue) {
	switch a.strategy {
	case strategyScalar:
		if v.Kind() == model.ValueNone {
			return
		}
		a.counts.add(v.String())
	case strategyFanOut:
		items, ok := v.List()
		if !ok {
			return
		}
		for _, item := range items {
			a.counts.add(item)
		}
	case strategyText:
		if v.Truthy() {
			a.texts = append(a.texts, v)
		}
	case strategyUnsupported:
	}
}

func (a *accumulator) result() model.AggregateResult {
	switch a.strategy {
	case strategyScalar, strategyFanOut:
		buckets := a.counts.buckets
		if buckets == nil {
			buckets = []model.Bucket{}
		}
		return model.AggregateResult{Kind: model.ResultFrequency, Buckets: buckets}
	case strategyText:
		texts := a.texts
		if texts == nil {
			texts = []model.AnswerValue{}
		}
		return model.AggregateResult{Kind: model.ResultText, Texts: texts}
	}
	return model.AggregateResult{Kind: model.ResultUnsupported}
}

// Aggregate computes one AggregateResult per question in a single pass over the
// responses. Answers to unknown questions and values whose shape does not fit the
// declared type are dropped. Bucket order is the order values were first observed.
func Aggregate(questions []model.Question, responses []model.Response) map[string]model.AggregateResult {
	accs := make(map[string]*accumulator, len(questions))
	for _, q := range questions {
		if _, dup := accs[q.ID]; dup {
			continue
		}
		accs[q.ID] = &accumulator{strategy: strategyFor(q.Type)}
	}

	for i := range responses {
		for _, ans := range responses[i].Answers {
			acc, ok := accs[ans.QuestionID]
			if !ok {
				continue
			}
			acc.add(ans.Value)
		}
	}

	out := make(map[string]model.AggregateResult, len(accs))
	for id, acc := range accs {
		out[id] = acc.result()
	}
	return out
}

// Summaries orders the aggregate by schema, one entry per question.
func Summaries(questions []model.Question, results map[string]model.AggregateResult) []model.QuestionSummary {
	out := make([]model.QuestionSummary, 0, len(questions))
	for _, q := range questions {
		out = append(out, model.QuestionSummary{Question: q, Result: results[q.ID]})
	}
	return out
}
