package analytics

import (
	"sort"

	"formpulse/internal/model"
)

// Filter maps a question id to the answer value a response must carry.
// Entries with an empty value place no constraint.
type Filter map[string]string

// Active returns the constraining entries only.
func (f Filter) Active() Filter {
	out := Filter{}
	for qid, want := range f {
		if want != "" {
			out[qid] = want
		}
	}
	return out
}

// IsIdentity reports whether f lets every response through.
func (f Filter) IsIdentity() bool {
	for _, want := range f {
		if want != "" {
			return false
		}
	}
	return true
}

// Keys returns the active question ids in sorted order.
func (f Filter) Keys() []string {
	keys := make([]string, 0, len(f))
	for qid, want := range f {
		if want != "" {
			keys = append(keys, qid)
		}
	}
	sort.Strings(keys)
	return keys
}

// Match reports whether r satisfies every active entry. A response without an
// answer to a constrained question never matches. Values are compared by their
// string form, so a multi-choice answer only matches its whole comma-joined list.
func (f Filter) Match(r *model.Response) bool {
	for qid, want := range f {
		if want == "" {
			continue
		}
		ans, ok := r.Answer(qid)
		if !ok || ans.Value.Kind() == model.ValueNone {
			return false
		}
		if ans.Value.String() != want {
			return false
		}
	}
	return true
}

// ApplyFilter returns the responses matching f, preserving order. With no active
// entries the input is returned as is.
func ApplyFilter(responses []model.Response, f Filter) []model.Response {
	if f.IsIdentity() {
		return responses
	}
	active := f.Active()
	out := make([]model.Response, 0, len(responses))
	for i := range responses {
		if active.Match(&responses[i]) {
			out = append(out, responses[i])
		}
	}
	return out
}
