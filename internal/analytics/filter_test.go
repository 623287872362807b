package analytics

import (
	"reflect"
	"testing"

	"formpulse/internal/model"
)

func filterFixture() []model.Response {
	return []model.Response{
		{ID: "r1", Answers: []model.Answer{
			{QuestionID: "color", Value: model.StringValue("Red")},
			{QuestionID: "stars", Value: model.NumberValue(5)},
		}},
		{ID: "r2", Answers: []model.Answer{
			{QuestionID: "color", Value: model.StringValue("Blue")},
			{QuestionID: "stars", Value: model.NumberValue(5)},
		}},
		{ID: "r3", Answers: []model.Answer{
			{QuestionID: "stars", Value: model.NumberValue(5)},
		}},
		{ID: "r4", Answers: []model.Answer{
			{QuestionID: "color", Value: model.StringValue("Red")},
			{QuestionID: "pets", Value: model.ListValue("cat", "dog")},
		}},
	}
}

func ids(rs []model.Response) []string {
	out := []string{}
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestApplyFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "nil filter", filter: nil, want: []string{"r1", "r2", "r3", "r4"}},
		{name: "empty filter", filter: Filter{}, want: []string{"r1", "r2", "r3", "r4"}},
		{name: "all values empty", filter: Filter{"color": "", "stars": ""}, want: []string{"r1", "r2", "r3", "r4"}},
		{name: "single constraint", filter: Filter{"color": "Red"}, want: []string{"r1", "r4"}},
		{name: "numeric coerced", filter: Filter{"stars": "5"}, want: []string{"r1", "r2", "r3"}},
		{name: "combined", filter: Filter{"color": "Red", "stars": "5"}, want: []string{"r1"}},
		{name: "inactive entry ignored", filter: Filter{"color": "Blue", "stars": ""}, want: []string{"r2"}},
		{name: "missing answer excluded", filter: Filter{"color": "Red", "stars": "5"}, want: []string{"r1"}},
		{name: "unknown question", filter: Filter{"ghost": "x"}, want: []string{}},
		{name: "multi-choice whole list", filter: Filter{"pets": "cat,dog"}, want: []string{"r4"}},
		{name: "multi-choice element does not match", filter: Filter{"pets": "cat"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(ApplyFilter(filterFixture(), tt.filter))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyFilterIdentityReturnsInput(t *testing.T) {
	in := filterFixture()
	out := ApplyFilter(in, Filter{"color": ""})
	if len(out) != len(in) || &out[0] != &in[0] {
		t.Fatalf("identity filter should hand back the input slice")
	}
}

func TestApplyFilterDoesNotMutateInput(t *testing.T) {
	in := filterFixture()
	before := ids(in)
	_ = ApplyFilter(in, Filter{"color": "Blue"})
	if !reflect.DeepEqual(ids(in), before) {
		t.Fatalf("input reordered: %v", ids(in))
	}
}

func TestFilterKeys(t *testing.T) {
	f := Filter{"b": "1", "a": "2", "c": ""}
	if got := f.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("keys = %v", got)
	}
	if len(f.Active()) != 2 {
		t.Fatalf("active = %v", f.Active())
	}
}
