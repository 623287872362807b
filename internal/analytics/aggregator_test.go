package analytics

import (
	"reflect"
	"testing"

	"formpulse/internal/model"
)

func answered(qid string, v model.AnswerValue) model.Response {
	return model.Response{Answers: []model.Answer{{QuestionID: qid, Value: v}}}
}

func TestAggregateFirstSeenOrder(t *testing.T) {
	questions := []model.Question{{ID: "q1", Type: model.QuestionTypeSingleChoice, Options: []string{"A", "B", "C"}}}
	var responses []model.Response
	for _, v := range []string{"B", "A", "B", "C"} {
		responses = append(responses, answered("q1", model.StringValue(v)))
	}

	got := Aggregate(questions, responses)["q1"]
	want := []model.Bucket{{Name: "B", Value: 2}, {Name: "A", Value: 1}, {Name: "C", Value: 1}}
	if got.Kind != model.ResultFrequency {
		t.Fatalf("expected frequency result, got %s", got.Kind)
	}
	if !reflect.DeepEqual(got.Buckets, want) {
		t.Fatalf("buckets = %+v, want %+v", got.Buckets, want)
	}
}

func TestAggregateEndToEnd(t *testing.T) {
	questions := []model.Question{{ID: "q1", Type: model.QuestionTypeSingleChoice, Options: []string{"Red", "Blue"}}}
	responses := []model.Response{
		answered("q1", model.StringValue("Red")),
		answered("q1", model.StringValue("Blue")),
		answered("q1", model.StringValue("Red")),
	}

	got := Aggregate(questions, responses)["q1"].Buckets
	want := []model.Bucket{{Name: "Red", Value: 2}, {Name: "Blue", Value: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buckets = %+v, want %+v", got, want)
	}
}

func TestAggregateMultiChoiceFanOut(t *testing.T) {
	questions := []model.Question{{ID: "q1", Type: model.QuestionTypeMultiChoice, Options: []string{"x", "y"}}}
	responses := []model.Response{
		answered("q1", model.ListValue("x", "y")),
		answered("q1", model.ListValue("y")),
		answered("q1", model.StringValue("x")), // wrong shape, ignored
	}

	got := Aggregate(questions, responses)["q1"].Buckets
	want := []model.Bucket{{Name: "x", Value: 1}, {Name: "y", Value: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buckets = %+v, want %+v", got, want)
	}
	for _, b := range got {
		if b.Name == "x,y" {
			t.Fatalf("combined bucket must not exist")
		}
	}
}

func TestAggregateRatingSharesStringBuckets(t *testing.T) {
	questions := []model.Question{{ID: "r", Type: model.QuestionTypeRating}}
	responses := []model.Response{
		answered("r", model.NumberValue(4)),
		answered("r", model.StringValue("4")),
		answered("r", model.NumberValue(5)),
		answered("r", model.AnswerValue{}),
	}

	got := Aggregate(questions, responses)["r"].Buckets
	want := []model.Bucket{{Name: "4", Value: 2}, {Name: "5", Value: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buckets = %+v, want %+v", got, want)
	}
}

func TestAggregateTextSamples(t *testing.T) {
	questions := []model.Question{{ID: "t", Type: model.QuestionTypeLongText}}
	responses := []model.Response{
		answered("t", model.StringValue("first")),
		answered("t", model.StringValue("")),
		{ID: "no-answer"},
		answered("t", model.AnswerValue{}),
		answered("t", model.StringValue("second")),
	}

	got := Aggregate(questions, responses)["t"]
	if got.Kind != model.ResultText {
		t.Fatalf("expected text result, got %s", got.Kind)
	}
	if len(got.Texts) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got.Texts))
	}
	if got.Texts[0].String() != "first" || got.Texts[1].String() != "second" {
		t.Fatalf("unexpected sample order: %v", got.Texts)
	}
}

func TestAggregateTextOverflow(t *testing.T) {
	questions := []model.Question{{ID: "t", Type: model.QuestionTypeShortText}}
	var responses []model.Response
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		responses = append(responses, answered("t", model.StringValue(s)))
	}

	got := Aggregate(questions, responses)["t"]
	if len(got.Samples()) != model.SampleLimit {
		t.Fatalf("expected %d samples, got %d", model.SampleLimit, len(got.Samples()))
	}
	if got.Overflow() != 2 {
		t.Fatalf("expected overflow 2, got %d", got.Overflow())
	}
	if len(got.Texts) != 7 {
		t.Fatalf("full list must be retained, got %d", len(got.Texts))
	}
}

func TestAggregateDriftAndUnsupported(t *testing.T) {
	questions := []model.Question{
		{ID: "q1", Type: model.QuestionTypeSingleChoice},
		{ID: "f", Type: model.QuestionTypeFileUpload},
		{ID: "z", Type: model.QuestionType("matrix")},
	}
	responses := []model.Response{{Answers: []model.Answer{
		{QuestionID: "ghost", Value: model.StringValue("boo")},
		{QuestionID: "f", Value: model.StringValue("/uploads/cv.pdf")},
		{QuestionID: "z", Value: model.StringValue("cell")},
		{QuestionID: "q1", Value: model.StringValue("A")},
	}}}

	got := Aggregate(questions, responses)
	if _, ok := got["ghost"]; ok {
		t.Fatalf("orphaned answer must not produce a result")
	}
	if len(got) != 3 {
		t.Fatalf("expected one result per question, got %d", len(got))
	}
	for _, id := range []string{"f", "z"} {
		if got[id].Kind != model.ResultUnsupported {
			t.Fatalf("%s: expected unsupported, got %s", id, got[id].Kind)
		}
	}
	if got["q1"].Total() != 1 {
		t.Fatalf("expected q1 total 1, got %d", got["q1"].Total())
	}
}

func TestAggregateEmptyResponses(t *testing.T) {
	questions := []model.Question{
		{ID: "c", Type: model.QuestionTypeMultiChoice},
		{ID: "t", Type: model.QuestionTypeShortText},
	}

	got := Aggregate(questions, nil)
	if len(got) != 2 {
		t.Fatalf("every question needs a result, got %d", len(got))
	}
	if got["c"].Buckets == nil || len(got["c"].Buckets) != 0 {
		t.Fatalf("expected empty, non-nil buckets: %#v", got["c"].Buckets)
	}
	if got["t"].Texts == nil || len(got["t"].Texts) != 0 {
		t.Fatalf("expected empty, non-nil texts: %#v", got["t"].Texts)
	}
}

func TestAggregateDuplicateQuestionIDFirstWins(t *testing.T) {
	questions := []model.Question{
		{ID: "q", Type: model.QuestionTypeShortText},
		{ID: "q", Type: model.QuestionTypeSingleChoice},
	}
	got := Aggregate(questions, []model.Response{answered("q", model.StringValue("hello"))})
	if got["q"].Kind != model.ResultText {
		t.Fatalf("first declaration should win, got %s", got["q"].Kind)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	questions := []model.Question{
		{ID: "c", Type: model.QuestionTypeMultiChoice},
		{ID: "s", Type: model.QuestionTypeSingleChoice},
	}
	var responses []model.Response
	for _, pair := range [][2]string{{"k", "z"}, {"a", "y"}, {"m", "z"}, {"a", "x"}} {
		responses = append(responses, model.Response{Answers: []model.Answer{
			{QuestionID: "c", Value: model.ListValue(pair[0], "shared")},
			{QuestionID: "s", Value: model.StringValue(pair[1])},
		}})
	}

	first := Aggregate(questions, responses)
	for i := 0; i < 10; i++ {
		if again := Aggregate(questions, responses); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestSummariesFollowSchemaOrder(t *testing.T) {
	questions := []model.Question{
		{ID: "b", Type: model.QuestionTypeRating},
		{ID: "a", Type: model.QuestionTypeShortText},
	}
	sums := Summaries(questions, Aggregate(questions, nil))
	if len(sums) != 2 || sums[0].Question.ID != "b" || sums[1].Question.ID != "a" {
		t.Fatalf("unexpected order: %+v", sums)
	}
}
