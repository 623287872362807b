package service

import (
	"context"
	"testing"

	"formpulse/internal/model"
)

func TestFormServiceCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		in   *model.FormInput
		want ErrorCode
	}{
		{name: "nil body", in: nil, want: ErrorInvalid},
		{name: "missing title", in: &model.FormInput{Title: "  "}, want: ErrorInvalid},
		{
			name: "unknown type",
			in: &model.FormInput{Title: "T", Questions: []model.Question{
				{ID: "q1", Type: "slider", Text: "How much"},
			}},
			want: ErrorInvalid,
		},
		{
			name: "duplicate ids",
			in: &model.FormInput{Title: "T", Questions: []model.Question{
				{ID: "q1", Type: model.QuestionTypeShortText, Text: "A"},
				{ID: "q1", Type: model.QuestionTypeLongText, Text: "B"},
			}},
			want: ErrorInvalid,
		},
		{
			name: "choice without options",
			in: &model.FormInput{Title: "T", Questions: []model.Question{
				{ID: "q1", Type: model.QuestionTypeSingleChoice, Text: "Pick", Options: []string{" "}},
			}},
			want: ErrorInvalid,
		},
		{
			name: "question without text",
			in: &model.FormInput{Title: "T", Questions: []model.Question{
				{ID: "q1", Type: model.QuestionTypeRating},
			}},
			want: ErrorInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFormService(newStubFormRepo(), &stubResponseRepo{}, nil)
			_, err := svc.Create(context.Background(), "owner-1", tt.in)
			if got := errorCode(err); got != tt.want {
				t.Fatalf("error code = %q (%v), want %q", got, err, tt.want)
			}
		})
	}
}

func TestFormServiceCreateAssignsIDs(t *testing.T) {
	repo := newStubFormRepo()
	svc := NewFormService(repo, &stubResponseRepo{}, nil)

	form, err := svc.Create(context.Background(), "owner-1", &model.FormInput{
		Title: " Feedback ",
		Questions: []model.Question{
			{Type: model.QuestionTypeShortText, Text: "Name", Options: []string{"ignored"}},
			{ID: "sat", Type: model.QuestionTypeSingleChoice, Text: "Satisfied?", Options: []string{"Yes", " No "}},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if form.ID == "" || form.OwnerID != "owner-1" || form.Title != "Feedback" {
		t.Fatalf("unexpected form %+v", form)
	}
	if form.Questions[0].ID == "" {
		t.Fatal("missing question id was not assigned")
	}
	if form.Questions[0].Options != nil {
		t.Fatalf("options kept on text question: %v", form.Questions[0].Options)
	}
	if got := form.Questions[1].Options; len(got) != 2 || got[1] != "No" {
		t.Fatalf("options not trimmed: %q", got)
	}
	if _, ok := repo.forms[form.ID]; !ok {
		t.Fatal("form not stored")
	}
}

func TestFormServiceOwnership(t *testing.T) {
	svc := NewFormService(newStubFormRepo(feedbackForm()), &stubResponseRepo{}, nil)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "owner-1", "f1"); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := svc.Get(ctx, "intruder", "f1"); errorCode(err) != ErrorForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Get(ctx, "owner-1", "missing"); errorCode(err) != ErrorNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, "intruder", "f1"); errorCode(err) != ErrorForbidden {
		t.Fatalf("expected forbidden delete, got %v", err)
	}

	pub, err := svc.GetPublic(ctx, "f1")
	if err != nil {
		t.Fatalf("public: %v", err)
	}
	if pub.ID != "f1" || len(pub.Questions) != 5 {
		t.Fatalf("unexpected public form %+v", pub)
	}
}

func TestFormServiceUpdateChangesSchemaVersion(t *testing.T) {
	repo := newStubFormRepo(feedbackForm())
	b := &recordingBroadcaster{}
	svc := NewFormService(repo, &stubResponseRepo{}, nil)
	svc.SetBroadcaster(b)
	ctx := context.Background()

	before, _ := repo.GetByID(ctx, "f1")
	updated, err := svc.Update(ctx, "owner-1", "f1", &model.FormInput{
		Title:     "Renamed",
		Questions: []model.Question{{ID: "name", Type: model.QuestionTypeShortText, Text: "Name"}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.SchemaVersion() == before.SchemaVersion() {
		t.Fatal("schema version unchanged after update")
	}
	if updated.OwnerID != "owner-1" || updated.Title != "Renamed" || len(updated.Questions) != 1 {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if len(b.events) != 1 || b.events[0].msgType != EventFormUpdated {
		t.Fatalf("events = %+v", b.events)
	}
}

func TestFormServiceDeleteCascades(t *testing.T) {
	repo := newStubFormRepo(feedbackForm())
	responses := &stubResponseRepo{responses: []model.Response{
		{ID: "r1", FormID: "f1"},
		{ID: "r2", FormID: "other"},
	}}
	c := newStubCache()
	b := &recordingBroadcaster{}
	svc := NewFormService(repo, responses, c)
	svc.SetBroadcaster(b)

	if err := svc.Delete(context.Background(), "owner-1", "f1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.forms["f1"]; ok {
		t.Fatal("form still stored")
	}
	if len(responses.responses) != 1 || responses.responses[0].ID != "r2" {
		t.Fatalf("responses left: %+v", responses.responses)
	}
	if len(c.invalidated) != 1 || c.invalidated[0] != "f1" {
		t.Fatalf("cache invalidations = %v", c.invalidated)
	}
	if len(b.disconnected) != 1 {
		t.Fatalf("live feed not closed: %v", b.disconnected)
	}
}
