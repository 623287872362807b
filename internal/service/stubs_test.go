package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"formpulse/internal/cache"
	"formpulse/internal/model"
	"formpulse/internal/repository"
)

type stubFormRepo struct {
	mu    sync.Mutex
	forms map[string]*model.Form
	err   error
}

func newStubFormRepo(forms ...*model.Form) *stubFormRepo {
	r := &stubFormRepo{forms: map[string]*model.Form{}}
	for _, f := range forms {
		r.forms[f.ID] = f
	}
	return r
}

func (r *stubFormRepo) Create(ctx context.Context, form *model.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	form.CreatedAt = time.Now().UTC()
	form.UpdatedAt = form.CreatedAt
	cp := *form
	r.forms[form.ID] = &cp
	return nil
}

func (r *stubFormRepo) GetByID(ctx context.Context, id string) (*model.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	f, ok := r.forms[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *stubFormRepo) GetByOwnerID(ctx context.Context, ownerID string) ([]*model.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Form{}
	for _, f := range r.forms {
		if f.OwnerID == ownerID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubFormRepo) Update(ctx context.Context, form *model.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.forms[form.ID]; !ok {
		return repository.ErrNotFound
	}
	form.UpdatedAt = time.Now().UTC().Add(time.Nanosecond)
	cp := *form
	r.forms[form.ID] = &cp
	return nil
}

func (r *stubFormRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.forms, id)
	return nil
}

func (r *stubFormRepo) IncrementResponseCount(ctx context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	f.ResponseCount++
	return f.ResponseCount, nil
}

type stubResponseRepo struct {
	mu        sync.Mutex
	responses []model.Response
	lists     int
}

func (r *stubResponseRepo) Create(ctx context.Context, response *model.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, *response)
	return nil
}

func (r *stubResponseRepo) ListByFormID(ctx context.Context, formID string) ([]model.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	out := []model.Response{}
	for _, resp := range r.responses {
		if resp.FormID == formID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r *stubResponseRepo) DeleteByFormID(ctx context.Context, formID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.responses[:0]
	var n int64
	for _, resp := range r.responses {
		if resp.FormID == formID {
			n++
			continue
		}
		kept = append(kept, resp)
	}
	r.responses = kept
	return n, nil
}

type stubCache struct {
	entries     map[string]*model.AnalyticsSummary
	getErr      error
	setErr      error
	sets        int
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{entries: map[string]*model.AnalyticsSummary{}}
}

func (c *stubCache) GetSummary(ctx context.Context, key cache.SummaryKey) (*model.AnalyticsSummary, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[key.String()], nil
}

func (c *stubCache) SetSummary(ctx context.Context, key cache.SummaryKey, summary *model.AnalyticsSummary) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key.String()] = summary
	return nil
}

func (c *stubCache) InvalidateForm(ctx context.Context, formID string) error {
	c.invalidated = append(c.invalidated, formID)
	return nil
}

type event struct {
	formID  string
	msgType string
	payload interface{}
}

type recordingBroadcaster struct {
	events       []event
	disconnected []string
}

func (b *recordingBroadcaster) BroadcastToForm(formID, msgType string, payload interface{}) {
	b.events = append(b.events, event{formID, msgType, payload})
}

func (b *recordingBroadcaster) DisconnectForm(formID string) {
	b.disconnected = append(b.disconnected, formID)
}

type memProvider struct {
	objects map[string][]byte
	err     error
}

func (p *memProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	if p.objects == nil {
		p.objects = map[string][]byte{}
	}
	p.objects[key] = data
	return p.URL(key), nil
}

func (p *memProvider) Delete(ctx context.Context, key string) error {
	delete(p.objects, key)
	return nil
}

func (p *memProvider) URL(key string) string { return "mem://" + key }

var errBoom = errors.New("boom")

func errorCode(err error) ErrorCode {
	if se, ok := AsError(err); ok {
		return se.Code
	}
	return ""
}

// feedbackForm mirrors a typical customer feedback survey.
func feedbackForm() *model.Form {
	return &model.Form{
		ID:      "f1",
		OwnerID: "owner-1",
		Title:   "Customer Feedback",
		Questions: []model.Question{
			{ID: "name", Type: model.QuestionTypeShortText, Text: "Name"},
			{ID: "sat", Type: model.QuestionTypeSingleChoice, Text: "Satisfied?", Options: []string{"Yes", "No"}, Required: true},
			{ID: "feat", Type: model.QuestionTypeMultiChoice, Text: "Features", Options: []string{"A", "B", "C"}},
			{ID: "stars", Type: model.QuestionTypeRating, Text: "Stars"},
			{ID: "file", Type: model.QuestionTypeFileUpload, Text: "Attachment"},
		},
	}
}
