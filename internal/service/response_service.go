package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"formpulse/internal/model"
	"formpulse/internal/repository"
	"formpulse/pkg/logger"
	"formpulse/pkg/monitoring"
)

// ResponseService accepts submissions and lists them for owners
type ResponseService struct {
	formRepo     repository.FormRepo
	responseRepo repository.ResponseRepo
	broadcaster  Broadcaster
	now          func() time.Time
}

// NewResponseService creates a new response service
func NewResponseService(formRepo repository.FormRepo, responseRepo repository.ResponseRepo) *ResponseService {
	return &ResponseService{
		formRepo:     formRepo,
		responseRepo: responseRepo,
		broadcaster:  noopBroadcaster{},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *ResponseService) SetBroadcaster(b Broadcaster) {
	if b != nil {
		s.broadcaster = b
	}
}

// Submit validates and stores a submission, then notifies the owner's feed
func (s *ResponseService) Submit(ctx context.Context, formID string, req *model.SubmitResponseRequest) (*model.SubmitResponseResult, error) {
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to load form: %w", err)
	}
	if form == nil {
		return nil, NewNotFoundError("form not found")
	}
	if req == nil {
		req = &model.SubmitResponseRequest{}
	}

	answers, err := validateAnswers(form, req.Answers)
	if err != nil {
		return nil, err
	}

	response := &model.Response{
		ID:          uuid.NewString(),
		FormID:      form.ID,
		SubmittedAt: s.now(),
		Answers:     answers,
	}
	if err := s.responseRepo.Create(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to store response: %w", err)
	}

	count, err := s.formRepo.IncrementResponseCount(ctx, form.ID)
	if err != nil {
		// the response is stored; a lagging counter only delays cache turnover
		logger.Log.Error("response counter increment failed", zap.String("formId", form.ID), zap.Error(err))
		count = form.ResponseCount + 1
	}

	monitoring.ResponsesSubmitted.WithLabelValues(form.ID).Inc()
	s.broadcaster.BroadcastToForm(form.ID, EventResponseSubmitted, model.ResponseSubmittedEvent{
		FormID:        form.ID,
		Response:      *response,
		ResponseCount: count,
	})

	return &model.SubmitResponseResult{ResponseID: response.ID, ResponseCount: count}, nil
}

// List returns a form's responses in submission order
func (s *ResponseService) List(ctx context.Context, ownerID, formID string) ([]model.Response, error) {
	if _, err := loadOwnedForm(ctx, s.formRepo, ownerID, formID); err != nil {
		return nil, err
	}
	responses, err := s.responseRepo.ListByFormID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}

// validateAnswers checks a submission against the current schema. Answers
// with no value are dropped.
func validateAnswers(form *model.Form, answers []model.Answer) ([]model.Answer, error) {
	out := make([]model.Answer, 0, len(answers))
	seen := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		q, ok := form.Question(a.QuestionID)
		if !ok {
			return nil, NewInvalidError(fmt.Sprintf("unknown question %q", a.QuestionID))
		}
		if _, dup := seen[a.QuestionID]; dup {
			return nil, NewInvalidError(fmt.Sprintf("duplicate answer for question %q", a.QuestionID))
		}
		seen[a.QuestionID] = struct{}{}

		if a.Value.Kind() == model.ValueNone {
			continue
		}
		if err := checkValue(q, a.Value); err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	for _, q := range form.Questions {
		if !q.Required {
			continue
		}
		if !answered(out, q.ID) {
			return nil, NewInvalidError(fmt.Sprintf("question %q requires an answer", q.Text))
		}
	}
	return out, nil
}

func answered(answers []model.Answer, questionID string) bool {
	for _, a := range answers {
		if a.QuestionID == questionID {
			return a.Value.Truthy()
		}
	}
	return false
}

func checkValue(q model.Question, v model.AnswerValue) error {
	switch q.Type {
	case model.QuestionTypeSingleChoice:
		if v.Kind() == model.ValueList || !contains(q.Options, v.String()) {
			return NewInvalidError(fmt.Sprintf("question %q: %q is not an option", q.Text, v.String()))
		}
	case model.QuestionTypeMultiChoice:
		items, ok := v.List()
		if !ok {
			return NewInvalidError(fmt.Sprintf("question %q expects a list of options", q.Text))
		}
		for _, item := range items {
			if !contains(q.Options, item) {
				return NewInvalidError(fmt.Sprintf("question %q: %q is not an option", q.Text, item))
			}
		}
	case model.QuestionTypeRating:
		n, err := strconv.Atoi(v.String())
		if err != nil || n < 1 || n > len(model.RatingScale) {
			return NewInvalidError(fmt.Sprintf("question %q: rating must be 1-%d", q.Text, len(model.RatingScale)))
		}
	case model.QuestionTypeShortText, model.QuestionTypeLongText, model.QuestionTypeFileUpload:
		if v.Kind() == model.ValueList {
			return NewInvalidError(fmt.Sprintf("question %q expects a single value", q.Text))
		}
	}
	return nil
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
