package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"formpulse/internal/cache"
	"formpulse/internal/model"
	"formpulse/internal/repository"
	"formpulse/pkg/logger"
)

// FormService handles form CRUD for owners and the public respondent view
type FormService struct {
	formRepo       repository.FormRepo
	responseRepo   repository.ResponseRepo
	analyticsCache cache.AnalyticsCache
	broadcaster    Broadcaster
}

// NewFormService creates a new form service. analyticsCache may be nil.
func NewFormService(formRepo repository.FormRepo, responseRepo repository.ResponseRepo, analyticsCache cache.AnalyticsCache) *FormService {
	return &FormService{
		formRepo:       formRepo,
		responseRepo:   responseRepo,
		analyticsCache: analyticsCache,
		broadcaster:    noopBroadcaster{},
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *FormService) SetBroadcaster(b Broadcaster) {
	if b != nil {
		s.broadcaster = b
	}
}

// Create validates the input and stores a new form owned by ownerID
func (s *FormService) Create(ctx context.Context, ownerID string, in *model.FormInput) (*model.Form, error) {
	questions, err := normalizeForm(in)
	if err != nil {
		return nil, err
	}

	form := &model.Form{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Questions:   questions,
	}
	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}
	logger.Log.Info("form created", zap.String("formId", form.ID), zap.String("ownerId", ownerID), zap.Int("questions", len(questions)))
	return form, nil
}

// Get returns a form its owner may manage
func (s *FormService) Get(ctx context.Context, ownerID, formID string) (*model.Form, error) {
	return loadOwnedForm(ctx, s.formRepo, ownerID, formID)
}

// GetPublic returns the respondent view of a form
func (s *FormService) GetPublic(ctx context.Context, formID string) (*model.PublicForm, error) {
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to load form: %w", err)
	}
	if form == nil {
		return nil, NewNotFoundError("form not found")
	}
	return form.Public(), nil
}

// List returns every form of an owner, newest first
func (s *FormService) List(ctx context.Context, ownerID string) ([]*model.Form, error) {
	forms, err := s.formRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	return forms, nil
}

// Update replaces the editable fields. Stored responses are kept as they are;
// answers to removed questions simply stop showing up in analytics.
func (s *FormService) Update(ctx context.Context, ownerID, formID string, in *model.FormInput) (*model.Form, error) {
	form, err := loadOwnedForm(ctx, s.formRepo, ownerID, formID)
	if err != nil {
		return nil, err
	}
	questions, err := normalizeForm(in)
	if err != nil {
		return nil, err
	}

	form.Title = strings.TrimSpace(in.Title)
	form.Description = in.Description
	form.Questions = questions
	if err := s.formRepo.Update(ctx, form); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("form not found")
		}
		return nil, fmt.Errorf("failed to update form: %w", err)
	}

	s.broadcaster.BroadcastToForm(form.ID, EventFormUpdated, form)
	return form, nil
}

// Delete removes a form together with its responses
func (s *FormService) Delete(ctx context.Context, ownerID, formID string) error {
	if _, err := loadOwnedForm(ctx, s.formRepo, ownerID, formID); err != nil {
		return err
	}

	deleted, err := s.responseRepo.DeleteByFormID(ctx, formID)
	if err != nil {
		return fmt.Errorf("failed to delete responses: %w", err)
	}
	if err := s.formRepo.Delete(ctx, formID); err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}
	if s.analyticsCache != nil {
		if err := s.analyticsCache.InvalidateForm(ctx, formID); err != nil {
			logger.Log.Warn("analytics cache invalidation failed", zap.String("formId", formID), zap.Error(err))
		}
	}

	s.broadcaster.BroadcastToForm(formID, EventFormDeleted, map[string]string{"formId": formID})
	s.broadcaster.DisconnectForm(formID)
	logger.Log.Info("form deleted", zap.String("formId", formID), zap.Int64("responses", deleted))
	return nil
}

// loadOwnedForm resolves a form and checks that ownerID owns it.
func loadOwnedForm(ctx context.Context, repo repository.FormRepo, ownerID, formID string) (*model.Form, error) {
	form, err := repo.GetByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to load form: %w", err)
	}
	if form == nil {
		return nil, NewNotFoundError("form not found")
	}
	if form.OwnerID != ownerID {
		return nil, NewForbiddenError("form belongs to another owner")
	}
	return form, nil
}

// normalizeForm validates a form definition and returns its questions with
// missing ids filled in.
func normalizeForm(in *model.FormInput) ([]model.Question, error) {
	if in == nil {
		return nil, NewInvalidError("form body required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewInvalidError("title required")
	}

	seen := make(map[string]struct{}, len(in.Questions))
	out := make([]model.Question, 0, len(in.Questions))
	for i, q := range in.Questions {
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			return nil, NewInvalidError(fmt.Sprintf("question %d: text required", i+1))
		}
		if !q.Type.Known() {
			return nil, NewInvalidError(fmt.Sprintf("question %d: unknown type %q", i+1, q.Type))
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if _, dup := seen[q.ID]; dup {
			return nil, NewInvalidError(fmt.Sprintf("question %d: duplicate id %q", i+1, q.ID))
		}
		seen[q.ID] = struct{}{}

		if q.Type.IsChoice() {
			opts := make([]string, 0, len(q.Options))
			for _, o := range q.Options {
				if o = strings.TrimSpace(o); o != "" {
					opts = append(opts, o)
				}
			}
			if len(opts) == 0 {
				return nil, NewInvalidError(fmt.Sprintf("question %d: at least one option required", i+1))
			}
			q.Options = opts
		} else {
			q.Options = nil
		}
		out = append(out, q)
	}
	return out, nil
}
