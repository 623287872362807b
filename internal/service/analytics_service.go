package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"formpulse/internal/analytics"
	"formpulse/internal/cache"
	"formpulse/internal/model"
	"formpulse/internal/repository"
	"formpulse/pkg/logger"
	"formpulse/pkg/monitoring"
	"formpulse/pkg/tracing"
)

// AnalyticsService builds per-question dashboards, memoized in Redis
type AnalyticsService struct {
	formRepo       repository.FormRepo
	responseRepo   repository.ResponseRepo
	analyticsCache cache.AnalyticsCache
	now            func() time.Time
}

// NewAnalyticsService creates a new analytics service. analyticsCache may be nil.
func NewAnalyticsService(formRepo repository.FormRepo, responseRepo repository.ResponseRepo, analyticsCache cache.AnalyticsCache) *AnalyticsService {
	return &AnalyticsService{
		formRepo:       formRepo,
		responseRepo:   responseRepo,
		analyticsCache: analyticsCache,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Summary returns the analytics of a form's responses narrowed by filter
func (s *AnalyticsService) Summary(ctx context.Context, ownerID, formID string, filter analytics.Filter) (*model.AnalyticsSummary, error) {
	ctx, span := tracing.Tracer().Start(ctx, "AnalyticsService.Summary")
	defer span.End()
	span.SetAttributes(attribute.String("form.id", formID), attribute.Int("filter.active", len(filter.Keys())))

	form, err := loadOwnedForm(ctx, s.formRepo, ownerID, formID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	active := filter.Active()
	key := cache.SummaryKey{
		FormID:        form.ID,
		SchemaVersion: form.SchemaVersion(),
		ResponseCount: form.ResponseCount,
		Filter:        active,
	}
	if cached := s.cached(ctx, key); cached != nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	responses, err := s.responseRepo.ListByFormID(ctx, form.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list responses")
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	summary := s.build(ctx, form, responses, active)
	span.SetAttributes(
		attribute.Int("responses.total", summary.TotalResponses),
		attribute.Int("responses.filtered", summary.FilteredResponses),
	)

	if s.analyticsCache != nil {
		if err := s.analyticsCache.SetSummary(ctx, key, summary); err != nil {
			monitoring.AnalyticsCache.WithLabelValues("error").Inc()
			logger.Log.Warn("analytics cache write failed", zap.String("formId", form.ID), zap.Error(err))
		}
	}
	return summary, nil
}

func (s *AnalyticsService) cached(ctx context.Context, key cache.SummaryKey) *model.AnalyticsSummary {
	if s.analyticsCache == nil {
		return nil
	}
	summary, err := s.analyticsCache.GetSummary(ctx, key)
	if err != nil {
		monitoring.AnalyticsCache.WithLabelValues("error").Inc()
		logger.Log.Warn("analytics cache read failed", zap.String("formId", key.FormID), zap.Error(err))
		return nil
	}
	if summary == nil {
		monitoring.AnalyticsCache.WithLabelValues("miss").Inc()
		return nil
	}
	monitoring.AnalyticsCache.WithLabelValues("hit").Inc()
	return summary
}

// build runs filter and aggregation over an already loaded response set.
func (s *AnalyticsService) build(ctx context.Context, form *model.Form, responses []model.Response, filter analytics.Filter) *model.AnalyticsSummary {
	_, span := tracing.Tracer().Start(ctx, "analytics.Aggregate")
	defer span.End()
	start := time.Now()

	filtered := analytics.ApplyFilter(responses, filter)
	results := analytics.Aggregate(form.Questions, filtered)

	monitoring.AggregationDuration.Observe(time.Since(start).Seconds())

	return &model.AnalyticsSummary{
		FormID:              form.ID,
		Title:               form.Title,
		TotalResponses:      len(responses),
		FilteredResponses:   len(filtered),
		Filter:              map[string]string(filter),
		FilterableQuestions: filterableQuestions(form.Questions),
		Questions:           analytics.Summaries(form.Questions, results),
		GeneratedAt:         s.now(),
	}
}

func filterableQuestions(questions []model.Question) []model.FilterableQuestion {
	out := []model.FilterableQuestion{}
	for _, q := range questions {
		if !q.Type.Filterable() {
			continue
		}
		out = append(out, model.FilterableQuestion{
			QuestionID: q.ID,
			Text:       q.Text,
			Options:    q.FilterOptions(),
		})
	}
	return out
}
