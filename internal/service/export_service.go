package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"formpulse/internal/analytics"
	"formpulse/internal/export"
	"formpulse/internal/repository"
	"formpulse/pkg/logger"
	"formpulse/pkg/monitoring"
	"formpulse/pkg/tracing"
)

// ExportService renders a form's responses as a downloadable file
type ExportService struct {
	formRepo     repository.FormRepo
	responseRepo repository.ResponseRepo
}

// NewExportService creates a new export service
func NewExportService(formRepo repository.FormRepo, responseRepo repository.ResponseRepo) *ExportService {
	return &ExportService{
		formRepo:     formRepo,
		responseRepo: responseRepo,
	}
}

// Export projects the filtered responses and encodes them in format
func (s *ExportService) Export(ctx context.Context, ownerID, formID string, filter analytics.Filter, format export.Format) (*export.File, error) {
	ctx, span := tracing.Tracer().Start(ctx, "ExportService.Export")
	defer span.End()

	form, err := loadOwnedForm(ctx, s.formRepo, ownerID, formID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responseRepo.ListByFormID(ctx, form.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	filtered := analytics.ApplyFilter(responses, filter)
	if len(filtered) == 0 {
		return nil, NewInvalidError("no responses to export")
	}

	file, err := export.Render(export.Table{
		Title:   form.Title,
		Columns: analytics.Columns(form.Questions),
		Rows:    analytics.Project(form.Questions, filtered),
	}, format)
	if err != nil {
		return nil, err
	}

	monitoring.ExportsRendered.WithLabelValues(string(format)).Inc()
	logger.Log.Info("responses exported",
		zap.String("formId", form.ID),
		zap.String("format", string(format)),
		zap.Int("rows", len(filtered)),
		zap.Int("bytes", len(file.Data)),
	)
	return file, nil
}
