package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"formpulse/internal/model"
	"formpulse/internal/repository"
	"formpulse/internal/storage"
	"formpulse/pkg/logger"
)

// UploadService stores files attached to file-upload answers
type UploadService struct {
	formRepo repository.FormRepo
	provider storage.Provider
	maxBytes int64
}

// NewUploadService creates a new upload service. maxBytes <= 0 disables the size check.
func NewUploadService(formRepo repository.FormRepo, provider storage.Provider, maxBytes int64) *UploadService {
	return &UploadService{
		formRepo: formRepo,
		provider: provider,
		maxBytes: maxBytes,
	}
}

// MaxBytes is the largest accepted upload.
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload stores one file for questionID and returns where it lives
func (s *UploadService) Upload(ctx context.Context, formID, questionID, filename string, reader io.Reader, size int64, contentType string) (*model.UploadResult, error) {
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to load form: %w", err)
	}
	if form == nil {
		return nil, NewNotFoundError("form not found")
	}
	q, ok := form.Question(questionID)
	if !ok {
		return nil, NewNotFoundError("question not found")
	}
	if q.Type != model.QuestionTypeFileUpload {
		return nil, NewInvalidError("question does not accept files")
	}
	if size <= 0 {
		return nil, NewInvalidError("empty file")
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, NewInvalidError(fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	key := ObjectKey(formID, questionID, filename)
	url, err := s.provider.Upload(ctx, key, reader, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	logger.Log.Info("answer file stored", zap.String("formId", formID), zap.String("key", key), zap.Int64("size", size))
	return &model.UploadResult{Key: key, URL: url, Size: size, ContentType: contentType}, nil
}

// ObjectKey is forms/<formID>/<questionID>/<uuid><ext>. Only the extension of
// the client filename is kept.
func ObjectKey(formID, questionID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return fmt.Sprintf("forms/%s/%s/%s%s", formID, questionID, uuid.NewString(), ext)
}
