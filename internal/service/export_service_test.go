package service

import (
	"context"
	"strings"
	"testing"

	"formpulse/internal/analytics"
	"formpulse/internal/export"
)

func TestExportServiceCSV(t *testing.T) {
	svc := NewExportService(newStubFormRepo(feedbackForm()), &stubResponseRepo{responses: seededResponses()})

	file, err := svc.Export(context.Background(), "owner-1", "f1", analytics.Filter{"sat": "Yes"}, export.FormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if file.Filename != "Customer Feedback-responses.csv" {
		t.Fatalf("filename = %q", file.Filename)
	}
	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header + 2 rows, got %d lines:\n%s", len(lines), file.Data)
	}
	if lines[0] != "responseId,submittedAt,Name,Satisfied?,Features,Stars,Attachment" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "r1,2026-01-01T00:00:00Z,Ada,Yes,\"A, B\",5,") {
		t.Fatalf("row = %q", lines[1])
	}
}

func TestExportServiceRejectsEmptySet(t *testing.T) {
	svc := NewExportService(newStubFormRepo(feedbackForm()), &stubResponseRepo{responses: seededResponses()})

	_, err := svc.Export(context.Background(), "owner-1", "f1", analytics.Filter{"sat": "Maybe"}, export.FormatJSON)
	if errorCode(err) != ErrorInvalid {
		t.Fatalf("expected invalid, got %v", err)
	}
	if _, err := svc.Export(context.Background(), "intruder", "f1", nil, export.FormatJSON); errorCode(err) != ErrorForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
