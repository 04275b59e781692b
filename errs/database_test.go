package errs

import (
	"errors"
	"net/http"
	"testing"
)

func TestNewDatabaseErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		cause      error
		wantStatus int
	}{
		{"duplicate key", errors.New(`duplicate key value violates unique constraint "users_email_key"`), http.StatusConflict},
		{"foreign key", errors.New("insert violates foreign key constraint"), http.StatusBadRequest},
		{"record not found", errors.New("record not found"), http.StatusNotFound},
		{"permission denied", errors.New("pq: permission denied for table projects"), http.StatusForbidden},
		{"row-level security", errors.New(`new row violates row-level security policy for table "projects"`), http.StatusForbidden},
		{"connection refused", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable},
		{"unclassified", errors.New("syntax error at or near"), http.StatusInternalServerError},
		{"no cause", nil, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := NewDatabaseError("update", "project", tt.cause)
			if apiErr.StatusCode != tt.wantStatus {
				t.Errorf("status = %d; want %d", apiErr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestNewDatabaseErrorKeepsApiErrCause(t *testing.T) {
	notFound := NewNotFound("project")

	wrapped := NewDatabaseError("find", "project", notFound)
	if wrapped.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d; want 404 preserved from the cause", wrapped.StatusCode)
	}
	if !IsNotFound(wrapped) {
		t.Error("wrapped error lost its not-found class")
	}
}

func TestSentinelCheckers(t *testing.T) {
	if !IsForbidden(NewForbiddenError("no")) {
		t.Error("forbidden error not recognized")
	}
	if !IsConfirmationRequiredError(NewConfirmationRequiredError("delete project")) {
		t.Error("confirmation error not recognized")
	}
	if IsForbidden(errors.New("some other error")) {
		t.Error("unrelated error classified as forbidden")
	}
}
