package errorutil

import (
	"errors"
	"net/http"
	"testing"

	"github.com/spec-kit/qna-service/internal/domain"
)

func TestToDomainErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{domain.ErrPostNotFound, "NOT_FOUND", http.StatusNotFound},
		{domain.ErrSecretMismatch, "UNAUTHORIZED", http.StatusUnauthorized},
		{domain.ErrAlreadyAnswered, "ALREADY_ANSWERED", http.StatusConflict},
		{domain.ErrNotAnswered, "NOT_ANSWERED", http.StatusConflict},
		{domain.NewValidationError("title"), "VALIDATION_FAILED", http.StatusBadRequest},
		{errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		mapped := ToDomainError(tc.err)
		if mapped.Code != tc.code || mapped.HTTPStatus != tc.status {
			t.Fatalf("%v: expected %s/%d, got %s/%d", tc.err, tc.code, tc.status, mapped.Code, mapped.HTTPStatus)
		}
	}
}

func TestToDomainErrorKeepsExistingDomainError(t *testing.T) {
	original := NewDomainError("CUSTOM", "custom failure", http.StatusTeapot, nil)
	if mapped := ToDomainError(original); mapped != original {
		t.Fatal("existing DomainError must pass through unchanged")
	}
}

func TestValidationDetailsCarryFieldNames(t *testing.T) {
	mapped := ToDomainError(domain.NewValidationError("title", "body"))
	fields, ok := mapped.Details["fields"].([]string)
	if !ok || len(fields) != 2 {
		t.Fatalf("expected field names in details, got %v", mapped.Details)
	}
}

func TestToDomainErrorNil(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Fatal("nil must map to nil")
	}
}
