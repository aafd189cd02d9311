package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/qna-service/internal/api/http"
	"github.com/spec-kit/qna-service/internal/api/http/handlers"
	"github.com/spec-kit/qna-service/internal/auth"
	"github.com/spec-kit/qna-service/internal/observability"
	"github.com/spec-kit/qna-service/internal/repository"
	"github.com/spec-kit/qna-service/internal/service"
	"go.uber.org/zap"
)

type failingNotifier struct{ fail bool }

func (f *failingNotifier) Send(ctx context.Context, to, subject, body string) error {
	if f.fail {
		return errors.New("smtp unreachable")
	}
	return nil
}

type testEnv struct {
	app      *fiber.App
	tokens   *auth.TokenManager
	notifier *failingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	notifier := &failingNotifier{}
	qnaService := service.NewQnaService(service.Dependencies{
		PostRepo:   repository.NewMemoryPostRepository(),
		Notifier:   notifier,
		BcryptCost: bcrypt.MinCost,
	})

	tokens := auth.NewTokenManager("test-secret", 5)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:             handlers.NewHealthHandler("qna-service-test", "test", nil, nil),
		Qna:                handlers.NewQnaHandler(qnaService),
		AdminQna:           handlers.NewAdminQnaHandler(qnaService),
		OperatorMiddleware: auth.NewOperatorMiddleware(tokens),
	})

	return &testEnv{app: app, tokens: tokens, notifier: notifier}
}

func (e *testEnv) request(t *testing.T, method, path string, payload any, operatorToken string) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if operatorToken != "" {
		req.Header.Set("Authorization", "Bearer "+operatorToken)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func (e *testEnv) operatorToken(t *testing.T) string {
	t.Helper()
	token, _, err := e.tokens.GenerateToken("op-1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func submitPayload(secret string) map[string]string {
	return map[string]string{
		"author_name":  "Jamie Lee",
		"author_email": "jamie@example.com",
		"author_phone": "010-1234-5678",
		"title":        "Shipping question",
		"body":         "When does my order arrive?",
		"secret":       secret,
	}
}

func (e *testEnv) submit(t *testing.T, secret string) string {
	t.Helper()
	resp, body := e.request(t, http.MethodPost, "/api/qna/", submitPayload(secret), "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d (%v)", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	return data["id"].(string)
}

func errorCode(body map[string]any) string {
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestSubmitAndDetailOmitSecretAndContacts(t *testing.T) {
	env := newTestEnv(t)
	id := env.submit(t, "abcd")

	resp, body := env.request(t, http.MethodGet, "/api/qna/"+id, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	for _, field := range []string{"secret", "secret_hash", "author_email", "author_phone"} {
		if _, exists := data[field]; exists {
			t.Fatalf("public detail must not expose %q", field)
		}
	}
	if data["views"].(float64) != 1 {
		t.Fatalf("detail fetch must return the post-increment view count, got %v", data["views"])
	}
}

func TestSubmitValidationFailure(t *testing.T) {
	env := newTestEnv(t)

	payload := submitPayload("abcd")
	payload["title"] = "  "
	resp, body := env.request(t, http.MethodPost, "/api/qna/", payload, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if errorCode(body) != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %q", errorCode(body))
	}
}

func TestPublicListExcludesContactFields(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, "abcd")

	resp, body := env.request(t, http.MethodGet, "/api/qna/", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	items := body["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	row := items[0].(map[string]any)
	for _, field := range []string{"author_email", "author_phone", "secret_hash", "body"} {
		if _, exists := row[field]; exists {
			t.Fatalf("public list must not expose %q", field)
		}
	}
}

func TestVisitorEditErrorCodes(t *testing.T) {
	env := newTestEnv(t)
	id := env.submit(t, "abcd")

	resp, body := env.request(t, http.MethodPut, "/api/qna/"+id,
		map[string]string{"secret": "wrong", "title": "t", "body": "b"}, "")
	if resp.StatusCode != http.StatusUnauthorized || errorCode(body) != "UNAUTHORIZED" {
		t.Fatalf("expected 401 UNAUTHORIZED, got %d %q", resp.StatusCode, errorCode(body))
	}

	resp, _ = env.request(t, http.MethodPut, "/api/qna/"+id,
		map[string]string{"secret": "abcd", "title": "Edited", "body": "Edited body"}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	token := env.operatorToken(t)
	resp, _ = env.request(t, http.MethodPost, fmt.Sprintf("/api/admin/qna/%s/answer", id),
		map[string]string{"answer_body": "done"}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("answer: expected 201, got %d", resp.StatusCode)
	}

	resp, body = env.request(t, http.MethodPut, "/api/qna/"+id,
		map[string]string{"secret": "abcd", "title": "t", "body": "b"}, "")
	if resp.StatusCode != http.StatusConflict || errorCode(body) != "ALREADY_ANSWERED" {
		t.Fatalf("expected 409 ALREADY_ANSWERED, got %d %q", resp.StatusCode, errorCode(body))
	}
}

func TestVisitorDeleteFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.submit(t, "abcd")

	resp, _ := env.request(t, http.MethodDelete, "/api/qna/"+id,
		map[string]string{"secret": "abcd"}, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, body := env.request(t, http.MethodGet, "/api/qna/"+id, nil, "")
	if resp.StatusCode != http.StatusNotFound || errorCode(body) != "NOT_FOUND" {
		t.Fatalf("expected 404 NOT_FOUND, got %d %q", resp.StatusCode, errorCode(body))
	}
}

func TestVerifySecretEndpoint(t *testing.T) {
	env := newTestEnv(t)
	id := env.submit(t, "abcd")

	resp, body := env.request(t, http.MethodPost, "/api/qna/"+id+"/verify",
		map[string]string{"secret": "abcd"}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data := body["data"].(map[string]any)
	if data["valid"] != true || data["can_edit"] != true {
		t.Fatalf("unexpected verify result: %v", data)
	}

	_, body = env.request(t, http.MethodPost, "/api/qna/"+id+"/verify",
		map[string]string{"secret": "nope"}, "")
	data = body["data"].(map[string]any)
	if data["valid"] != false || data["can_edit"] != false {
		t.Fatalf("wrong secret must not verify: %v", data)
	}
}

func TestAdminEndpointsRequireOperatorToken(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, "abcd")

	resp, body := env.request(t, http.MethodGet, "/api/admin/qna/", nil, "")
	if resp.StatusCode != http.StatusUnauthorized || errorCode(body) != "UNAUTHORIZED" {
		t.Fatalf("expected 401 UNAUTHORIZED, got %d %q", resp.StatusCode, errorCode(body))
	}

	token := env.operatorToken(t)
	resp, body = env.request(t, http.MethodGet, "/api/admin/qna/", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	items := body["data"].([]any)
	row := items[0].(map[string]any)
	if row["author_email"] != "jamie@example.com" || row["author_phone"] != "010-1234-5678" {
		t.Fatalf("staff list must include contact fields: %v", row)
	}
	if _, exists := row["secret_hash"]; exists {
		t.Fatal("secret hash must never leave the service")
	}
}

func TestAnswerLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	id := env.submit(t, "abcd")
	token := env.operatorToken(t)

	resp, body := env.request(t, http.MethodPut, fmt.Sprintf("/api/admin/qna/%s/answer", id),
		map[string]string{"answer_body": "early edit"}, token)
	if resp.StatusCode != http.StatusConflict || errorCode(body) != "NOT_ANSWERED" {
		t.Fatalf("expected 409 NOT_ANSWERED, got %d %q", resp.StatusCode, errorCode(body))
	}

	resp, body = env.request(t, http.MethodPost, fmt.Sprintf("/api/admin/qna/%s/answer", id),
		map[string]string{"answer_body": "the answer"}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", resp.StatusCode, body)
	}
	if _, hasWarnings := body["warnings"]; hasWarnings {
		t.Fatal("successful notification must not produce warnings")
	}

	resp, body = env.request(t, http.MethodPost, fmt.Sprintf("/api/admin/qna/%s/answer", id),
		map[string]string{"answer_body": "again"}, token)
	if resp.StatusCode != http.StatusConflict || errorCode(body) != "ALREADY_ANSWERED" {
		t.Fatalf("expected 409 ALREADY_ANSWERED, got %d %q", resp.StatusCode, errorCode(body))
	}

	resp, _ = env.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/qna/%s/answer", id), nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("retract: expected 200, got %d", resp.StatusCode)
	}

	resp, _ = env.request(t, http.MethodPut, "/api/qna/"+id,
		map[string]string{"secret": "abcd", "title": "Edited", "body": "after reopen"}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit after retract: expected 200, got %d", resp.StatusCode)
	}
}

func TestAnswerNotificationFailureSurfacesWarning(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.fail = true
	id := env.submit(t, "abcd")
	token := env.operatorToken(t)

	resp, body := env.request(t, http.MethodPost, fmt.Sprintf("/api/admin/qna/%s/answer", id),
		map[string]string{"answer_body": "the answer"}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("answer must succeed despite notification failure, got %d", resp.StatusCode)
	}
	warnings, ok := body["warnings"].([]any)
	if !ok || len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", body["warnings"])
	}
	warning := warnings[0].(map[string]any)
	if warning["code"] != "NOTIFICATION_FAILED" {
		t.Fatalf("unexpected warning code: %v", warning["code"])
	}
}

func TestStaffDeletePostAnyState(t *testing.T) {
	env := newTestEnv(t)
	id := env.submit(t, "abcd")
	token := env.operatorToken(t)

	if resp, _ := env.request(t, http.MethodPost, fmt.Sprintf("/api/admin/qna/%s/answer", id),
		map[string]string{"answer_body": "answer"}, token); resp.StatusCode != http.StatusCreated {
		t.Fatalf("answer: got %d", resp.StatusCode)
	}

	resp, _ := env.request(t, http.MethodDelete, "/api/admin/qna/"+id, nil, token)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, _ = env.request(t, http.MethodGet, "/api/qna/"+id, nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after staff delete, got %d", resp.StatusCode)
	}
}
