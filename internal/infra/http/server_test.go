package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"plexi/internal/domain"
	"plexi/internal/usecase"
)

type stubHistory struct {
	results []domain.AuditResult
	err     error
}

func (s *stubHistory) ListByNamespace(_ context.Context, namespace string, limit int) ([]domain.AuditResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.AuditResult, 0, limit)
	for _, r := range s.results {
		if r.Namespace == namespace && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func testServer(history HistoryReader) *Server {
	w := usecase.NewWatcher(nil, nil, nil, nil, zap.NewNop(), time.Minute)
	return NewServer(":0", w, history, zap.NewNop())
}

func TestHealthz(t *testing.T) {
	s := testServer(nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestUnknownNamespaceIs404(t *testing.T) {
	s := testServer(nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/namespaces/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAuditsEndpoint(t *testing.T) {
	history := &stubHistory{
		results: []domain.AuditResult{
			{Namespace: "akd", Epoch: 3, Signature: domain.OutcomePass, Proof: domain.OutcomePass},
			{Namespace: "akd", Epoch: 2, Signature: domain.OutcomePass, Proof: domain.OutcomePass},
			{Namespace: "other", Epoch: 1, Signature: domain.OutcomePass, Proof: domain.OutcomeSkipped},
		},
	}
	s := testServer(history)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/namespaces/akd/audits?limit=10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Audits []domain.AuditResult `json:"audits"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Audits) != 2 {
		t.Fatalf("got %d audits, want 2", len(body.Audits))
	}
}

func TestAuditsWithoutHistoryIs501(t *testing.T) {
	s := testServer(nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/namespaces/akd/audits", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", rec.Code)
	}
}

func TestAuditsRejectsBadLimit(t *testing.T) {
	s := testServer(&stubHistory{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/namespaces/akd/audits?limit=minus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
