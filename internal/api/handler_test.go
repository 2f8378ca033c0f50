//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ashureev/offertalk/internal/completion"
	"github.com/ashureev/offertalk/internal/domain"
	"github.com/go-chi/chi/v5"
)

type fakeRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[string]*domain.Session)}
}

func (f *fakeRepo) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return cloneSession(session), nil
}

func (f *fakeRepo) Save(_ context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = cloneSession(session)
	return nil
}

func (f *fakeRepo) Ping(_ context.Context) error { return nil }
func (f *fakeRepo) Close() error                 { return nil }

func cloneSession(s *domain.Session) *domain.Session {
	data, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	var out domain.Session
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return &out
}

type fakeCompleter struct {
	fn func(req completion.Request) (string, error)
}

func (f *fakeCompleter) Complete(_ context.Context, req completion.Request) (string, error) {
	return f.fn(req)
}

func newTestRouter(repo *fakeRepo) chi.Router {
	r := chi.NewRouter()
	NewHandler(repo).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStartNegotiationSeeker(t *testing.T) {
	repo := newFakeRepo()
	r := newTestRouter(repo)

	w := postJSON(t, r, "/api/start-negotiation", map[string]interface{}{
		"role":         "job_seeker",
		"jobTitle":     "Backend Engineer",
		"seekerMin":    100000,
		"seekerTarget": 120000,
		"seekerMax":    140000,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	sessionID := resp["session_id"]
	if sessionID == "" {
		t.Fatal("Expected a session_id in the response")
	}

	session, err := repo.Get(context.Background(), sessionID)
	if err != nil || session == nil {
		t.Fatalf("Expected persisted session, got %v, %v", session, err)
	}
	if session.RecruiterRange.Min != 80000 || session.RecruiterRange.Max != 210000 {
		t.Errorf("Expected derived recruiter range {80000 210000}, got %+v", session.RecruiterRange)
	}
	if len(session.Messages) != 0 {
		t.Errorf("Expected empty transcript, got %d messages", len(session.Messages))
	}
	if len(session.Facts.Facts(domain.RoleJobSeeker)) != 0 || len(session.Facts.Facts(domain.RoleRecruiter)) != 0 {
		t.Errorf("Expected empty fact ledger, got %v", session.Facts)
	}
}

func TestStartNegotiationRecruiter(t *testing.T) {
	repo := newFakeRepo()
	r := newTestRouter(repo)

	w := postJSON(t, r, "/api/start-negotiation", map[string]interface{}{
		"role":         "recruiter",
		"jobTitle":     "Backend Engineer",
		"recruiterMin": 90000,
		"recruiterMax": 150000,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	session, err := repo.Get(context.Background(), resp["session_id"])
	if err != nil || session == nil {
		t.Fatalf("Expected persisted session, got %v, %v", session, err)
	}
	want := domain.SeekerRange{Min: 81000, Target: 130500, Max: 180000}
	if session.SeekerRange != want {
		t.Errorf("Expected derived seeker range %+v, got %+v", want, session.SeekerRange)
	}
}

func TestStartNegotiationMissingRanges(t *testing.T) {
	r := newTestRouter(newFakeRepo())

	w := postJSON(t, r, "/api/start-negotiation", map[string]interface{}{
		"role":      "job_seeker",
		"jobTitle":  "Backend Engineer",
		"seekerMin": 100000,
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestStartNegotiationUnknownRole(t *testing.T) {
	r := newTestRouter(newFakeRepo())

	w := postJSON(t, r, "/api/start-negotiation", map[string]interface{}{
		"role":     "candidate",
		"jobTitle": "Backend Engineer",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGetSession(t *testing.T) {
	repo := newFakeRepo()
	seed := &domain.Session{
		ID:       "s1",
		Role:     domain.RoleJobSeeker,
		JobTitle: "Backend Engineer",
		Facts:    domain.NewFactLedger(),
	}
	if err := repo.Save(context.Background(), seed); err != nil {
		t.Fatalf("Seed save failed: %v", err)
	}
	r := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/session/s1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var got domain.Session
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got.ID != "s1" || got.JobTitle != "Backend Engineer" {
		t.Errorf("Unexpected session payload: %+v", got)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	r := newTestRouter(newFakeRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/session/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
