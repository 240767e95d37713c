package devtools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loomkit/loom/pkg/session"
)

// fakeLister is a minimal SessionLister backed by a map, standing in for
// *session.Manager so these tests don't need a live websocket connection.
type fakeLister struct {
	sessions map[string]*session.Session
}

func (f *fakeLister) Get(id string) *session.Session { return f.sessions[id] }

func (f *fakeLister) ForEach(fn func(*session.Session) bool) {
	for _, s := range f.sessions {
		if !fn(s) {
			return
		}
	}
}

func newFakeSession(t *testing.T) *session.Session {
	t.Helper()
	return session.New(nil, session.DefaultConfig(), nil)
}

func TestListSessions(t *testing.T) {
	s := newFakeSession(t)
	lister := &fakeLister{sessions: map[string]*session.Session{s.ID: s}}

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rec := httptest.NewRecorder()
	Router(lister).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out []sessionSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].ID != s.ID {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSessionTreeNotFound(t *testing.T) {
	lister := &fakeLister{sessions: map[string]*session.Session{}}

	req := httptest.NewRequest(http.MethodGet, "/sessions/missing/tree", nil)
	rec := httptest.NewRecorder()
	Router(lister).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSessionTreeEmptyBeforeMount(t *testing.T) {
	s := newFakeSession(t)
	lister := &fakeLister{sessions: map[string]*session.Session{s.ID: s}}

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+s.ID+"/tree", nil)
	rec := httptest.NewRecorder()
	Router(lister).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "null\n" {
		t.Fatalf("expected null body for an unmounted session, got %q", rec.Body.String())
	}
}

func TestSessionQueues(t *testing.T) {
	s := newFakeSession(t)
	lister := &fakeLister{sessions: map[string]*session.Session{s.ID: s}}

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+s.ID+"/queues", nil)
	rec := httptest.NewRecorder()
	Router(lister).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var depths queueDepths
	if err := json.Unmarshal(rec.Body.Bytes(), &depths); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if depths != (queueDepths{}) {
		t.Fatalf("expected all-zero queue depths on a fresh session, got %+v", depths)
	}
}

func TestSessionPortalsEmpty(t *testing.T) {
	s := newFakeSession(t)
	lister := &fakeLister{sessions: map[string]*session.Session{s.ID: s}}

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+s.ID+"/portals", nil)
	rec := httptest.NewRecorder()
	Router(lister).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp portalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Anchors) != 0 || len(resp.Portals) != 0 {
		t.Fatalf("expected empty portal state, got %+v", resp)
	}
}
