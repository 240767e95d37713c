// Package devtools exposes a read-only HTTP inspector over a running
// pkg/session tree: the live view-id tree, scheduler queue depths, and
// portal/anchor bindings, for debugging a running engine instance without
// touching production traffic. Grounded on the prior chi-routed
// handlers in pkg/server (small per-route JSON handlers mounted on a
// chi.Router), generalized from Vango's page/asset handlers to the bridge
// engine's own diagnostic surface.
package devtools

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/loomkit/loom/pkg/session"
	"github.com/loomkit/loom/pkg/vdom"
)

// SessionLister is the subset of *session.Manager the inspector needs.
// Accepting an interface here, rather than importing *session.Manager
// directly into every handler, keeps this package usable against a fake in
// tests.
type SessionLister interface {
	Get(id string) *session.Session
	ForEach(fn func(*session.Session) bool)
}

// Router builds a chi.Router exposing the inspector's read-only endpoints.
// Mount it on its own port, separate from any production traffic, since it
// has no authentication of its own.
func Router(sessions SessionLister) chi.Router {
	r := chi.NewRouter()

	r.Get("/sessions", listSessions(sessions))
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/tree", sessionTree(sessions))
		r.Get("/queues", sessionQueues(sessions))
		r.Get("/portals", sessionPortals(sessions))
	})

	return r
}

type sessionSummary struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"created_at"`
	LastActive string `json:"last_active"`
}

func listSessions(sessions SessionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out []sessionSummary
		sessions.ForEach(func(s *session.Session) bool {
			out = append(out, sessionSummary{
				ID:         s.ID,
				CreatedAt:  s.CreatedAt.Format(timeFormat),
				LastActive: s.LastActive().Format(timeFormat),
			})
			return true
		})
		writeJSON(w, http.StatusOK, out)
	}
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

func findSession(sessions SessionLister, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	s := sessions.Get(id)
	return s, s != nil
}

func sessionTree(sessions SessionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := findSession(sessions, r)
		if !ok {
			writeNotFound(w)
			return
		}
		writeJSON(w, http.StatusOK, treeNode(s.Tree()))
	}
}

// node is the JSON-safe projection of a vdom.VNode: Props is filtered to
// drop event-handler closures, which cannot marshal, and their keys are
// listed in Handlers instead so the inspector can still show what's
// interactive.
type node struct {
	Kind     string         `json:"kind"`
	Type     string         `json:"type,omitempty"`
	Text     string         `json:"text,omitempty"`
	ViewID   int64          `json:"view_id"`
	Key      string         `json:"key,omitempty"`
	Anchor   string         `json:"anchor,omitempty"`
	Portal   string         `json:"portal,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
	Handlers []string       `json:"handlers,omitempty"`
	Children []*node        `json:"children,omitempty"`
}

func treeNode(v *vdom.VNode) *node {
	if v == nil {
		return nil
	}
	n := &node{
		Kind:   v.Kind.String(),
		Type:   v.Type,
		Text:   v.Text,
		ViewID: int64(v.ViewID),
		Key:    v.Key,
		Anchor: v.Anchor,
		Portal: string(v.Portal),
	}
	for key, val := range v.Props {
		if vdom.IsEventHandlerKey(key) {
			n.Handlers = append(n.Handlers, key)
			continue
		}
		if n.Props == nil {
			n.Props = make(map[string]any)
		}
		n.Props[key] = val
	}
	for _, child := range v.Children {
		n.Children = append(n.Children, treeNode(child))
	}
	return n
}

type queueDepths struct {
	Immediate int `json:"immediate"`
	High      int `json:"high"`
	Normal    int `json:"normal"`
	Low       int `json:"low"`
	Idle      int `json:"idle"`
}

func sessionQueues(sessions SessionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := findSession(sessions, r)
		if !ok {
			writeNotFound(w)
			return
		}
		d := s.QueueDepths()
		writeJSON(w, http.StatusOK, queueDepths{
			Immediate: d[0], High: d[1], Normal: d[2], Low: d[3], Idle: d[4],
		})
	}
}

type portalBinding struct {
	Portal   string  `json:"portal"`
	Anchor   string  `json:"anchor"`
	Children []int64 `json:"children"`
}

type portalsResponse struct {
	Anchors map[string]int64 `json:"anchors"`
	Portals []portalBinding   `json:"portals"`
}

func sessionPortals(sessions SessionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := findSession(sessions, r)
		if !ok {
			writeNotFound(w)
			return
		}

		anchors, bindings := s.Portals().Snapshot()
		resp := portalsResponse{Anchors: make(map[string]int64, len(anchors))}
		for anchor, id := range anchors {
			resp.Anchors[anchor] = int64(id)
		}
		for _, b := range bindings {
			children := make([]int64, len(b.Children))
			for i, c := range b.Children {
				children[i] = int64(c)
			}
			resp.Portals = append(resp.Portals, portalBinding{
				Portal: string(b.Portal), Anchor: b.Anchor, Children: children,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
}
