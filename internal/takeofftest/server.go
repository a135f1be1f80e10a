package takeofftest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"costline-hq/costline/pkg/takeoff"
)

// Server is a mock takeoff service for exercising the fetch client and
// the reconciliation loop. It serves the full-state endpoint and can be
// scripted to fail a number of times before succeeding, fail
// permanently, or return a malformed body.
type Server struct {
	server *httptest.Server

	mu           sync.Mutex
	state        *takeoff.PageState
	failuresLeft int
	failStatus   int
	malformed    bool
	delay        time.Duration
	requestCount int
}

// NewServer starts a mock takeoff service serving the given snapshot.
// Callers must Close it when done.
func NewServer(state *takeoff.PageState) *Server {
	s := &Server{state: state, failStatus: http.StatusInternalServerError}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/Conditions/GetAllConditionsState", s.handleState)
	s.server = httptest.NewServer(mux)
	return s
}

// URL returns the mock server's base URL.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts the mock server down.
func (s *Server) Close() {
	s.server.Close()
}

// SetState replaces the snapshot served by the state endpoint.
func (s *Server) SetState(state *takeoff.PageState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// FailNext makes the next n state requests fail with the given status
// before the server starts succeeding again.
func (s *Server) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failuresLeft = n
	s.failStatus = status
}

// SetMalformed makes the state endpoint return a body that is not valid
// snapshot JSON.
func (s *Server) SetMalformed(malformed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.malformed = malformed
}

// SetDelay makes every state response wait before replying, for
// exercising client timeouts.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// RequestCount returns the number of state requests received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestCount
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("documentId") == "" || r.URL.Query().Get("pageNumber") == "" {
		http.Error(w, "documentId and pageNumber are required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requestCount++
	delay := s.delay
	malformed := s.malformed
	fail := s.failuresLeft > 0
	status := s.failStatus
	if fail {
		s.failuresLeft--
	}
	state := s.state
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if malformed {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"takeoffZones": "not-a-list"`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(state)
}
