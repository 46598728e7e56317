package ingest

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"folioscan/internal/domain"
)

// Session holds the state of one multi-image upload.
// It replaces process-wide upload counters; each caller owns its own Session.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time

	mu        sync.Mutex
	uploaded  int
	processed int
	results   []domain.ExtractionResult
	draft     domain.PortfolioDraft
}

// NewSession starts a new session.
func NewSession() *Session {
	return &Session{ID: uuid.New(), StartedAt: time.Now()}
}

// Begin records the number of images submitted and resets progress.
func (s *Session) Begin(uploaded int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded = uploaded
	s.processed = 0
	s.results = nil
	s.draft = domain.PortfolioDraft{}
}

// Advance records how many images have been processed so far.
func (s *Session) Advance(done, _ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if done > s.processed {
		s.processed = done
	}
}

// Complete stores the final results and draft.
func (s *Session) Complete(results []domain.ExtractionResult, draft domain.PortfolioDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.draft = draft
	s.processed = len(results)
}

// UploadCount returns the number of images in the current upload.
func (s *Session) UploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploaded
}

// Progress returns processed and total image counts.
func (s *Session) Progress() (done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed, s.uploaded
}

// Draft returns the last completed draft.
func (s *Session) Draft() domain.PortfolioDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Results returns a copy of the last completed results.
func (s *Session) Results() []domain.ExtractionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ExtractionResult, len(s.results))
	copy(out, s.results)
	return out
}
