package service

import (
	"context"
	"fmt"
	"sync"

	"legal-analyzer-be/internal/model"
	"legal-analyzer-be/pkg/events"
	"legal-analyzer-be/pkg/legal"
	sessionwf "legal-analyzer-be/pkg/workflow/session"

	"github.com/google/uuid"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

type fakeDocumentWorkflow struct {
	outcome legal.Outcome
	calls   int
}

func (w *fakeDocumentWorkflow) Run(ctx context.Context, content []byte, filename string) legal.Outcome {
	w.calls++
	return w.outcome
}

// fakeChatWorkflow reads uploads the way the real workflow does: only while
// the session has no document.
type fakeChatWorkflow struct {
	result    sessionwf.Result
	err       error
	processed bool
	turns     []sessionwf.Turn
	ids       []string
	texts     []string
}

func (w *fakeChatWorkflow) Run(ctx context.Context, sessionID string, turn sessionwf.Turn) (sessionwf.Result, error) {
	w.turns = append(w.turns, turn)
	w.ids = append(w.ids, sessionID)
	res := w.result
	res.SessionID = sessionID
	if turn.Extract != nil && !w.processed {
		text, err := turn.Extract(ctx)
		if err != nil {
			return sessionwf.Result{SessionID: sessionID}, fmt.Errorf("%w: %w", sessionwf.ErrExtraction, err)
		}
		w.texts = append(w.texts, text)
	}
	return res, w.err
}

type fakeSessions struct {
	existing map[string]bool
	count    int
	countErr error
}

func (s *fakeSessions) Delete(ctx context.Context, id string) (bool, error) {
	if !s.existing[id] {
		return false, nil
	}
	delete(s.existing, id)
	return true, nil
}

func (s *fakeSessions) Count(ctx context.Context) (int, error) { return s.count, s.countErr }
func (s *fakeSessions) Backend() string                        { return "memory" }

type fakeAnalysisRepo struct {
	mu      sync.Mutex
	records []*model.AnalysisRecord
	err     error
}

func (r *fakeAnalysisRepo) Create(ctx context.Context, record *model.AnalysisRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

func (r *fakeAnalysisRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.AnalysisRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Id == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *fakeAnalysisRepo) FindRecent(ctx context.Context, limit int) ([]*model.AnalysisRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.AnalysisRecord, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}

func (r *fakeAnalysisRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.records)), nil
}

func (r *fakeAnalysisRepo) all() []*model.AnalysisRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.AnalysisRecord(nil), r.records...)
}
