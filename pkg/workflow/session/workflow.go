// Package session runs one conversational turn against a session:
// route_initial -> validate_document -> process_document | handle_rejection -> answer_question.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/pkg/legal"
	"legal-analyzer-be/pkg/llm"
	"legal-analyzer-be/pkg/rag/index"
	ragsession "legal-analyzer-be/pkg/rag/session"
	"legal-analyzer-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	MsgRejected      = "I can only help with legal documents. Please upload a valid document."
	MsgIndexingError = "Error processing document. Please try again."
)

var (
	// ErrIndexing is returned together with a valid Result when the uploaded
	// document could not be indexed.
	ErrIndexing   = errors.New("document indexing failed")
	ErrExtraction = errors.New("document extraction failed")
	ErrInternal   = errors.New("session workflow failed")
)

type Classifier interface {
	Classify(ctx context.Context, text string) legal.Decision
}

type IndexBuilder interface {
	Build(ctx context.Context, key, text string) (index.Handle, error)
}

type Answerer interface {
	Answer(ctx context.Context, question string, h index.Handle, history []llm.Message) (string, []llm.Message)
}

// Turn is one incoming request. When Extract is set it reads the upload and
// is only called for a session that has no document yet; otherwise
// DocumentText is used as is.
type Turn struct {
	Message      string
	HasDocument  bool
	DocumentText string
	Extract      func(ctx context.Context) (string, error)
}

type Result struct {
	SessionID         string
	Response          string
	DocumentProcessed bool
	// Indexed is set on the turn that built the session's index.
	Indexed bool
	// Rejected is set when the uploaded document was refused.
	Rejected bool
	// Ignored is set when a document arrived for an already processed session.
	Ignored bool
	Chunks  int
}

type State int

const (
	StateRouteInitial State = iota
	StateValidateDocument
	StateProcessDocument
	StateHandleRejection
	StateAnswerQuestion
	StateDone
)

func (s State) String() string {
	switch s {
	case StateRouteInitial:
		return "route_initial"
	case StateValidateDocument:
		return "validate_document"
	case StateProcessDocument:
		return "process_document"
	case StateHandleRejection:
		return "handle_rejection"
	case StateAnswerQuestion:
		return "answer_question"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// turnState is what the transition function inspects.
type turnState struct {
	session    *store.Session
	turn       Turn
	decision   legal.Decision
	extractErr error
	indexErr   error
	result     Result
}

func next(s State, ts *turnState) State {
	switch s {
	case StateRouteInitial:
		if ts.turn.HasDocument && !ts.session.DocumentProcessed {
			return StateValidateDocument
		}
		return StateAnswerQuestion
	case StateValidateDocument:
		if ts.extractErr != nil {
			return StateDone
		}
		if ts.decision == legal.Accept {
			return StateProcessDocument
		}
		return StateHandleRejection
	case StateProcessDocument:
		if ts.indexErr != nil {
			return StateDone
		}
		return StateAnswerQuestion
	default:
		return StateDone
	}
}

type Workflow struct {
	registry  *ragsession.Registry
	validator Classifier
	indexer   IndexBuilder
	answerer  Answerer
	logger    logger.ILogger
	tracer    trace.Tracer
}

func New(registry *ragsession.Registry, validator Classifier, indexer IndexBuilder, answerer Answerer, log logger.ILogger) *Workflow {
	return &Workflow{
		registry:  registry,
		validator: validator,
		indexer:   indexer,
		answerer:  answerer,
		logger:    log,
		tracer:    otel.Tracer("legal-analyzer/workflow/session"),
	}
}

// Run executes a turn while holding the session's lock. On ErrIndexing the
// returned Result is still valid and carries the user-facing message.
// ErrExtraction wraps the extractor's error so callers can still inspect it.
func (w *Workflow) Run(ctx context.Context, sessionID string, turn Turn) (Result, error) {
	ctx, span := w.tracer.Start(ctx, "session_workflow", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.Bool("turn.has_document", turn.HasDocument),
		attribute.Bool("turn.has_message", turn.Message != ""),
	))
	defer span.End()

	var res Result
	err := w.registry.WithSession(ctx, sessionID, func(ctx context.Context, s *store.Session) error {
		var err error
		res, err = w.runTurn(ctx, s, turn)
		return err
	})
	res.SessionID = sessionID
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (w *Workflow) runTurn(ctx context.Context, s *store.Session, turn Turn) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("session_workflow", "Turn panicked", map[string]interface{}{"session_id": s.ID, "panic": fmt.Sprint(r)})
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	ts := &turnState{session: s, turn: turn}
	for state := StateRouteInitial; state != StateDone; state = next(state, ts) {
		w.step(ctx, state, ts)
	}

	ts.result.DocumentProcessed = s.DocumentProcessed
	if ts.extractErr != nil {
		return ts.result, fmt.Errorf("%w: %w", ErrExtraction, ts.extractErr)
	}
	if ts.indexErr != nil {
		return ts.result, fmt.Errorf("%w: %v", ErrIndexing, ts.indexErr)
	}
	return ts.result, nil
}

func (w *Workflow) step(ctx context.Context, s State, ts *turnState) {
	ctx, span := w.tracer.Start(ctx, "session_workflow."+s.String())
	defer span.End()

	switch s {
	case StateRouteInitial:
		w.routeInitial(ts)
	case StateValidateDocument:
		w.validateDocument(ctx, ts)
	case StateProcessDocument:
		w.processDocument(ctx, ts)
	case StateHandleRejection:
		w.handleRejection(ts)
	case StateAnswerQuestion:
		w.answerQuestion(ctx, ts)
	}
}

func (w *Workflow) routeInitial(ts *turnState) {
	if ts.turn.HasDocument && ts.session.DocumentProcessed {
		ts.result.Ignored = true
		w.logger.Warn("session_workflow", "Session already has a document, ignoring upload", map[string]interface{}{"session_id": ts.session.ID})
	}
}

func (w *Workflow) validateDocument(ctx context.Context, ts *turnState) {
	if ts.turn.Extract != nil {
		text, err := ts.turn.Extract(ctx)
		if err != nil {
			w.logger.Warn("session_workflow", "Failed to extract uploaded document", map[string]interface{}{"session_id": ts.session.ID, "error": err.Error()})
			ts.extractErr = err
			return
		}
		ts.turn.DocumentText = text
	}
	if strings.TrimSpace(ts.turn.DocumentText) == "" {
		ts.decision = legal.Reject
		return
	}
	ts.decision = w.validator.Classify(ctx, ts.turn.DocumentText)
	w.logger.Info("session_workflow", "Validation decision", map[string]interface{}{
		"session_id": ts.session.ID,
		"decision":   ts.decision,
	})
}

func (w *Workflow) processDocument(ctx context.Context, ts *turnState) {
	h, err := w.indexer.Build(ctx, ts.session.ID, ts.turn.DocumentText)
	if err != nil {
		w.logger.Error("session_workflow", "Error processing document", map[string]interface{}{"session_id": ts.session.ID, "error": err})
		ts.indexErr = err
		ts.result.Response = MsgIndexingError
		return
	}
	ts.session.Index = h
	ts.session.DocumentProcessed = true
	ts.result.Indexed = true
	ts.result.Chunks = h.Len()
	w.logger.Info("session_workflow", "Document processed", map[string]interface{}{"session_id": ts.session.ID, "chunks": h.Len()})
}

func (w *Workflow) handleRejection(ts *turnState) {
	ts.session.DocumentProcessed = false
	ts.result.Rejected = true
	ts.result.Response = MsgRejected
}

func (w *Workflow) answerQuestion(ctx context.Context, ts *turnState) {
	if ts.turn.Message == "" {
		return
	}
	reply, history := w.answerer.Answer(ctx, ts.turn.Message, ts.session.Index, ts.session.History)
	ts.session.History = history
	ts.result.Response = reply
}
