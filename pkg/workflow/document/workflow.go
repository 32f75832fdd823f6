// Package document runs the one-shot analysis pipeline:
// extract_text -> validate_document -> analyze_document | generate_rejection.
package document

import (
	"context"
	"fmt"

	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/pkg/legal"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	ReasonValidationFailed = "Document validation failed"
	reasonExtractFailed    = "Could not extract text from document: %v"
	reasonValidateError    = "Validation failed: %v"
	reasonAnalyzeError     = "Analysis failed: %v"
)

type TextExtractor interface {
	Extract(ctx context.Context, content []byte, filename string) (string, error)
}

type Classifier interface {
	Classify(ctx context.Context, text string) legal.Decision
}

type Analyzer interface {
	Analyze(ctx context.Context, text string) *legal.AnalysisResult
}

type Explainer interface {
	Explain(ctx context.Context, text string) *legal.RejectionResult
}

type State int

const (
	StateExtractText State = iota
	StateValidateDocument
	StateAnalyzeDocument
	StateGenerateRejection
	StateDone
)

func (s State) String() string {
	switch s {
	case StateExtractText:
		return "extract_text"
	case StateValidateDocument:
		return "validate_document"
	case StateAnalyzeDocument:
		return "analyze_document"
	case StateGenerateRejection:
		return "generate_rejection"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Case is the transient state of one run.
type Case struct {
	Filename string
	Content  []byte
	Text     string
	Decision legal.Decision
	Result   legal.Outcome
}

// next is the transition function. A populated result always routes through
// generate_rejection, which then passes it through unchanged.
func next(s State, c *Case) State {
	switch s {
	case StateExtractText:
		return StateValidateDocument
	case StateValidateDocument:
		if c.Result != nil {
			return StateGenerateRejection
		}
		if c.Decision == legal.Accept {
			return StateAnalyzeDocument
		}
		return StateGenerateRejection
	default:
		return StateDone
	}
}

type Workflow struct {
	extractor TextExtractor
	validator Classifier
	analyzer  Analyzer
	rejecter  Explainer
	logger    logger.ILogger
	tracer    trace.Tracer
}

func New(extractor TextExtractor, validator Classifier, analyzer Analyzer, rejecter Explainer, log logger.ILogger) *Workflow {
	return &Workflow{
		extractor: extractor,
		validator: validator,
		analyzer:  analyzer,
		rejecter:  rejecter,
		logger:    log,
		tracer:    otel.Tracer("legal-analyzer/workflow/document"),
	}
}

// Run always returns exactly one outcome.
func (w *Workflow) Run(ctx context.Context, content []byte, filename string) legal.Outcome {
	ctx, span := w.tracer.Start(ctx, "document_workflow", trace.WithAttributes(
		attribute.String("document.filename", filename),
		attribute.Int("document.size", len(content)),
	))
	defer span.End()

	c := &Case{Filename: filename, Content: content}
	for state := StateExtractText; state != StateDone; state = next(state, c) {
		w.step(ctx, state, c)
	}

	if c.Result == nil {
		c.Result = &legal.RejectionResult{Reason: legal.ReasonDuringProcess}
	}
	span.SetAttributes(attribute.String("document.decision", string(c.Result.Decision())))
	w.logger.Info("document_workflow", "Workflow completed", map[string]interface{}{
		"filename": filename,
		"decision": c.Result.Decision(),
	})
	return c.Result
}

func (w *Workflow) step(ctx context.Context, s State, c *Case) {
	ctx, span := w.tracer.Start(ctx, "document_workflow."+s.String())
	defer span.End()

	switch s {
	case StateExtractText:
		w.extractText(ctx, c)
	case StateValidateDocument:
		w.validateDocument(ctx, c)
	case StateAnalyzeDocument:
		w.analyzeDocument(ctx, c)
	case StateGenerateRejection:
		w.generateRejection(ctx, c)
	}
}

func (w *Workflow) extractText(ctx context.Context, c *Case) {
	text, err := w.extractor.Extract(ctx, c.Content, c.Filename)
	if err != nil {
		w.logger.Warn("document_workflow", "Text extraction failed", map[string]interface{}{"filename": c.Filename, "error": err.Error()})
		c.Result = &legal.RejectionResult{Reason: fmt.Sprintf(reasonExtractFailed, err)}
		return
	}
	c.Text = text
	w.logger.Info("document_workflow", "Extracted text", map[string]interface{}{"characters": len([]rune(text))})
}

func (w *Workflow) validateDocument(ctx context.Context, c *Case) {
	if c.Result != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("document_workflow", "Validator panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			c.Result = &legal.RejectionResult{Reason: fmt.Sprintf(reasonValidateError, r)}
		}
	}()

	c.Decision = w.validator.Classify(ctx, c.Text)
	switch c.Decision {
	case legal.Accept, legal.Reject:
		w.logger.Info("document_workflow", "Validation decision", map[string]interface{}{"decision": c.Decision})
	default:
		w.logger.Warn("document_workflow", "Validator returned no decision", map[string]interface{}{"decision": c.Decision})
		c.Result = &legal.RejectionResult{Reason: ReasonValidationFailed}
	}
}

func (w *Workflow) analyzeDocument(ctx context.Context, c *Case) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("document_workflow", "Analyzer panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			c.Result = &legal.RejectionResult{Reason: fmt.Sprintf(reasonAnalyzeError, r)}
		}
	}()

	res := w.analyzer.Analyze(ctx, c.Text)
	if res == nil {
		c.Result = &legal.RejectionResult{Reason: fmt.Sprintf(reasonAnalyzeError, "no result")}
		return
	}
	c.Result = res
}

func (w *Workflow) generateRejection(ctx context.Context, c *Case) {
	if c.Result != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("document_workflow", "Rejection reasoner panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			c.Result = &legal.RejectionResult{Reason: legal.ReasonDuringProcess}
		}
	}()

	res := w.rejecter.Explain(ctx, c.Text)
	if res == nil || res.Reason == "" {
		res = &legal.RejectionResult{Reason: legal.ReasonDuringProcess}
	}
	c.Result = res
}
