package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"legal-analyzer-be/internal/dto"
	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/internal/pkg/serverutils"
	"legal-analyzer-be/pkg/events"
	"legal-analyzer-be/pkg/extract"
	"legal-analyzer-be/pkg/legal"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const MsgDocumentProcessingFailed = "Document processing failed"

var ErrNoOutcome = errors.New("document workflow produced no result")

// DocumentWorkflow runs the one-shot extract -> validate -> analyse|reject pipeline.
type DocumentWorkflow interface {
	Run(ctx context.Context, content []byte, filename string) legal.Outcome
}

// UploadChecker validates an upload's name and size before any parsing.
type UploadChecker interface {
	CheckUpload(filename string, size int64) (extract.Format, error)
}

type IDocumentService interface {
	Analyze(ctx context.Context, req *dto.AnalyzeDocumentRequest) (*dto.AnalyzeDocumentResponse, error)
}

type documentService struct {
	workflow         DocumentWorkflow
	checker          UploadChecker
	publisherService IPublisherService
	logger           logger.ILogger
	now              func() time.Time
}

func NewDocumentService(
	workflow DocumentWorkflow,
	checker UploadChecker,
	publisherService IPublisherService,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		workflow:         workflow,
		checker:          checker,
		publisherService: publisherService,
		logger:           log,
		now:              time.Now,
	}
}

func (s *documentService) Analyze(ctx context.Context, req *dto.AnalyzeDocumentRequest) (*dto.AnalyzeDocumentResponse, error) {
	if _, err := s.checker.CheckUpload(req.Filename, int64(len(req.Content))); err != nil {
		return nil, err
	}
	warnContentType(s.logger, req.Filename, req.ContentType)

	s.logger.Info("document_service", "Analysing document", map[string]interface{}{
		"filename": req.Filename,
		"size":     humanize.Bytes(uint64(len(req.Content))),
	})

	start := s.now()
	outcome := s.workflow.Run(ctx, req.Content, req.Filename)
	elapsed := s.now().Sub(start)

	res := dto.NewAnalyzeDocumentResponse(outcome)
	if res == nil {
		s.logger.Error("document_service", "Workflow returned no outcome", map[string]interface{}{"filename": req.Filename, "error": ErrNoOutcome})
		return nil, serverutils.HTTPError(fiber.StatusInternalServerError, MsgDocumentProcessingFailed)
	}
	res.AnalysisId = uuid.NewString()

	s.logger.Info("document_service", "Document analysed", map[string]interface{}{
		"analysis_id": res.AnalysisId,
		"decision":    res.Decision,
		"duration":    elapsed.String(),
	})

	s.publish(ctx, events.AnalysisPayload{
		AnalysisID:       res.AnalysisId,
		Filename:         req.Filename,
		SizeBytes:        int64(len(req.Content)),
		Decision:         res.Decision,
		DocumentType:     res.DocumentType,
		Summary:          res.Summary,
		ImportantClauses: res.ImportantClauses,
		Reason:           res.Reason,
		DurationMs:       elapsed.Milliseconds(),
	})

	return res, nil
}

// publish is best effort; the analysis has already succeeded.
func (s *documentService) publish(ctx context.Context, p events.AnalysisPayload) {
	if s.publisherService == nil {
		return
	}
	event, err := events.NewAnalysisEvent(p, s.now())
	if err == nil {
		err = s.publisherService.Publish(ctx, event)
	}
	if err != nil {
		s.logger.Warn("document_service", "Failed to publish analysis event", map[string]interface{}{
			"analysis_id": p.AnalysisID,
			"error":       err.Error(),
		})
	}
}

var expectedContentTypes = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/octet-stream",
}

// warnContentType logs uploads whose declared MIME type does not match a
// supported format. The extension decides, so the upload is not rejected.
func warnContentType(log logger.ILogger, filename, contentType string) {
	if contentType == "" {
		return
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, expected := range expectedContentTypes {
		if ct == expected {
			return
		}
	}
	log.Warn("upload", "Unexpected content type", map[string]interface{}{
		"filename":     filename,
		"content_type": contentType,
	})
}
