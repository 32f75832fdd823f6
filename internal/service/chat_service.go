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
	ragsession "legal-analyzer-be/pkg/rag/session"
	sessionwf "legal-analyzer-be/pkg/workflow/session"

	"github.com/gofiber/fiber/v2"
)

const (
	MsgMessageRequired         = "Message is required when no file is provided"
	MsgFailedToProcessDocument = "Failed to process document"
	MsgSessionNotFound         = "Session not found"
	MsgSessionIdRequired       = "Session id is required"
)

type ChatWorkflow interface {
	Run(ctx context.Context, sessionID string, turn sessionwf.Turn) (sessionwf.Result, error)
}

type DocumentExtractor interface {
	UploadChecker
	Extract(ctx context.Context, content []byte, filename string) (string, error)
}

// SessionStore is the part of the session registry the service manages directly.
type SessionStore interface {
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
	Backend() string
}

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest, upload *dto.ChatUpload) (*dto.ChatResponse, error)
	DeleteSession(ctx context.Context, sessionId string) (*dto.DeleteSessionResponse, error)
}

type chatService struct {
	workflow         ChatWorkflow
	extractor        DocumentExtractor
	sessions         SessionStore
	publisherService IPublisherService
	indexBackend     string
	logger           logger.ILogger
	now              func() time.Time
}

func NewChatService(
	workflow ChatWorkflow,
	extractor DocumentExtractor,
	sessions SessionStore,
	publisherService IPublisherService,
	indexBackend string,
	log logger.ILogger,
) IChatService {
	return &chatService{
		workflow:         workflow,
		extractor:        extractor,
		sessions:         sessions,
		publisherService: publisherService,
		indexBackend:     indexBackend,
		logger:           log,
		now:              time.Now,
	}
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest, upload *dto.ChatUpload) (*dto.ChatResponse, error) {
	hasFile := upload != nil && upload.Filename != ""
	if hasFile {
		if _, err := s.extractor.CheckUpload(upload.Filename, int64(len(upload.Content))); err != nil {
			return nil, err
		}
		warnContentType(s.logger, upload.Filename, upload.ContentType)
	}

	sessionId := ragsession.Resolve(req.SessionId)
	message := strings.TrimSpace(req.Message)

	if message == "" {
		if !hasFile {
			return nil, serverutils.HTTPError(fiber.StatusBadRequest, MsgMessageRequired)
		}
		return s.processUpload(ctx, sessionId, upload)
	}

	turn := sessionwf.Turn{Message: message}
	if hasFile {
		turn.HasDocument = true
		turn.Extract = s.extractUpload(upload)
	}

	res, err := s.workflow.Run(ctx, sessionId, turn)
	if errors.Is(err, sessionwf.ErrExtraction) {
		return nil, err
	}
	if err != nil && !errors.Is(err, sessionwf.ErrIndexing) {
		s.logger.Error("chat_service", "Error in chat workflow", map[string]interface{}{"session_id": sessionId, "error": err})
		return nil, err
	}
	s.publishIndexed(ctx, res)

	return &dto.ChatResponse{
		Response:          res.Response,
		SessionId:         sessionId,
		DocumentProcessed: res.DocumentProcessed,
	}, nil
}

// processUpload handles a file sent without a message. Any failure short of
// a rejection is reported as a generic processing failure.
func (s *chatService) processUpload(ctx context.Context, sessionId string, upload *dto.ChatUpload) (*dto.ChatResponse, error) {
	res, err := s.workflow.Run(ctx, sessionId, sessionwf.Turn{HasDocument: true, Extract: s.extractUpload(upload)})
	if err != nil {
		s.logger.Error("chat_service", "Failed to process uploaded document", map[string]interface{}{"session_id": sessionId, "error": err})
		return nil, serverutils.HTTPError(fiber.StatusInternalServerError, MsgFailedToProcessDocument)
	}
	s.publishIndexed(ctx, res)

	return &dto.ChatResponse{
		Response:          res.Response,
		SessionId:         sessionId,
		DocumentProcessed: res.DocumentProcessed,
	}, nil
}

// extractUpload defers reading the file until the workflow knows the session
// still needs a document.
func (s *chatService) extractUpload(upload *dto.ChatUpload) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		return s.extractor.Extract(ctx, upload.Content, upload.Filename)
	}
}

func (s *chatService) DeleteSession(ctx context.Context, sessionId string) (*dto.DeleteSessionResponse, error) {
	if strings.TrimSpace(sessionId) == "" {
		return nil, serverutils.HTTPError(fiber.StatusBadRequest, MsgSessionIdRequired)
	}
	deleted, err := s.sessions.Delete(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, serverutils.HTTPError(fiber.StatusNotFound, MsgSessionNotFound)
	}
	return &dto.DeleteSessionResponse{SessionId: sessionId, Deleted: true}, nil
}

func (s *chatService) publishIndexed(ctx context.Context, res sessionwf.Result) {
	if !res.Indexed || s.publisherService == nil {
		return
	}
	event, err := events.NewIndexedEvent(events.IndexedPayload{
		SessionID: res.SessionID,
		Chunks:    res.Chunks,
		Backend:   s.indexBackend,
	}, s.now())
	if err == nil {
		err = s.publisherService.Publish(ctx, event)
	}
	if err != nil {
		s.logger.Warn("chat_service", "Failed to publish indexed event", map[string]interface{}{"session_id": res.SessionID, "error": err.Error()})
	}
}
