package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"legal-analyzer-be/internal/config"
	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/internal/pkg/serverutils"
	"legal-analyzer-be/internal/repository/memory"
	"legal-analyzer-be/internal/service"
	"legal-analyzer-be/pkg/embedding/embeddingtest"
	"legal-analyzer-be/pkg/events"
	"legal-analyzer-be/pkg/extract"
	"legal-analyzer-be/pkg/extract/extracttest"
	"legal-analyzer-be/pkg/legal"
	"legal-analyzer-be/pkg/llm/llmtest"
	"legal-analyzer-be/pkg/prompt"
	"legal-analyzer-be/pkg/rag/index"
	"legal-analyzer-be/pkg/rag/response"
	ragsession "legal-analyzer-be/pkg/rag/session"
	"legal-analyzer-be/pkg/workflow/document"
	sessionwf "legal-analyzer-be/pkg/workflow/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	acceptReply   = `{"decision":"accept"}`
	analysisReply = `{"document_type":"Rental Agreement","summary":"A twelve month residential lease.","important_clauses":["Rent is due monthly","Deposit is refundable","Sixty days notice"]}`
)

var rentalAgreement = []string{
	"RESIDENTIAL LEASE AGREEMENT",
	"This Lease Agreement is made between the Landlord and the Tenant for the premises at 12 Elm Street.",
	"The Tenant shall pay rent of 1,500 USD on the first day of each month.",
	"The Tenant shall give the Landlord sixty days written notice before vacating the premises.",
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type harness struct {
	app *fiber.App
	llm *llmtest.Provider
	pub *recordingPublisher
}

func newHarness(t *testing.T, replies ...llmtest.Reply) *harness {
	t.Helper()
	log := logger.NewNopLogger()
	provider := llmtest.New(replies...)
	prompts := prompt.MustDefault()
	legalCfg := legal.DefaultConfig()

	extractor := extract.NewExtractor(extract.DefaultConfig(), log)
	validator := legal.NewValidator(legalCfg, provider, prompts, log)
	docWorkflow := document.New(extractor, validator,
		legal.NewAnalyzer(legalCfg, provider, prompts, log),
		legal.NewRejectionReasoner(legalCfg, provider, prompts, log), log)

	indexer := index.NewIndexer(index.Config{ChunkSize: 200, ChunkOverlap: 40, Workers: 2},
		embeddingtest.New(16), index.NewMemoryBackend(), log)
	answerer := response.NewAnswerer(response.DefaultConfig(), provider, indexer, prompts, log)
	registry := ragsession.NewRegistry(memory.NewSessionRepository(0), log)
	chatWorkflow := sessionwf.New(registry, validator, indexer, answerer, log)

	pub := &recordingPublisher{}
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler(log)})
	NewSystemController(service.NewSystemService(config.AppConfig{Name: "Legal Document Analyzer", Version: "1.0.0"}, registry)).RegisterRoutes(app)
	NewDocumentController(service.NewDocumentService(docWorkflow, extractor, pub, log)).RegisterRoutes(app)
	NewChatController(service.NewChatService(chatWorkflow, extractor, registry, pub, index.MemoryBackendName, log)).RegisterRoutes(app)
	NewAnalysisController(service.NewAnalysisService(nil)).RegisterRoutes(app)

	return &harness{app: app, llm: provider, pub: pub}
}

type filePart struct {
	name    string
	content []byte
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, file *filePart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		part, err := w.CreateFormFile("file", file.name)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func (h *harness) do(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestAnalyzeDocumentRejectsShortText(t *testing.T) {
	h := newHarness(t, llmtest.Reply{Content: `{"reason":"This is a casual note, not a legal document."}`})
	doc := extracttest.DOCX("Lunch on Friday? Bring the snacks and the napkins.")

	code, body := h.do(t, multipartRequest(t, http.MethodPost, "/analyze-document", nil, &filePart{"note.docx", doc}))

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, map[string]interface{}{
		"decision": "reject",
		"reason":   "This is a casual note, not a legal document.",
	}, body)
	assert.Equal(t, 1, h.llm.Calls(), "short text must not reach the validator")
	assert.Equal(t, []string{events.TypeDocumentRejected}, h.pub.types())
}

func TestAnalyzeDocumentAcceptsRentalAgreement(t *testing.T) {
	h := newHarness(t, llmtest.Reply{Content: acceptReply}, llmtest.Reply{Content: analysisReply})

	code, body := h.do(t, multipartRequest(t, http.MethodPost, "/analyze-document", nil,
		&filePart{"lease.docx", extracttest.DOCX(rentalAgreement...)}))

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "accept", body["decision"])
	assert.Equal(t, "Rental Agreement", body["document_type"])
	assert.Len(t, body["important_clauses"], 3)
	assert.NotContains(t, body, "reason")
	assert.Equal(t, []string{events.TypeDocumentAnalyzed}, h.pub.types())
}

func TestAnalyzeDocumentUploadErrors(t *testing.T) {
	tests := []struct {
		name   string
		file   *filePart
		code   int
		detail string
	}{
		{"no file", nil, fiber.StatusBadRequest, extract.MsgMissingName},
		{"unsupported extension", &filePart{"notes.txt", []byte("hello")}, fiber.StatusBadRequest, extract.MsgUnsupportedFormat},
		{"empty file", &filePart{"lease.pdf", nil}, fiber.StatusBadRequest, extract.MsgEmptyFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			code, body := h.do(t, multipartRequest(t, http.MethodPost, "/analyze-document", nil, tt.file))

			assert.Equal(t, tt.code, code)
			assert.Equal(t, "HTTP 400", body["error"])
			assert.Equal(t, tt.detail, body["detail"])
		})
	}
}

func TestAnalyzeDocumentUnreadablePDFIsRejected(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, multipartRequest(t, http.MethodPost, "/analyze-document", nil, &filePart{"lease.pdf", []byte("not a pdf")}))

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "reject", body["decision"])
	assert.NotEmpty(t, body["reason"])
	assert.Zero(t, h.llm.Calls())
}

func TestChatWithoutDocument(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, multipartRequest(t, http.MethodPost, "/chat", map[string]string{"message": "What is a tort?", "session_id": "string"}, nil))

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, response.MsgNoDocument, body["response"])
	assert.Equal(t, false, body["document_processed"])
	assert.Len(t, body["session_id"], ragsession.IDLength)
	assert.Zero(t, h.llm.Calls())
}

func TestChatUploadThenAsk(t *testing.T) {
	h := newHarness(t,
		llmtest.Reply{Content: acceptReply},
		llmtest.Reply{Content: "The rent is 1,500 USD per month."},
	)

	code, body := h.do(t, multipartRequest(t, http.MethodPost, "/chat", map[string]string{"session_id": "lease-session"},
		&filePart{"lease.docx", extracttest.DOCX(rentalAgreement...)}))
	require.Equal(t, fiber.StatusOK, code, body)
	assert.Equal(t, "", body["response"])
	assert.Equal(t, true, body["document_processed"])
	assert.Equal(t, "lease-session", body["session_id"])
	assert.Equal(t, []string{events.TypeSessionDocumentIndexed}, h.pub.types())

	code, body = h.do(t, multipartRequest(t, http.MethodPost, "/chat", map[string]string{"session_id": "lease-session", "message": "How much is the rent?"}, nil))
	require.Equal(t, fiber.StatusOK, code, body)
	assert.Equal(t, "The rent is 1,500 USD per month.", body["response"])
	assert.Equal(t, true, body["document_processed"])
	assert.Equal(t, 2, h.llm.Calls())
}

func TestChatUnreadableReuploadStillAnswers(t *testing.T) {
	h := newHarness(t,
		llmtest.Reply{Content: acceptReply},
		llmtest.Reply{Content: "Sixty days written notice."},
	)

	code, body := h.do(t, multipartRequest(t, http.MethodPost, "/chat", map[string]string{"session_id": "first-wins"},
		&filePart{"lease.docx", extracttest.DOCX(rentalAgreement...)}))
	require.Equal(t, fiber.StatusOK, code, body)

	code, body = h.do(t, multipartRequest(t, http.MethodPost, "/chat",
		map[string]string{"session_id": "first-wins", "message": "What is the notice period?"},
		&filePart{"second.docx", []byte("not a zip at all")}))
	require.Equal(t, fiber.StatusOK, code, body)
	assert.Equal(t, "Sixty days written notice.", body["response"])
	assert.Equal(t, true, body["document_processed"])
}

func TestChatUnreadableFirstUpload(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, multipartRequest(t, http.MethodPost, "/chat",
		map[string]string{"session_id": "broken", "message": "What is this?"},
		&filePart{"lease.docx", []byte("not a zip at all")}))

	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "HTTP 400", body["error"])
	assert.Zero(t, h.llm.Calls())
}

func TestChatFileOnlyRejected(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, multipartRequest(t, http.MethodPost, "/chat", nil,
		&filePart{"note.docx", extracttest.DOCX("Lunch on Friday?")}))

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, sessionwf.MsgRejected, body["response"])
	assert.Equal(t, false, body["document_processed"])
}

func TestChatRequiresMessageOrFile(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, multipartRequest(t, http.MethodPost, "/chat", map[string]string{"message": "  "}, nil))

	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, map[string]interface{}{
		"error":  "HTTP 400",
		"detail": service.MsgMessageRequired,
	}, body)
}

func TestChatEmptyBody(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, httptest.NewRequest(http.MethodPost, "/chat", nil))

	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, service.MsgMessageRequired, body["detail"])
}

func TestChatMessageTooLong(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, multipartRequest(t, http.MethodPost, "/chat", map[string]string{"message": strings.Repeat("a", 2001)}, nil))

	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
	assert.Equal(t, "message must be at most 2000 characters", body["detail"])
}

func TestDeleteSession(t *testing.T) {
	h := newHarness(t)
	_, _ = h.do(t, multipartRequest(t, http.MethodPost, "/chat", map[string]string{"message": "hi", "session_id": "to-delete"}, nil))

	code, body := h.do(t, httptest.NewRequest(http.MethodDelete, "/chat/to-delete", nil))
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, body = h.do(t, httptest.NewRequest(http.MethodDelete, "/chat/to-delete", nil))
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, service.MsgSessionNotFound, body["detail"])
}

func TestSystemEndpoints(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Welcome to Legal Document Analyzer", body["message"])
	assert.Equal(t, "Legal document analyzer", body["description"])

	code, body = h.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "Legal Document Analyzer", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestListAnalysesWithoutDatabase(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, httptest.NewRequest(http.MethodGet, "/analyses?limit=5", nil))
	assert.Equal(t, fiber.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["total"])
	assert.Empty(t, data["items"])

	code, _ = h.do(t, httptest.NewRequest(http.MethodGet, "/analyses?limit=500", nil))
	assert.Equal(t, fiber.StatusUnprocessableEntity, code)
}
