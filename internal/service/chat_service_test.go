package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"legal-analyzer-be/internal/dto"
	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/pkg/events"
	"legal-analyzer-be/pkg/extract"
	"legal-analyzer-be/pkg/extract/extracttest"
	ragsession "legal-analyzer-be/pkg/rag/session"
	sessionwf "legal-analyzer-be/pkg/workflow/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatServiceForTest(wf ChatWorkflow, sessions SessionStore, pub IPublisherService) IChatService {
	log := logger.NewNopLogger()
	return NewChatService(wf, extract.NewExtractor(extract.DefaultConfig(), log), sessions, pub, "memory", log)
}

func docxUpload() *dto.ChatUpload {
	return &dto.ChatUpload{
		Filename: "lease.docx",
		Content:  extracttest.DOCX("RESIDENTIAL LEASE AGREEMENT", "The tenant shall pay rent monthly."),
	}
}

func requireFiberError(t *testing.T, err error, code int, message string) {
	t.Helper()
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe), "expected *fiber.Error, got %v", err)
	assert.Equal(t, code, fe.Code)
	assert.Equal(t, message, fe.Message)
}

func TestChatServiceGeneratesSessionId(t *testing.T) {
	for _, id := range []string{"", "string"} {
		t.Run(fmt.Sprintf("id=%q", id), func(t *testing.T) {
			wf := &fakeChatWorkflow{result: sessionwf.Result{Response: "Please upload a document."}}
			svc := newChatServiceForTest(wf, &fakeSessions{}, nil)

			res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "hello", SessionId: id}, nil)

			require.NoError(t, err)
			assert.Len(t, res.SessionId, ragsession.IDLength)
			assert.Equal(t, []string{res.SessionId}, wf.ids)
			assert.Equal(t, "Please upload a document.", res.Response)
		})
	}
}

func TestChatServiceTrimsMessageAndKeepsSession(t *testing.T) {
	wf := &fakeChatWorkflow{result: sessionwf.Result{Response: "answer", DocumentProcessed: true}}
	svc := newChatServiceForTest(wf, &fakeSessions{}, nil)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "  what is the rent?  ", SessionId: "abc"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "abc", res.SessionId)
	assert.True(t, res.DocumentProcessed)
	require.Len(t, wf.turns, 1)
	assert.Equal(t, "what is the rent?", wf.turns[0].Message)
	assert.False(t, wf.turns[0].HasDocument)
}

func TestChatServiceRequiresMessageOrFile(t *testing.T) {
	wf := &fakeChatWorkflow{}
	svc := newChatServiceForTest(wf, &fakeSessions{}, nil)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "   "}, nil)

	requireFiberError(t, err, fiber.StatusBadRequest, MsgMessageRequired)
	assert.Empty(t, wf.turns)
}

func TestChatServiceFileOnlyUpload(t *testing.T) {
	wf := &fakeChatWorkflow{result: sessionwf.Result{DocumentProcessed: true, Indexed: true, Chunks: 1}}
	pub := &fakePublisher{}
	svc := newChatServiceForTest(wf, &fakeSessions{}, pub)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1"}, docxUpload())

	require.NoError(t, err)
	assert.Equal(t, "", res.Response)
	assert.True(t, res.DocumentProcessed)
	require.Len(t, wf.turns, 1)
	assert.True(t, wf.turns[0].HasDocument)
	require.Len(t, wf.texts, 1)
	assert.Contains(t, wf.texts[0], "RESIDENTIAL LEASE AGREEMENT")
	assert.Empty(t, wf.turns[0].Message)

	published := pub.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.TypeSessionDocumentIndexed, published[0].EventType())
	var payload events.IndexedPayload
	require.NoError(t, events.DecodePayload(published[0], &payload))
	assert.Equal(t, events.IndexedPayload{SessionID: "s1", Chunks: 1, Backend: "memory"}, payload)
}

func TestChatServiceFileOnlyRejected(t *testing.T) {
	wf := &fakeChatWorkflow{result: sessionwf.Result{Response: sessionwf.MsgRejected, Rejected: true}}
	pub := &fakePublisher{}
	svc := newChatServiceForTest(wf, &fakeSessions{}, pub)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1"}, docxUpload())

	require.NoError(t, err)
	assert.Equal(t, sessionwf.MsgRejected, res.Response)
	assert.False(t, res.DocumentProcessed)
	assert.Empty(t, pub.published())
}

func TestChatServiceFileOnlyIndexingFailure(t *testing.T) {
	wf := &fakeChatWorkflow{
		result: sessionwf.Result{Response: sessionwf.MsgIndexingError},
		err:    fmt.Errorf("%w: embedding down", sessionwf.ErrIndexing),
	}
	svc := newChatServiceForTest(wf, &fakeSessions{}, nil)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "s1"}, docxUpload())

	requireFiberError(t, err, fiber.StatusInternalServerError, MsgFailedToProcessDocument)
}

func corruptUpload() *dto.ChatUpload {
	return &dto.ChatUpload{Filename: "second.docx", Content: []byte("not a zip at all")}
}

func TestChatServiceIgnoresUnreadableFileOnProcessedSession(t *testing.T) {
	wf := &fakeChatWorkflow{
		processed: true,
		result:    sessionwf.Result{Response: "Sixty days.", DocumentProcessed: true, Ignored: true},
	}
	svc := newChatServiceForTest(wf, &fakeSessions{}, nil)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "What is the notice period?", SessionId: "abc"}, corruptUpload())

	require.NoError(t, err)
	assert.Equal(t, "Sixty days.", res.Response)
	assert.True(t, res.DocumentProcessed)
	require.Len(t, wf.turns, 1)
	assert.Empty(t, wf.texts)
}

func TestChatServiceFileOnlyOnProcessedSessionSkipsExtraction(t *testing.T) {
	wf := &fakeChatWorkflow{processed: true, result: sessionwf.Result{DocumentProcessed: true, Ignored: true}}
	svc := newChatServiceForTest(wf, &fakeSessions{}, nil)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "abc"}, corruptUpload())

	require.NoError(t, err)
	assert.Equal(t, "", res.Response)
	assert.True(t, res.DocumentProcessed)
	assert.Empty(t, wf.texts)
}

func TestChatServiceUnreadableFileOnNewSession(t *testing.T) {
	t.Run("with message", func(t *testing.T) {
		svc := newChatServiceForTest(&fakeChatWorkflow{}, &fakeSessions{}, nil)

		_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "hi", SessionId: "abc"}, corruptUpload())

		assert.ErrorIs(t, err, sessionwf.ErrExtraction)
		var xe *extract.Error
		require.True(t, errors.As(err, &xe), "expected *extract.Error, got %v", err)
	})
	t.Run("file only", func(t *testing.T) {
		svc := newChatServiceForTest(&fakeChatWorkflow{}, &fakeSessions{}, nil)

		_, err := svc.Chat(context.Background(), &dto.ChatRequest{SessionId: "abc"}, corruptUpload())

		requireFiberError(t, err, fiber.StatusInternalServerError, MsgFailedToProcessDocument)
	})
}

func TestChatServiceIndexingFailureWithMessage(t *testing.T) {
	wf := &fakeChatWorkflow{
		result: sessionwf.Result{Response: sessionwf.MsgIndexingError},
		err:    fmt.Errorf("%w: embedding down", sessionwf.ErrIndexing),
	}
	svc := newChatServiceForTest(wf, &fakeSessions{}, nil)

	res, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "summarise", SessionId: "s1"}, docxUpload())

	require.NoError(t, err)
	assert.Equal(t, sessionwf.MsgIndexingError, res.Response)
	assert.False(t, res.DocumentProcessed)
}

func TestChatServiceInternalErrorPropagates(t *testing.T) {
	wf := &fakeChatWorkflow{err: sessionwf.ErrInternal}
	svc := newChatServiceForTest(wf, &fakeSessions{}, nil)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "hi", SessionId: "s1"}, nil)

	assert.ErrorIs(t, err, sessionwf.ErrInternal)
}

func TestChatServiceRejectsUnsupportedUpload(t *testing.T) {
	wf := &fakeChatWorkflow{}
	svc := newChatServiceForTest(wf, &fakeSessions{}, nil)

	_, err := svc.Chat(context.Background(), &dto.ChatRequest{Message: "hi"}, &dto.ChatUpload{Filename: "notes.txt", Content: []byte("x")})

	var xe *extract.Error
	require.True(t, errors.As(err, &xe))
	assert.Equal(t, extract.MsgUnsupportedFormat, xe.Message)
	assert.Empty(t, wf.turns)
}

func TestChatServiceDeleteSession(t *testing.T) {
	sessions := &fakeSessions{existing: map[string]bool{"s1": true}}
	svc := newChatServiceForTest(&fakeChatWorkflow{}, sessions, nil)

	res, err := svc.DeleteSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, &dto.DeleteSessionResponse{SessionId: "s1", Deleted: true}, res)

	_, err = svc.DeleteSession(context.Background(), "s1")
	requireFiberError(t, err, fiber.StatusNotFound, MsgSessionNotFound)

	_, err = svc.DeleteSession(context.Background(), " ")
	requireFiberError(t, err, fiber.StatusBadRequest, MsgSessionIdRequired)
}
