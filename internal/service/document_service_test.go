package service

import (
	"context"
	"errors"
	"testing"

	"legal-analyzer-be/internal/dto"
	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/pkg/events"
	"legal-analyzer-be/pkg/extract"
	"legal-analyzer-be/pkg/legal"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocumentServiceForTest(wf DocumentWorkflow, pub IPublisherService) IDocumentService {
	log := logger.NewNopLogger()
	return NewDocumentService(wf, extract.NewExtractor(extract.DefaultConfig(), log), pub, log)
}

func TestDocumentServiceAcceptedPublishesAnalysis(t *testing.T) {
	wf := &fakeDocumentWorkflow{outcome: &legal.AnalysisResult{
		DocumentType:     "Rental Agreement",
		Summary:          "Residential lease.",
		ImportantClauses: []string{"Rent", "Deposit", "Term"},
	}}
	pub := &fakePublisher{}
	svc := newDocumentServiceForTest(wf, pub)

	res, err := svc.Analyze(context.Background(), &dto.AnalyzeDocumentRequest{Filename: "lease.docx", Content: []byte("bytes")})

	require.NoError(t, err)
	assert.Equal(t, "accept", res.Decision)
	assert.Equal(t, "Rental Agreement", res.DocumentType)
	assert.NotEmpty(t, res.AnalysisId)

	published := pub.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.TypeDocumentAnalyzed, published[0].EventType())

	var payload events.AnalysisPayload
	require.NoError(t, events.DecodePayload(published[0], &payload))
	assert.Equal(t, res.AnalysisId, payload.AnalysisID)
	assert.Equal(t, "lease.docx", payload.Filename)
	assert.Equal(t, int64(5), payload.SizeBytes)
	assert.Equal(t, []string{"Rent", "Deposit", "Term"}, payload.ImportantClauses)
}

func TestDocumentServiceRejectedPublishesRejection(t *testing.T) {
	wf := &fakeDocumentWorkflow{outcome: &legal.RejectionResult{Reason: "Not legal"}}
	pub := &fakePublisher{}
	svc := newDocumentServiceForTest(wf, pub)

	res, err := svc.Analyze(context.Background(), &dto.AnalyzeDocumentRequest{Filename: "recipe.pdf", Content: []byte("x")})

	require.NoError(t, err)
	assert.Equal(t, "reject", res.Decision)
	assert.Equal(t, "Not legal", res.Reason)
	require.Len(t, pub.published(), 1)
	assert.Equal(t, events.TypeDocumentRejected, pub.published()[0].EventType())
}

func TestDocumentServiceValidatesUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		message  string
	}{
		{"missing name", "", []byte("x"), extract.MsgMissingName},
		{"unsupported extension", "notes.txt", []byte("x"), extract.MsgUnsupportedFormat},
		{"empty file", "lease.pdf", nil, extract.MsgEmptyFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := &fakeDocumentWorkflow{outcome: &legal.RejectionResult{Reason: "unused"}}
			svc := newDocumentServiceForTest(wf, nil)

			_, err := svc.Analyze(context.Background(), &dto.AnalyzeDocumentRequest{Filename: tt.filename, Content: tt.content})

			var xe *extract.Error
			require.True(t, errors.As(err, &xe))
			assert.Equal(t, extract.KindInvalid, xe.Kind)
			assert.Equal(t, tt.message, xe.Message)
			assert.Zero(t, wf.calls)
		})
	}
}

func TestDocumentServiceNilOutcome(t *testing.T) {
	svc := newDocumentServiceForTest(&fakeDocumentWorkflow{}, nil)

	_, err := svc.Analyze(context.Background(), &dto.AnalyzeDocumentRequest{Filename: "a.pdf", Content: []byte("x")})

	var fe *fiber.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, fiber.StatusInternalServerError, fe.Code)
	assert.Equal(t, MsgDocumentProcessingFailed, fe.Message)
}

func TestDocumentServicePublishFailureIsNotFatal(t *testing.T) {
	wf := &fakeDocumentWorkflow{outcome: &legal.RejectionResult{Reason: "Not legal"}}
	svc := newDocumentServiceForTest(wf, &fakePublisher{err: errors.New("bus down")})

	res, err := svc.Analyze(context.Background(), &dto.AnalyzeDocumentRequest{Filename: "a.pdf", Content: []byte("x")})

	require.NoError(t, err)
	assert.Equal(t, "reject", res.Decision)
}
