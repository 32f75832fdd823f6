package dto

import (
	"encoding/json"

	"legal-analyzer-be/pkg/legal"
)

type AnalyzeDocumentRequest struct {
	Filename    string
	ContentType string
	Content     []byte
}

// AnalyzeDocumentResponse renders as {decision, document_type, summary,
// important_clauses} when accepted and {decision, reason} when rejected.
type AnalyzeDocumentResponse struct {
	AnalysisId       string   `json:"-"`
	Decision         string   `json:"decision"`
	DocumentType     string   `json:"document_type"`
	Summary          string   `json:"summary"`
	ImportantClauses []string `json:"important_clauses"`
	Reason           string   `json:"reason"`
}

func NewAnalyzeDocumentResponse(outcome legal.Outcome) *AnalyzeDocumentResponse {
	switch o := outcome.(type) {
	case *legal.AnalysisResult:
		clauses := o.ImportantClauses
		if clauses == nil {
			clauses = []string{}
		}
		return &AnalyzeDocumentResponse{
			Decision:         string(legal.Accept),
			DocumentType:     o.DocumentType,
			Summary:          o.Summary,
			ImportantClauses: clauses,
		}
	case *legal.RejectionResult:
		return &AnalyzeDocumentResponse{Decision: string(legal.Reject), Reason: o.Reason}
	}
	return nil
}

func (r AnalyzeDocumentResponse) MarshalJSON() ([]byte, error) {
	if r.Decision == string(legal.Reject) {
		return json.Marshal(struct {
			Decision string `json:"decision"`
			Reason   string `json:"reason"`
		}{r.Decision, r.Reason})
	}
	return json.Marshal(struct {
		Decision         string   `json:"decision"`
		DocumentType     string   `json:"document_type"`
		Summary          string   `json:"summary"`
		ImportantClauses []string `json:"important_clauses"`
	}{r.Decision, r.DocumentType, r.Summary, r.ImportantClauses})
}
