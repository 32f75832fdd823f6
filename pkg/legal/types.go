// Package legal classifies, analyses and explains rejections of documents
// through the reasoning service. Every call is bounded by a deadline and
// degrades to a well-formed result instead of returning an error.
package legal

import "time"

type Decision string

const (
	Accept Decision = "accept"
	Reject Decision = "reject"
)

// Outcome is the terminal result of analysing one document: exactly one of
// *AnalysisResult or *RejectionResult.
type Outcome interface {
	Decision() Decision
	outcome()
}

type AnalysisResult struct {
	DocumentType     string   `json:"document_type"`
	Summary          string   `json:"summary"`
	ImportantClauses []string `json:"important_clauses"`
}

func (*AnalysisResult) Decision() Decision { return Accept }
func (*AnalysisResult) outcome()           {}

type RejectionResult struct {
	Reason string `json:"reason"`
}

func (*RejectionResult) Decision() Decision { return Reject }
func (*RejectionResult) outcome()           {}

// Config holds the limits applied around reasoning-service calls.
type Config struct {
	MinTextLength    int
	ValidatorPrefix  int
	ValidateTimeout  time.Duration
	AnalyzerMaxChars int
	AnalyzeTimeout   time.Duration
	RejectionPrefix  int
	RejectTimeout    time.Duration
	Temperature      float64
}

func DefaultConfig() Config {
	return Config{
		MinTextLength:    100,
		ValidatorPrefix:  1500,
		ValidateTimeout:  45 * time.Second,
		AnalyzerMaxChars: 8000,
		AnalyzeTimeout:   90 * time.Second,
		RejectionPrefix:  500,
		RejectTimeout:    30 * time.Second,
		Temperature:      0.1,
	}
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
