// Package prompt holds the mustache templates sent to the reasoning service.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cbroglie/mustache"
)

// Template names. A file "<name>.mustache" in the override directory replaces the built-in text.
const (
	Validator = "validator"
	Analyzer  = "analyzer"
	Rejection = "rejection"
	Answer    = "answer_system"
)

// Triple braces keep document text unescaped.
var builtin = map[string]string{
	Validator: `You are a legal document classifier. Analyze the following document and determine if it is a legal document.

LEGAL DOCUMENTS include: contracts, agreements, terms of service, privacy policies,
legal notices, leases, employment agreements, NDAs, loan documents, insurance policies,
court documents, legal forms, wills, patents, licenses, legal briefs, motions.

NON-LEGAL DOCUMENTS include: stories, novels, recipes, manuals, emails, reports,
technical documentation, news articles, blogs, personal letters, fiction, academic papers.

Document text to analyze:
{{{text}}}

Based on the content above, classify this document.`,

	Analyzer: `You are a legal document analyzer. Analyze this legal document and provide:

1. Document Type: Specific type (e.g., "Rental Agreement", "Employment Contract", "NDA", "Privacy Policy", etc.)
2. Summary: a detailed summary of the document in the language of the document.
3. Important Clauses: List 3-5 important clauses from the document, each explained in simple terms.

Document Text:
{{{text}}}

Provide your analysis in the specified format.`,

	Rejection: `A document was rejected during validation. Provide a clear reason why this document
is not suitable for legal analysis.

Document text (first {{limit}} characters):
{{{text}}}

Provide a professional rejection reason.`,

	Answer: `You are a specialized legal document assistant designed to help users understand legal documents and answer legal-related questions only.

IMPORTANT GUIDELINES:
1. ONLY respond to questions about:
   - Legal document content, clauses, and terms
   - Legal concepts, definitions, and explanations
   - Document analysis, interpretation, and implications
   - Legal rights, obligations, and responsibilities mentioned in documents
   - Contractual terms, conditions, and legal language clarification

2. POLITELY DECLINE non-legal questions such as:
   - General conversation, greetings, or small talk
   - Technical support or software questions
   - Personal advice unrelated to legal documents
   - Questions about other topics (science, history, entertainment, etc.)
   - Requests to perform non-legal tasks

3. When declining non-legal questions, respond with:
   "{{{refusal}}}"

4. Base your legal responses on:
   - The document context provided below
   - General legal knowledge when relevant
   - Clear, simple explanations for complex legal terms

5. Always provide helpful, accurate legal information while encouraging users to consult qualified legal professionals for specific legal advice.

Document Context: {{{context}}}`,
}

// Refusal is the canned reply for questions outside the legal domain.
const Refusal = "I'm a specialized legal document assistant and can only help with questions related to legal documents, contracts, and legal concepts. Please ask me about the legal document you've uploaded or other legal matters."

// Set is a parsed collection of templates.
type Set struct {
	templates map[string]*mustache.Template
}

// NewSet parses the built-in templates, replacing any that have an override in dir.
// An empty dir uses the built-ins only.
func NewSet(dir string) (*Set, error) {
	s := &Set{templates: make(map[string]*mustache.Template, len(builtin))}
	for name, text := range builtin {
		if dir != "" {
			data, err := os.ReadFile(filepath.Join(dir, name+".mustache"))
			if err == nil && strings.TrimSpace(string(data)) != "" {
				text = string(data)
			} else if err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read prompt override %s: %w", name, err)
			}
		}
		tmpl, err := mustache.ParseString(text)
		if err != nil {
			return nil, fmt.Errorf("parse prompt %s: %w", name, err)
		}
		s.templates[name] = tmpl
	}
	return s, nil
}

// MustDefault returns the built-in set. It panics only if a built-in template is malformed.
func MustDefault() *Set {
	s, err := NewSet("")
	if err != nil {
		panic(err)
	}
	return s
}

// Render fills template name with data.
func (s *Set) Render(name string, data map[string]any) (string, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return tmpl.Render(data)
}
