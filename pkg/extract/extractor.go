// Package extract turns uploaded PDF and DOCX documents into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"legal-analyzer-be/internal/pkg/logger"

	"github.com/dustin/go-humanize"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Kind classifies extraction failures so the transport can pick a status code.
type Kind int

const (
	KindInvalid  Kind = iota // 400
	KindTooLarge             // 413
	KindTimeout              // 408
)

const (
	MsgUnsupportedFormat = "Only PDF and DOCX files are supported"
	MsgMissingName       = "File must have a name"
	MsgEmptyFile         = "File is empty"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMissingName       = errors.New("missing file name")
	ErrEmptyFile         = errors.New("empty file")
	ErrFileTooLarge      = errors.New("file too large")
	ErrExtractionTimeout = errors.New("extraction timed out")
	ErrNoReadableText    = errors.New("no readable text")
)

// Error carries a user-facing message and its kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: err, Message: fmt.Sprintf(format, args...)}
}

type Config struct {
	MaxFileSizeMB int
	PDFTimeout    time.Duration
	DOCXTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{MaxFileSizeMB: 10, PDFTimeout: 30 * time.Second, DOCXTimeout: 20 * time.Second}
}

// Extractor enforces size limits and per-format deadlines around the parsers.
type Extractor struct {
	cfg    Config
	logger logger.ILogger
}

func NewExtractor(cfg Config, log logger.ILogger) *Extractor {
	return &Extractor{cfg: cfg, logger: log}
}

// DetectFormat maps a filename to a supported format.
func DetectFormat(filename string) (Format, error) {
	if strings.TrimSpace(filename) == "" {
		return "", newError(KindInvalid, ErrMissingName, MsgMissingName)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", newError(KindInvalid, ErrUnsupportedFormat, MsgUnsupportedFormat)
	}
}

// CheckUpload validates name, emptiness and size without parsing.
func (x *Extractor) CheckUpload(filename string, size int64) (Format, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return "", err
	}
	maxBytes := int64(x.cfg.MaxFileSizeMB) * 1024 * 1024
	if maxBytes > 0 && size > maxBytes {
		return "", newError(KindTooLarge, ErrFileTooLarge,
			"File size %.1fMB exceeds maximum allowed size of %dMB", float64(size)/(1024*1024), x.cfg.MaxFileSizeMB)
	}
	if size == 0 {
		return "", newError(KindInvalid, ErrEmptyFile, MsgEmptyFile)
	}
	return format, nil
}

// Extract returns the trimmed plain text of content.
func (x *Extractor) Extract(ctx context.Context, content []byte, filename string) (string, error) {
	format, err := x.CheckUpload(filename, int64(len(content)))
	if err != nil {
		return "", err
	}

	x.logger.Info("extractor", "Processing file", map[string]interface{}{
		"filename": filename,
		"size":     humanize.Bytes(uint64(len(content))),
	})

	var (
		parse   func([]byte) (string, error)
		timeout time.Duration
		label   = strings.ToUpper(string(format))
	)
	switch format {
	case FormatPDF:
		parse, timeout = extractPDF, x.cfg.PDFTimeout
	case FormatDOCX:
		parse, timeout = extractDOCX, x.cfg.DOCXTimeout
	}

	text, err := runWithTimeout(ctx, timeout, func() (string, error) { return parse(content) })
	if errors.Is(err, context.DeadlineExceeded) {
		x.logger.Error("extractor", label+" extraction timed out", map[string]interface{}{"timeout": timeout.String()})
		return "", newError(KindTimeout, ErrExtractionTimeout,
			"%s processing timed out. Please try with a smaller file.", label)
	}
	if err != nil {
		x.logger.Error("extractor", label+" extraction error", map[string]interface{}{"error": err})
		return "", newError(KindInvalid, err, "Failed to extract text from %s: %v", label, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", newError(KindInvalid, ErrNoReadableText, "Failed to extract text from %s: No readable text found in %s", label, label)
	}

	x.logger.Info("extractor", "Text extracted", map[string]interface{}{"format": label, "characters": len(text)})
	return text, nil
}

// runWithTimeout abandons fn when the deadline passes. The parsers are not
// context-aware, so fn keeps running in the background until it returns.
func runWithTimeout(ctx context.Context, timeout time.Duration, fn func() (string, error)) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("parser panic: %v", r)}
			}
		}()
		text, err := fn()
		done <- result{text, err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
