package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/taxright/taxright/internal/pricing"
)

// MaxPDFSize is the largest document accepted for extraction.
const MaxPDFSize = 50 << 20

var (
	ErrNotPDF   = errors.New("file is not a PDF")
	ErrEmptyPDF = errors.New("file is empty")

	pdfMagic = []byte("%PDF")
)

// Result is the raw output of one extraction call, before any parsing.
type Result struct {
	RawText string
	ModelID string
	Usage   pricing.TokenUsage
}

// TextExtractor turns an invoice PDF into the model's raw text response.
//
//go:generate mockgen -source=ocr.go -destination=extractor_mock.go -package=ocr
type TextExtractor interface {
	ExtractInvoice(ctx context.Context, filename string, pdf []byte) (*Result, error)
}

// ValidatePDF rejects payloads that are empty, oversized, or missing the PDF
// magic bytes before any model call is made.
func ValidatePDF(pdf []byte) error {
	if len(pdf) == 0 {
		return ErrEmptyPDF
	}

	if len(pdf) > MaxPDFSize {
		return fmt.Errorf("file exceeds %d bytes: got %d", MaxPDFSize, len(pdf))
	}

	if !bytes.HasPrefix(pdf, pdfMagic) {
		return ErrNotPDF
	}

	return nil
}

var (
	invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-\(\)\[\]]`)
	multiWhitespace  = regexp.MustCompile(`\s+`)
	multiHyphen      = regexp.MustCompile(`-+`)
)

// SanitizeFilename rewrites a filename into the character set the Converse
// API accepts for document names: alphanumerics, single spaces, hyphens,
// parentheses and square brackets. The extension is dropped since the
// document format is declared separately.
func SanitizeFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	name = invalidNameChars.ReplaceAllString(name, "-")
	name = multiWhitespace.ReplaceAllString(name, " ")
	name = multiHyphen.ReplaceAllString(name, "-")
	name = strings.Trim(name, " -")

	if name == "" {
		return "invoice"
	}

	return name
}
