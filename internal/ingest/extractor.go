// Package ingest extracts plain text from uploaded study documents.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"study-aid-service/internal/domain"
)

// DefaultMaxBytes bounds the size of an accepted upload.
const DefaultMaxBytes = 20 << 20

var (
	// ErrTooLarge is returned for uploads above the configured limit.
	ErrTooLarge = errors.New("file is too large")
	// ErrNoText is returned when a document parses but holds no text.
	ErrNoText = errors.New("no text found in document")
)

// Extractor dispatches on the upload's extension.
type Extractor struct {
	maxBytes int64
}

func NewExtractor(maxBytes int64) *Extractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Extractor{maxBytes: maxBytes}
}

// Extract returns the document's text. Unsupported extensions are rejected
// before any parsing happens.
func (e *Extractor) Extract(ctx context.Context, fileName string, data []byte) (string, error) {
	ext, err := domain.UploadExtension(fileName)
	if err != nil {
		return "", err
	}
	if int64(len(data)) > e.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(data), e.maxBytes)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var text string
	switch ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data, e.maxBytes)
	case ".pptx":
		text, err = extractPPTX(data, e.maxBytes)
	case ".txt":
		text = extractText(data)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func extractText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}
