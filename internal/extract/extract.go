package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"filings-backend/internal/shared/storage/object"
)

const (
	mimePDF  = "application/pdf"
	mimeText = "text/plain"
)

// ExtractedSuffix is appended to a document's storage key for the derived plain-text copy.
const ExtractedSuffix = ".extracted.txt"

// ExtractText pulls text from a stored object and persists a derived plain-text copy.
// Returns the full text and the storage key of the derived copy.
func ExtractText(ctx context.Context, store object.ObjectStore, fileKey string, mimeType string, fileName string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	body, err := store.Open(ctx, fileKey)
	if err != nil {
		return "", "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", "", fmt.Errorf("extract text key=%s mime=%s: read: %w", fileKey, mimeType, err)
	}

	text, err := ExtractTextFromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		return "", "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}

	extractedKey := fileKey + ExtractedSuffix
	if _, err := store.SaveWithKey(ctx, extractedKey, "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		return "", "", fmt.Errorf("extract text key=%s mime=%s: %w", fileKey, mimeType, err)
	}

	return text, extractedKey, nil
}

// ExtractTextFromBytes extracts plain text from an in-memory payload.
// It is a pure function of its input; no external side effects.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	normalized := NormalizeMimeType(mimeType, fileName, data)
	switch normalized {
	case mimePDF:
		return extractPDF(data)
	case mimeText:
		return extractPlainText(data)
	default:
		return "", fmt.Errorf("unsupported mime type: %s", normalized)
	}
}

// Supported reports whether a mime type / file name combination can be extracted.
func Supported(mimeType string, fileName string) bool {
	switch NormalizeMimeType(mimeType, fileName, nil) {
	case mimePDF, mimeText:
		return true
	default:
		return false
	}
}

// Preview returns the first maxChars runes of text with surrounding space trimmed.
func Preview(text string, maxChars int) string {
	trimmed := strings.TrimSpace(text)
	if maxChars <= 0 || len(trimmed) <= maxChars {
		return trimmed
	}
	runes := []rune(trimmed)
	if len(runes) <= maxChars {
		return trimmed
	}
	return string(runes[:maxChars])
}

// NormalizeMimeType resolves a declared mime type against the file extension
// and (optionally) the payload itself.
func NormalizeMimeType(mimeType string, fileName string, data []byte) string {
	declared := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(declared, ";"); idx >= 0 {
		declared = strings.TrimSpace(declared[:idx])
	}

	switch declared {
	case mimePDF:
		return mimePDF
	case mimeText, "text/csv", "text/markdown":
		return mimeText
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return mimePDF
	case ".txt", ".text", ".md":
		return mimeText
	}

	if len(data) >= 5 && bytes.HasPrefix(data, []byte("%PDF-")) {
		return mimePDF
	}
	if declared == "application/octet-stream" && len(data) > 0 && utf8.Valid(data) {
		return mimeText
	}
	return declared
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("plain text payload is not valid UTF-8")
	}
	return string(data), nil
}
