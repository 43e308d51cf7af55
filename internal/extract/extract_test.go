package extract

import (
	"context"
	"strings"
	"testing"
)

func TestExtractTextFromBytes_PlainText(t *testing.T) {
	data := []byte("Total revenue for fiscal 2023 was $4.2 billion.")

	text, err := ExtractTextFromBytes(context.Background(), data, "text/plain", "filing.txt")
	if err != nil {
		t.Fatalf("extract plain text: %v", err)
	}
	if text != string(data) {
		t.Fatalf("expected passthrough text, got %q", text)
	}
}

func TestExtractTextFromBytes_OctetStreamTxtExtension(t *testing.T) {
	data := []byte("10-K annual report")

	text, err := ExtractTextFromBytes(context.Background(), data, "application/octet-stream", "report.txt")
	if err != nil {
		t.Fatalf("expected txt extension to extract, got error: %v", err)
	}
	if text != string(data) {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractTextFromBytes_UnsupportedRejected(t *testing.T) {
	_, err := ExtractTextFromBytes(context.Background(), []byte{0x50, 0x4b, 0x03, 0x04}, "application/zip", "archive.zip")
	if err == nil {
		t.Fatal("expected unsupported mime error for zip")
	}
	if !strings.Contains(err.Error(), "unsupported mime type: application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractTextFromBytes_CorruptPDF(t *testing.T) {
	_, err := ExtractTextFromBytes(context.Background(), []byte("%PDF-1.4 not actually a pdf"), "application/pdf", "broken.pdf")
	if err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
}

func TestExtractTextFromBytes_InvalidUTF8Text(t *testing.T) {
	_, err := ExtractTextFromBytes(context.Background(), []byte{0xff, 0xfe, 0xfd}, "text/plain", "junk.txt")
	if err == nil {
		t.Fatal("expected error for non-UTF-8 plain text")
	}
}

func TestNormalizeMimeType(t *testing.T) {
	tests := []struct {
		name     string
		mime     string
		fileName string
		data     []byte
		want     string
	}{
		{name: "declared pdf", mime: "application/pdf", fileName: "x.bin", want: "application/pdf"},
		{name: "declared text with charset", mime: "text/plain; charset=utf-8", fileName: "x", want: "text/plain"},
		{name: "pdf by extension", mime: "application/octet-stream", fileName: "filing.PDF", want: "application/pdf"},
		{name: "markdown as text", mime: "text/markdown", fileName: "notes.md", want: "text/plain"},
		{name: "pdf by magic bytes", mime: "", fileName: "blob", data: []byte("%PDF-1.7\n"), want: "application/pdf"},
		{name: "octet stream utf8 fallback", mime: "application/octet-stream", fileName: "blob", data: []byte("hello"), want: "text/plain"},
		{name: "unknown stays unknown", mime: "image/png", fileName: "pic.png", want: "image/png"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeMimeType(tt.mime, tt.fileName, tt.data); got != tt.want {
				t.Fatalf("NormalizeMimeType(%q, %q) = %q, want %q", tt.mime, tt.fileName, got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("a", 500)
	if got := Preview(long, 200); len(got) != 200 {
		t.Fatalf("expected 200 chars, got %d", len(got))
	}
	if got := Preview("  short  ", 200); got != "short" {
		t.Fatalf("expected trimmed short text, got %q", got)
	}
	if got := Preview("héllo wörld", 5); got != "héllo" {
		t.Fatalf("expected rune-safe cut, got %q", got)
	}
}
