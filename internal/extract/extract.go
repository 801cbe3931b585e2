package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrUnsupportedFormat is returned for declared formats that cannot be read.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrCorruptDocument is returned when the bytes do not match the declared format.
	ErrCorruptDocument = errors.New("corrupt document")
	// ErrNoExtractableText means extraction succeeded but produced no text.
	// Callers must stop before scoring when they see it.
	ErrNoExtractableText = errors.New("no extractable text")
)

// Extractor turns uploaded document bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, ext string) (string, error)
}

// Documents is the default Extractor: pdf, docx/doc and a UTF-8 fallback.
type Documents struct {
	logger *zap.Logger
	pdf    func(data []byte) (string, error)
	docx   func(data []byte) (string, error)
}

// New returns the default document extractor.
func New(logger *zap.Logger) *Documents {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Documents{
		logger: logger,
		pdf:    pdfText,
		docx:   docxText,
	}
}

// Extract dispatches on the declared extension and returns cleaned text.
// An empty result is not an error here; see Require.
func (d *Documents) Extract(ctx context.Context, data []byte, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext = normalizeExtension(ext)

	var (
		raw string
		err error
	)
	switch ext {
	case "pdf":
		raw, err = d.pdf(data)
	case "docx", "doc":
		if !isZip(data) {
			if ext == "doc" {
				return "", fmt.Errorf("%w: legacy binary .doc files are not supported", ErrUnsupportedFormat)
			}
			return "", fmt.Errorf("%w: docx is not a zip archive", ErrCorruptDocument)
		}
		raw, err = d.docx(data)
	default:
		raw = plainText(data)
	}
	if err != nil {
		return "", err
	}

	text := CleanText(raw)
	d.logger.Debug("document text extracted",
		zap.String("format", ext),
		zap.Int("bytes", len(data)),
		zap.Int("text_length", len(text)),
	)

	return text, nil
}

// Require wraps an extraction result and turns empty text into ErrNoExtractableText.
func Require(text string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoExtractableText
	}
	return text, nil
}

// ExtensionOf returns the lower-cased extension of filename without the dot.
func ExtensionOf(filename string) string {
	return normalizeExtension(filepath.Ext(filename))
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

var (
	blankLines = regexp.MustCompile(`\n{2,}`)
	spaceRuns  = regexp.MustCompile(`\s+`)
)

// CleanText flattens extracted text into a single line of single-spaced words.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = blankLines.ReplaceAllString(text, "\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func plainText(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}

func isZip(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "PK\x03\x04"
}
