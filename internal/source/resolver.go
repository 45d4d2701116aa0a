package source

import (
	"context"
	"fmt"
	"strings"

	"quizlens/internal/domain"
)

// Input is the raw quiz source as supplied by the user.
type Input struct {
	Mode  domain.InputMode
	Topic string
	Text  string
	PDF   []byte
}

// PDFExtractor turns a PDF document into per-page text.
type PDFExtractor interface {
	ExtractPages(ctx context.Context, doc []byte) ([]string, error)
}

// Resolver normalizes the three input modes into one text blob.
type Resolver struct {
	pdf PDFExtractor
}

// NewResolver returns a Resolver. A nil extractor falls back to PDFTextExtractor.
func NewResolver(pdf PDFExtractor) *Resolver {
	if pdf == nil {
		pdf = PDFTextExtractor{}
	}
	return &Resolver{pdf: pdf}
}

// Resolve returns the trimmed content for in, or domain.ErrNoContent when
// nothing usable remains.
func (r *Resolver) Resolve(ctx context.Context, in Input) (string, error) {
	var text string

	switch in.Mode {
	case domain.ModeTopic, "":
		text = in.Topic
	case domain.ModeTextNotes:
		text = in.Text
	case domain.ModePDF:
		if len(in.PDF) == 0 {
			return "", domain.ErrNoContent
		}
		pages, err := r.pdf.ExtractPages(ctx, in.PDF)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrNoContent, err)
		}
		text = joinPages(pages)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidMode, in.Mode)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrNoContent
	}
	return text, nil
}

// joinPages concatenates pages in order with newlines, skipping empty pages.
func joinPages(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p)
	}
	return b.String()
}
