package source

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/ledongthuc/pdf"
)

// PDFTextExtractor reads the plain text layer of each page.
// Pages without extractable text come back as empty strings.
type PDFTextExtractor struct{}

func (PDFTextExtractor) ExtractPages(ctx context.Context, doc []byte) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("read pdf: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	pages = make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, pageText(r, i))
	}
	return pages, nil
}

// pageText returns "" for pages that are missing or fail to decode.
// The pdf package panics on some malformed content streams.
func pageText(r *pdf.Reader, num int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("pdf page %d skipped: %v", num, rec)
			text = ""
		}
	}()

	p := r.Page(num)
	if p.V.IsNull() {
		return ""
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		log.Printf("pdf page %d skipped: %v", num, err)
		return ""
	}
	return text
}
