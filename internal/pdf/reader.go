// Package pdf wraps go-fitz to expose PDF page text to the extraction
// rulesets.
package pdf

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/openmaine/budget-preprocessor/internal/domain"
)

// Reader extracts page text from PDF files using go-fitz.
type Reader struct {
	validator *Validator
}

// NewReader creates a new PDF reader.
func NewReader() *Reader {
	return &Reader{validator: NewValidator()}
}

// PageTexts returns the text of every page of the PDF at path, in page
// order. Page text layout (line breaks) is preserved as go-fitz reports it.
func (r *Reader) PageTexts(ctx context.Context, path string) ([]string, error) {
	if err := r.validator.ValidatePDFPath(path); err != nil {
		return nil, err
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, domain.ExtractionError(fmt.Sprintf("failed to open PDF %s", path), err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, domain.ExtractionError(fmt.Sprintf("PDF has no pages: %s", path), nil)
	}

	texts := make([]string, 0, pageCount)
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		text, err := doc.Text(pageNum)
		if err != nil {
			return nil, domain.ExtractionError(fmt.Sprintf("failed to read page %d of %s", pageNum+1, path), err)
		}
		texts = append(texts, text)
	}

	return texts, nil
}
