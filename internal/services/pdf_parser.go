package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	ErrEncryptedPDF  = errors.New("PDF is encrypted")
	ErrNoTextContent = errors.New("no text content found in PDF")
)

type PDFParserService interface {
	// ExtractText returns the text of every page in ascending page order,
	// concatenated without a separator.
	ExtractText(data []byte) (string, error)
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

// ExtractText recovers from the panics the pdf package raises on malformed
// input and reports them as errors.
func (p *pdfParserService) ExtractText(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("malformed PDF: %v", rec)
		}
	}()

	if len(data) == 0 {
		return "", fmt.Errorf("failed to open PDF: empty payload")
	}

	r, err := openPDF(data)
	if err != nil {
		return "", err
	}

	if !r.Trailer().Key("Encrypt").IsNull() {
		return "", ErrEncryptedPDF
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			return "", fmt.Errorf("page %d is missing from the page tree", pageIndex)
		}

		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			return "", fmt.Errorf("failed to extract page %d: %w", pageIndex, pageErr)
		}

		textBuilder.WriteString(pageText)
	}

	text = textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoTextContent
	}

	return text, nil
}

func openPDF(data []byte) (*pdf.Reader, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		// The reader rejects most encryption handlers with a generic error.
		if errors.Is(err, pdf.ErrInvalidPassword) || bytes.Contains(data, []byte("/Encrypt")) {
			return nil, fmt.Errorf("%w: %v", ErrEncryptedPDF, err)
		}
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	return r, nil
}
