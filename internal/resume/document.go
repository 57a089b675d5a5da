package resume

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PreviewLength is how much extracted text the analyze response echoes back.
const PreviewLength = 500

// Document is an uploaded resume, normalized for the analysis call. PDFs
// keep their raw bytes (they go to the provider as an inline attachment) and
// additionally carry extracted text for previews; anything else is treated
// as plain UTF-8 text.
type Document struct {
	MIMEType string
	Data     []byte
	Text     string
}

// ErrEmptyDocument is returned for zero-byte uploads.
var ErrEmptyDocument = errors.New("uploaded resume is empty")

// FromUpload builds a Document from a multipart upload.
func FromUpload(filename, contentType string, data []byte) (Document, error) {
	if len(data) == 0 {
		return Document{}, ErrEmptyDocument
	}

	if isPDF(filename, contentType) {
		text, err := ExtractPDFText(data)
		if err != nil {
			// The provider parses the PDF itself; local extraction only
			// feeds the preview, so a scanned PDF is still acceptable.
			text = ""
		}
		return Document{MIMEType: "application/pdf", Data: data, Text: text}, nil
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return Document{}, ErrEmptyDocument
	}
	return Document{MIMEType: "text/plain", Data: data, Text: text}, nil
}

// IsPDF reports whether the document should travel as an inline PDF
// attachment rather than prompt text.
func (d Document) IsPDF() bool {
	return d.MIMEType == "application/pdf"
}

// Preview returns the first PreviewLength runes of the extracted text.
func (d Document) Preview() string {
	runes := []rune(d.Text)
	if len(runes) <= PreviewLength {
		return d.Text
	}
	return string(runes[:PreviewLength])
}

// ExtractPDFText pulls plain text out of a PDF, page by page.
func ExtractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", errors.New("no extractable text (scanned or image-based pdf)")
	}
	return text, nil
}

func isPDF(filename, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}
