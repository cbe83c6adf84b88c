package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// minTextLayerRunes is the threshold below which a PDF is treated as scanned
// (no usable text layer) and routed through the OCR branch.
const minTextLayerRunes = 80

// recoverTextLayer pulls the embedded text layer out of a PDF. Returns the
// joined text and per-page slices; scanned is true when the layer is missing
// or too thin to drive text-based extraction.
func recoverTextLayer(raw []byte) (text string, pages []string, scanned bool, err error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", nil, true, fmt.Errorf("failed to open PDF: %w", err)
	}

	var builder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Keep going; a single broken page should not sink the layer.
			continue
		}

		pages = append(pages, CleanText(pageText))
		builder.WriteString(pageText)
		builder.WriteString("\n\n")
	}

	text = CleanText(builder.String())
	if len([]rune(text)) < minTextLayerRunes {
		return text, pages, true, nil
	}
	return text, pages, false, nil
}

// CleanText trims each line and collapses blank runs.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
