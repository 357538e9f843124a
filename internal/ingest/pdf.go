package ingest

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	rpdf "rsc.io/pdf"
)

// extractPDF returns one line of output per text line, pages separated by a newline.
func extractPDF(data []byte) (text string, err error) {
	// rsc.io/pdf panics on some malformed input
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	doc, err := rpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var out strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		out.WriteString(pageText(page.Content().Text))
		out.WriteString("\n")
	}
	return out.String(), nil
}

// pageText joins positioned glyph runs, breaking lines on baseline changes
// and inserting spaces across visible gaps.
func pageText(runs []rpdf.Text) string {
	var b strings.Builder
	var prev *rpdf.Text
	for i := range runs {
		t := &runs[i]
		if prev != nil {
			switch {
			case math.Abs(t.Y-prev.Y) > t.FontSize/2:
				b.WriteString("\n")
			case t.X-(prev.X+prev.W) > t.FontSize/4 && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " "):
				b.WriteString(" ")
			}
		}
		b.WriteString(t.S)
		prev = t
	}
	return b.String()
}
