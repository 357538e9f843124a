package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// extractDOCX reads the paragraphs of word/document.xml.
func extractDOCX(data []byte, limit int64) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return readOOXMLText(f, "t", limit)
		}
	}
	return "", errors.New("open docx: word/document.xml not found")
}

var slideName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPPTX reads every slide in presentation order, separated by a blank line.
func extractPPTX(data []byte, limit int64) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pptx: %w", err)
	}

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		m := slideName.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		slides = append(slides, slide{num: n, file: f})
	}
	if len(slides) == 0 {
		return "", errors.New("open pptx: no slides found")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	texts := make([]string, 0, len(slides))
	remaining := limit
	for _, s := range slides {
		text, n, err := readOOXMLPart(s.file, "t", remaining)
		if err != nil {
			return "", err
		}
		remaining -= n
		texts = append(texts, strings.TrimRight(text, "\n"))
	}
	return strings.Join(texts, "\n\n"), nil
}

// errPartTooLarge is returned when decompressed XML exceeds the upload limit.
var errPartTooLarge = fmt.Errorf("%w: decompressed content exceeds the limit", ErrTooLarge)

// readOOXMLText collects character data of textTag elements, ending a line
// at every paragraph. At most limit decompressed bytes are read.
func readOOXMLText(f *zip.File, textTag string, limit int64) (string, error) {
	text, _, err := readOOXMLPart(f, textTag, limit)
	return text, err
}

func readOOXMLPart(f *zip.File, textTag string, limit int64) (string, int64, error) {
	if limit <= 0 || f.UncompressedSize64 > uint64(limit) {
		return "", 0, errPartTooLarge
	}
	rc, err := f.Open()
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	// the header size can lie, so bound the stream as well
	lr := &io.LimitedReader{R: rc, N: limit + 1}
	dec := xml.NewDecoder(lr)
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if lr.N <= 0 {
			return "", 0, errPartTooLarge
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", 0, fmt.Errorf("parse %s: %w", f.Name, err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case textTag:
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch el.Name.Local {
			case textTag:
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(el)
			}
		}
	}
	return b.String(), limit + 1 - lr.N, nil
}
