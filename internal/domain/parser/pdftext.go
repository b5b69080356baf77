package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dslipak/pdf"
)

// extractLines returns the document's text flattened to an ordered line
// sequence. Row-grouped extraction preserves the visual line structure the
// statement scanners depend on; if it fails for a page the plain-text
// stream is used instead.
//
// The underlying pdf library panics on some malformed documents, so the
// whole extraction is fenced with recover and surfaces a plain error.
func extractLines(data []byte) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
			err = fmt.Errorf("pdf extraction panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, rerr := page.GetTextByRow()
		if rerr != nil {
			continue
		}
		for _, row := range rows {
			var parts []string
			for _, text := range row.Content {
				if s := strings.TrimSpace(text.S); s != "" {
					parts = append(parts, s)
				}
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
	}

	if len(lines) == 0 {
		lines, err = extractPlainLines(reader)
		if err != nil {
			return nil, err
		}
	}

	return lines, nil
}

func extractPlainLines(reader *pdf.Reader) ([]string, error) {
	r, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("failed to read text: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// extractCellRows returns each visual text row as a slice of cells, used by
// the generic table extractor.
func extractCellRows(data []byte) (cells [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			cells = nil
			err = fmt.Errorf("pdf extraction panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, rerr := page.GetTextByRow()
		if rerr != nil {
			continue
		}
		for _, row := range rows {
			var rowCells []string
			for _, text := range row.Content {
				if s := strings.TrimSpace(text.S); s != "" {
					rowCells = append(rowCells, s)
				}
			}
			if len(rowCells) > 0 {
				cells = append(cells, rowCells)
			}
		}
	}

	return cells, nil
}
