package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// extractDOCX returns non-empty paragraphs followed by table rows, the cells
// of a row joined with " | ".
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var body io.ReadCloser
	for _, f := range zr.File {
		if f.Name == docxBody {
			body, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("open %s: %w", docxBody, err)
			}
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("%s not found", docxBody)
	}
	defer body.Close()

	paragraphs, rows, err := parseDocumentXML(body)
	if err != nil {
		return "", err
	}
	return strings.Join(append(paragraphs, rows...), "\n\n"), nil
}

// parseDocumentXML walks WordprocessingML. Paragraphs inside tables belong
// to their cell, not to the top-level paragraph list.
func parseDocumentXML(r io.Reader) (paragraphs, rows []string, err error) {
	dec := xml.NewDecoder(r)

	var (
		tableDepth int
		para       strings.Builder
		cell       strings.Builder
		cells      []string
		inPara     bool
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", docxBody, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth == 1 {
					cells = cells[:0]
				}
			case "tc":
				if tableDepth == 1 {
					cell.Reset()
				}
			case "p":
				inPara = true
				para.Reset()
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				inPara = false
				text := strings.TrimSpace(para.String())
				if tableDepth == 0 {
					if text != "" {
						paragraphs = append(paragraphs, text)
					}
				} else if text != "" {
					if cell.Len() > 0 {
						cell.WriteByte('\n')
					}
					cell.WriteString(text)
				}
			case "tc":
				if tableDepth == 1 {
					if text := strings.TrimSpace(cell.String()); text != "" {
						cells = append(cells, text)
					}
				}
			case "tr":
				if tableDepth == 1 && len(cells) > 0 {
					rows = append(rows, strings.Join(cells, " | "))
				}
			case "tbl":
				tableDepth--
			}
		case xml.CharData:
			if inPara && inText {
				para.Write(t)
			}
		}
	}
	return paragraphs, rows, nil
}
