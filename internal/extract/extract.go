package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"assessment-backend/internal/shared/errs"
	"assessment-backend/internal/shared/storage/object"
	"assessment-backend/internal/shared/util"
	"assessment-backend/internal/uploads"
)

// DefaultMinChars is the shortest text accepted as a quiz source.
const DefaultMinChars = 20

// Status describes the outcome of an extraction.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnsupported Status = "unsupported-type"
	StatusEmpty       Status = "empty"
)

// Content is plain text pulled from an upload. It lives only for the
// duration of a pipeline run.
type Content struct {
	DocumentID string
	Text       string
	Status     Status
}

// Extractor converts stored uploads into plain text.
type Extractor struct {
	Store    object.ObjectStore
	MinChars int
}

// Extract reads the document from storage and decodes it by its declared media type.
// Unsupported and empty documents return a Content with the matching status
// alongside ErrUnsupportedType or ErrEmptyContent.
func (e *Extractor) Extract(ctx context.Context, doc *uploads.Document) (Content, error) {
	if err := ctx.Err(); err != nil {
		return Content{}, err
	}

	body, err := e.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		return Content{}, fmt.Errorf("extract document=%s: open: %w", doc.ID, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return Content{}, fmt.Errorf("extract document=%s: read: %w", doc.ID, err)
	}

	text, err := FromBytes(raw, doc.MediaType, e.MinChars)
	content := Content{DocumentID: doc.ID, Text: text, Status: StatusOK}
	switch {
	case errors.Is(err, errs.ErrUnsupportedType):
		content.Status = StatusUnsupported
	case errors.Is(err, errs.ErrEmptyContent):
		content.Status = StatusEmpty
	}
	if err != nil {
		return content, fmt.Errorf("extract document=%s: %w", doc.ID, err)
	}
	return content, nil
}

// FromBytes extracts normalized text from an in-memory payload.
func FromBytes(data []byte, mediaType string, minChars int) (string, error) {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}

	var (
		text string
		err  error
	)
	switch normalized := normalizeMediaType(mediaType, data); normalized {
	case util.MediaTypeText, util.MediaTypeMarkdown, util.MediaTypeCSV:
		text = decodeText(data)
	case util.MediaTypePDF:
		text, err = extractPDF(data)
	case util.MediaTypeDOCX:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", errs.ErrUnsupportedType, normalized)
	}
	if err != nil {
		// A document that cannot be decoded yields no usable text.
		return "", fmt.Errorf("%w: decode %s: %v", errs.ErrEmptyContent, mediaType, err)
	}

	text = normalizeWhitespace(text)
	if utf8.RuneCountInString(text) < minChars {
		return text, fmt.Errorf("%w: %d characters, need %d", errs.ErrEmptyContent, utf8.RuneCountInString(text), minChars)
	}
	return text, nil
}

func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed streams.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("pdf decoder: %v", rec)
		}
	}()
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	return stripDocxXML(rc)
}

// stripDocxXML keeps character data and turns paragraph, break and tab
// elements into whitespace.
func stripDocxXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		}
	}
	return buf.String(), nil
}

// normalizeMediaType resolves generic zip declarations by looking inside the archive.
func normalizeMediaType(mediaType string, data []byte) string {
	clean := util.NormalizeMediaType(mediaType, "")
	if clean != util.MediaTypeZip {
		return clean
	}
	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}
	return clean
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return util.MediaTypeDOCX
		}
	}
	return ""
}

// normalizeWhitespace trims lines and collapses runs of blank lines.
func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t ")
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
