package util

import (
	"path/filepath"
	"strings"
)

const (
	MediaTypePDF      = "application/pdf"
	MediaTypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeText     = "text/plain"
	MediaTypeMarkdown = "text/markdown"
	MediaTypeCSV      = "text/csv"
	MediaTypeZip      = "application/zip"
)

var extensionTypes = map[string]string{
	".pdf":      MediaTypePDF,
	".docx":     MediaTypeDOCX,
	".txt":      MediaTypeText,
	".md":       MediaTypeMarkdown,
	".markdown": MediaTypeMarkdown,
	".csv":      MediaTypeCSV,
}

// NormalizeMediaType lowercases the declared type and strips parameters.
// Generic declarations (empty, octet-stream, zip) fall back to the file extension.
func NormalizeMediaType(declared, fileName string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	switch clean {
	case "", "application/octet-stream", MediaTypeZip, "application/x-zip-compressed":
		if mapped, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
			return mapped
		}
		if clean == "application/x-zip-compressed" {
			return MediaTypeZip
		}
	case "text/x-markdown":
		return MediaTypeMarkdown
	}
	return clean
}
