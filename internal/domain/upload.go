package domain

import (
	"path/filepath"
	"strings"
)

// SupportedExtensions are the document types accepted for upload.
var SupportedExtensions = []string{".pdf", ".docx", ".pptx", ".txt"}

// UploadExtension returns the lower-cased extension of fileName, or an
// UnsupportedFormatError if the type is not accepted.
func UploadExtension(fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, allowed := range SupportedExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return ext, &UnsupportedFormatError{Extension: ext}
}
