package cv

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"

	"github.com/KRdoubleL/cv-verification/internal/ingest"
)

// TextExtractor pulls the linear text stream out of uploaded CV files.
// Files are staged on disk because docconv converts by path.
type TextExtractor struct {
	uploadsDir string
}

func NewTextExtractor(uploadsDir string) *TextExtractor {
	return &TextExtractor{uploadsDir: uploadsDir}
}

// SupportedExt reports whether the file extension is one we can pull
// text from.
func SupportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt", ".txt":
		return true
	}
	return false
}

// ExtractText saves the uploaded file and returns its text layer.
// A document that yields no text at all is an error; everything
// downstream needs at least one line to work with.
func (t *TextExtractor) ExtractText(filename string, reader io.Reader) (string, error) {
	if err := os.MkdirAll(t.uploadsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads dir: %w", err)
	}

	filePath := filepath.Join(t.uploadsDir, filepath.Base(filename))
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	var text string

	switch ext {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt":
		res, err := docconv.ConvertPath(filePath)
		if err != nil {
			return "", &ingest.DecodeError{Format: "document", Err: err}
		}
		text = res.Body
	case ".txt":
		content, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(content)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}

	// A file with no text layer is a decode failure; nothing downstream
	// can work with an empty stream.
	if strings.TrimSpace(text) == "" {
		return "", &ingest.DecodeError{Format: "document", Err: fmt.Errorf("no extractable text in %s", filename)}
	}

	return text, nil
}
