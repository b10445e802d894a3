package http

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// MultipartFieldType distinguishes plain form fields from file parts.
type MultipartFieldType int

const (
	MultipartFieldText MultipartFieldType = iota
	MultipartFieldFile
)

// MultipartField is one part of a multipart request. A file part reads
// Content when it is set, otherwise the file at Path.
type MultipartField struct {
	Type        MultipartFieldType
	Name        string
	Value       string
	Path        string
	Filename    string
	ContentType string
	Content     []byte
}

// TextField returns a plain form field.
func TextField(name, value string) *MultipartField {
	return &MultipartField{Type: MultipartFieldText, Name: name, Value: value}
}

// FileField returns a file part with in-memory content.
func FileField(name, filename, contentType string, content []byte) *MultipartField {
	return &MultipartField{
		Type:        MultipartFieldFile,
		Name:        name,
		Filename:    filename,
		ContentType: contentType,
		Content:     content,
	}
}

// BuildMultipartBody creates a multipart form data body from multipart fields
func BuildMultipartBody(fields []*MultipartField, baseDir string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, field := range fields {
		if field.Type == MultipartFieldFile {
			if err := writeFilePart(writer, field, baseDir); err != nil {
				return nil, "", err
			}
			continue
		}

		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}

func writeFilePart(writer *multipart.Writer, field *MultipartField, baseDir string) error {
	filename := field.Filename
	var src io.Reader

	if field.Content != nil {
		src = bytes.NewReader(field.Content)
	} else {
		// Resolve file path relative to base directory
		filePath := field.Path
		if !filepath.IsAbs(filePath) && baseDir != "" {
			filePath = filepath.Join(baseDir, filePath)
		}

		if err := validatePathWithinBase(filePath, baseDir); err != nil {
			return err
		}

		file, err := os.Open(filePath)
		if err != nil {
			return err
		}
		defer file.Close()

		src = file
		if filename == "" {
			filename = filepath.Base(filePath)
		}
	}

	contentType := field.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(field.Name), escapeQuotes(filename)))
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return err
	}

	_, err = io.Copy(part, src)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// validatePathWithinBase checks that the resolved path stays within the base directory
// to prevent path traversal attacks
func validatePathWithinBase(path, baseDir string) error {
	if baseDir == "" {
		return nil
	}

	cleanBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %v", err)
	}

	cleanPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %v", err)
	}

	if !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) && cleanPath != cleanBase {
		return fmt.Errorf("path traversal detected: %s is outside allowed directory %s", path, baseDir)
	}

	return nil
}
