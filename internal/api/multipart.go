package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/padup/padup/internal/errors"
)

// Form is a multipart/form-data body. Fields and files are written in the
// order they were added.
type Form struct {
	parts []formPart
}

type formPart struct {
	name     string
	value    string
	filename string
	content  func() (io.ReadCloser, error)
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Field adds a text field.
func (f *Form) Field(name, value string) *Form {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

// Optional adds a text field only when value is not empty. The API treats
// a missing field as unset but rejects an empty one.
func (f *Form) Optional(name, value string) *Form {
	if value == "" {
		return f
	}
	return f.Field(name, value)
}

// File adds a file part read from path when the form is encoded.
func (f *Form) File(name, path string) *Form {
	f.parts = append(f.parts, formPart{
		name:     name,
		filename: filepath.Base(path),
		content:  func() (io.ReadCloser, error) { return os.Open(path) },
	})
	return f
}

// FileBytes adds a file part with in-memory content.
func (f *Form) FileBytes(name, filename string, data []byte) *Form {
	f.parts = append(f.parts, formPart{
		name:     name,
		filename: filename,
		content:  func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	})
	return f
}

// Encode renders the form and returns the body with its Content-Type.
func (f *Form) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range f.parts {
		if p.content == nil {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", errors.Wrap(errors.ErrCodeAPIRequest, "failed to encode form field "+p.name, err)
			}
			continue
		}
		if err := writeFile(w, p); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeAPIRequest, "failed to encode form", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, p formPart) error {
	rc, err := p.content()
	if err != nil {
		return errors.Wrap(errors.ErrCodeValidationInvalid, fmt.Sprintf("cannot read %s file", p.name), err).
			WithSuggestion("Check that the file exists and is readable")
	}
	defer rc.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(p.name), escapeQuotes(p.filename)))
	h.Set("Content-Type", contentTypeFor(p.filename))

	part, err := w.CreatePart(h)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAPIRequest, "failed to encode form file "+p.name, err)
	}
	if _, err := io.Copy(part, rc); err != nil {
		return errors.Wrap(errors.ErrCodeAPIRequest, "failed to encode form file "+p.name, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
