package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"

	domainerrors "coderr/internal/domain/errors"
	"coderr/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	msgInvalidInteger = "A valid integer is required."
	msgInvalidList    = "Expected a list of items."
	msgInvalidString  = "Not a valid string."
)

// payload is a request body read as JSON or as a form, addressed by key.
// Partial updates need to know which keys were sent, which struct binding loses.
type payload struct {
	fields map[string]json.RawMessage
	form   map[string][]string
	files  map[string][]*multipart.FileHeader
}

func readPayload(c echo.Context) (*payload, error) {
	req := c.Request()
	contentType := req.Header.Get(echo.HeaderContentType)

	switch {
	case strings.HasPrefix(contentType, echo.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, domainerrors.NewNonFieldError("Multipart form parse error.")
		}

		return &payload{form: form.Value, files: form.File}, nil
	case strings.HasPrefix(contentType, echo.MIMEApplicationForm):
		values, err := c.FormParams()
		if err != nil {
			return nil, domainerrors.NewNonFieldError("Form parse error.")
		}

		return &payload{form: values}, nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read request body")
	}

	p := &payload{fields: map[string]json.RawMessage{}}
	if len(bytes.TrimSpace(body)) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(body, &p.fields); err != nil {
		return nil, domainerrors.NewNonFieldError("JSON parse error: expected an object.")
	}

	return p, nil
}

// Has reports whether the key was sent, as a field or as a file part.
func (p *payload) Has(key string) bool {
	if _, ok := p.fields[key]; ok {
		return true
	}
	if _, ok := p.form[key]; ok {
		return true
	}
	_, ok := p.files[key]

	return ok
}

// Keys returns every sent key in sorted order.
func (p *payload) Keys() []string {
	seen := map[string]bool{}
	for k := range p.fields {
		seen[k] = true
	}
	for k := range p.form {
		seen[k] = true
	}
	for k := range p.files {
		seen[k] = true
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// IsEmpty reports whether the key was sent as null or as an empty value.
func (p *payload) IsEmpty(key string) bool {
	if raw, ok := p.fields[key]; ok {
		trimmed := strings.TrimSpace(string(raw))

		return trimmed == "null" || trimmed == `""`
	}
	if values, ok := p.form[key]; ok {
		return len(values) == 0 || values[0] == ""
	}

	return false
}

// Text returns a sent value as text. JSON strings are unquoted, null becomes "",
// and other JSON scalars keep their literal form, so type checks stay with the use case.
func (p *payload) Text(key string) *string {
	if raw, ok := p.fields[key]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return &s
		}
		text := strings.TrimSpace(string(raw))
		if text == "null" {
			text = ""
		}

		return &text
	}
	if values, ok := p.form[key]; ok {
		text := ""
		if len(values) > 0 {
			text = values[0]
		}

		return &text
	}

	return nil
}

// String returns a sent string value, recording an error for non-string JSON.
func (p *payload) String(key string, errs domainerrors.FieldErrors) *string {
	if raw, ok := p.fields[key]; ok {
		var s *string
		if err := json.Unmarshal(raw, &s); err != nil {
			errs.Add(key, msgInvalidString)

			return nil
		}
		if s == nil {
			empty := ""

			return &empty
		}

		return s
	}

	return p.Text(key)
}

// Int returns a sent integer. Numeric strings are accepted.
func (p *payload) Int(key string, errs domainerrors.FieldErrors) *int {
	text := p.Text(key)
	if text == nil {
		return nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(*text))
	if err != nil {
		errs.Add(key, msgInvalidInteger)

		return nil
	}

	return &n
}

// Decode unmarshals a structured value. Form parts carry it as a JSON string.
func (p *payload) Decode(key string, target any) error {
	var raw []byte
	switch {
	case p.fields[key] != nil:
		raw = p.fields[key]
		// Clients sending JSON sometimes still encode nested values as a string.
		var nested string
		if json.Unmarshal(raw, &nested) == nil {
			raw = []byte(nested)
		}
	case p.form[key] != nil:
		text := p.Text(key)
		raw = []byte(*text)
	default:
		return nil
	}

	return errors.WithStack(json.Unmarshal(raw, target))
}

// Upload opens a file part. It returns nil when the key is not a file.
// The returned closer must be called once the upload has been consumed.
func (p *payload) Upload(key string) (*service.Upload, func(), error) {
	headers := p.files[key]
	if len(headers) == 0 {
		return nil, func() {}, nil
	}

	header := headers[0]
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, errors.Wrap(err, "failed to open upload")
	}

	upload := &service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
		Size:        header.Size,
		Content:     file,
	}

	return upload, func() { _ = file.Close() }, nil
}

// pathID parses a positive integer path parameter. Anything else cannot name a resource.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.ErrNotFound
	}

	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(c echo.Context, name string, errs domainerrors.FieldErrors) *int {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(name, "Enter a number.")

		return nil
	}

	return &n
}

// queryID parses an optional id query parameter.
func queryID(c echo.Context, name string, errs domainerrors.FieldErrors) *int64 {
	n := queryInt(c, name, errs)
	if n == nil {
		return nil
	}
	id := int64(*n)

	return &id
}

// mergeValidation folds the field map of a validation error into errs and returns other errors unchanged.
func mergeValidation(errs domainerrors.FieldErrors, err error) error {
	if err == nil {
		return nil
	}

	var validationErr *domainerrors.ValidationError
	if errors.As(err, &validationErr) {
		errs.Merge("", validationErr.Fields())

		return nil
	}

	return err
}
