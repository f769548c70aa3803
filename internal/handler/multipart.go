package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"portfolio-api/internal/util"
	"portfolio-api/pkg/apierror"
)

const multipartMemory = 8 << 20

// formDecoder reads JSON bodies and multipart forms into the same input
// structs, so content routes accept either encoding.
type formDecoder struct {
	maxUploadSize int64
}

// decode fills dst from the request. For multipart forms it also returns
// the bytes of fileField, if one was sent.
func (d formDecoder) decode(w http.ResponseWriter, r *http.Request, dst any, fileField string) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return nil, decodeJSON(w, r, dst)
	}

	if err := d.parse(w, r); err != nil {
		return nil, err
	}
	if err := decodeForm(r.MultipartForm.Value, dst); err != nil {
		return nil, err
	}

	if fileField == "" {
		return nil, nil
	}
	return d.file(r, fileField)
}

// single reads one required image field from a multipart form.
func (d formDecoder) single(w http.ResponseWriter, r *http.Request, field string) ([]byte, error) {
	if err := d.parse(w, r); err != nil {
		return nil, err
	}
	data, err := d.file(r, field)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, apierror.BadRequest("No file uploaded", field)
	}
	return data, nil
}

func (d formDecoder) parse(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, d.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errFileTooLarge(d.maxUploadSize)
		}
		return apierror.BadRequest("Invalid multipart form", err.Error())
	}
	return nil
}

func errFileTooLarge(limit int64) error {
	return apierror.New("FILE_TOO_LARGE", "File too large", fmt.Sprintf("limit is %d bytes", limit), http.StatusRequestEntityTooLarge)
}

func (d formDecoder) file(r *http.Request, field string) ([]byte, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apierror.BadRequest("Invalid file upload", err.Error())
	}
	defer f.Close()

	if header.Size > d.maxUploadSize {
		return nil, errFileTooLarge(d.maxUploadSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, d.maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > d.maxUploadSize {
		return nil, errFileTooLarge(d.maxUploadSize)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if !util.IsUploadableImage(util.DetectMIME(data)) {
		return nil, apierror.BadRequest("Only image files are allowed", header.Filename)
	}
	return data, nil
}

// decodeForm converts form values to JSON and unmarshals them. JSON arrays
// and booleans pass through unquoted so technologies='["Go","SQL"]' and
// isFeatured=true reach their typed fields.
func decodeForm(values map[string][]string, dst any) error {
	doc := make(map[string]json.RawMessage, len(values))
	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		doc[key] = formValue(vs[0])
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apierror.BadRequest("Invalid form field", err.Error())
	}
	return nil
}

func formValue(v string) json.RawMessage {
	trimmed := strings.TrimSpace(v)
	if strings.HasPrefix(trimmed, "[") && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	switch trimmed {
	case "true", "false":
		return json.RawMessage(trimmed)
	}
	encoded, _ := json.Marshal(v)
	return encoded
}
