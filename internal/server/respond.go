package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/VitaminP8/postery-admin/internal/apperr"
	"github.com/VitaminP8/postery-admin/internal/export"
	"github.com/VitaminP8/postery-admin/internal/media"
	"github.com/VitaminP8/postery-admin/internal/resource"
	"github.com/VitaminP8/postery-admin/internal/user"
)

const (
	maxFormMemory = 8 << 20
	maxJSONBody   = 1 << 20
	// лимит чтения файла, если у поля не задан свой
	defaultUploadLimit = 10 << 20
)

// badRequest - запрос не удалось разобрать
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string {
	return e.msg
}

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("could not write response: %v", err)
	}
}

// writeError maps the error taxonomy onto status codes. Field errors are
// reported per field, everything unexpected is logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if fields := apperr.FieldErrors(err); fields != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Message: "The given data was invalid.",
			Errors:  fields,
		})
		return
	}

	var br *badRequest
	switch {
	case apperr.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: err.Error()})
	case errors.Is(err, user.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: err.Error()})
	case errors.As(err, &br), errors.Is(err, export.ErrNothingSelected):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	default:
		log.Printf("%s %s failed [%s]: %v", r.Method, r.URL.Path, w.Header().Get(requestIDHeader), err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Server Error"})
	}
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, &badRequest{msg: fmt.Sprintf("invalid id %q", r.PathValue("id"))}
	}
	return uint(id), nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return &badRequest{msg: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}

// readInput собирает форму из multipart, urlencoded или JSON тела.
// Берутся только объявленные поля, файлы читаются с запасом в один байт
// сверх лимита поля, чтобы валидация увидела превышение.
func readInput(r *http.Request, fields []resource.Field) (resource.Input, error) {
	in := resource.Input{Values: map[string]string{}, Files: map[string]*media.Upload{}}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]any
		if err := decodeJSON(r, &body); err != nil {
			return in, err
		}
		for _, f := range fields {
			if v, ok := body[f.Name]; ok && f.Kind != resource.KindFile {
				in.Values[f.Name] = jsonValue(v)
			}
		}
		return in, nil
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return in, &badRequest{msg: fmt.Sprintf("invalid form: %v", err)}
	}

	for _, f := range fields {
		if f.Kind != resource.KindFile {
			if vals, ok := r.PostForm[f.Name]; ok && len(vals) > 0 {
				in.Values[f.Name] = vals[0]
			}
			continue
		}

		file, header, err := r.FormFile(f.Name)
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			continue
		}
		if err != nil {
			return in, &badRequest{msg: fmt.Sprintf("invalid upload %s: %v", f.Name, err)}
		}

		limit := int64(defaultUploadLimit)
		if f.MaxSizeKB > 0 {
			limit = f.MaxSizeKB * 1024
		}
		up, err := media.ReadUpload(header.Filename, file, limit)
		file.Close()
		if err != nil {
			return in, err
		}
		in.Files[f.Name] = up
	}
	return in, nil
}

func jsonValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
