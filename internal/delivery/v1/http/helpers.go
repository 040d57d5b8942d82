package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// VideoUpload — разобранное multipart-содержимое запроса на загрузку.
type VideoUpload struct {
	Title       string
	FileName    string
	ContentType string
	Data        []byte
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ToHTTPResponse переводит ошибку бизнес-логики в HTTP-код и сообщение.
// Неизвестные ошибки не раскрываются клиенту.
func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, e.ErrExpectedMultipart.Error()
	case errors.Is(err, e.ErrNoFile):
		return http.StatusBadRequest, e.ErrNoFile.Error()
	case errors.Is(err, e.ErrEmptyQuery):
		return http.StatusBadRequest, e.ErrEmptyQuery.Error()
	case errors.Is(err, e.ErrInvalidLimit):
		return http.StatusBadRequest, e.ErrInvalidLimit.Error()
	case errors.Is(err, e.ErrUnauthorized):
		return http.StatusUnauthorized, e.ErrUnauthorized.Error()
	case errors.Is(err, e.ErrVideoNotFound):
		return http.StatusNotFound, e.ErrVideoNotFound.Error()
	case errors.Is(err, e.ErrVideoNotReady):
		return http.StatusConflict, e.ErrVideoNotReady.Error()
	case errors.Is(err, e.ErrIndexingInFlight):
		return http.StatusConflict, e.ErrIndexingInFlight.Error()
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error()
	case errors.Is(err, e.ErrNotAVideo):
		return http.StatusUnsupportedMediaType, e.ErrNotAVideo.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrIndexUnavailable):
		return http.StatusServiceUnavailable, e.ErrIndexUnavailable.Error()
	case errors.Is(err, e.ErrEncodingFailure):
		return http.StatusServiceUnavailable, e.ErrEncodingFailure.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	return r.ParseMultipartForm(maxMemory)
}

// parseVideoUpload читает файл из поля "file" и метаданные формы.
// Заголовок по умолчанию — имя файла без расширения.
func parseVideoUpload(r *http.Request, maxFileSize int64) (*VideoUpload, error) {
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		return nil, e.ErrNoFile
	}

	fh := files[0]
	data, contentType, err := readFile(fh, maxFileSize)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
	}

	return &VideoUpload{
		Title:       title,
		FileName:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}

	return data, contentType, nil
}

// videoIDParam извлекает идентификатор видео из пути запроса.
func videoIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, e.ErrStatusBadRequest
	}
	return id, nil
}
