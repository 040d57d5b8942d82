package http

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
)

func TestToHTTPResponse(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{e.ErrStatusBadRequest, http.StatusBadRequest},
		{e.ErrExpectedMultipart, http.StatusBadRequest},
		{e.ErrNoFile, http.StatusBadRequest},
		{e.ErrEmptyQuery, http.StatusBadRequest},
		{e.ErrInvalidLimit, http.StatusBadRequest},
		{e.ErrUnauthorized, http.StatusUnauthorized},
		{e.ErrVideoNotFound, http.StatusNotFound},
		{e.ErrVideoNotReady, http.StatusConflict},
		{e.ErrIndexingInFlight, http.StatusConflict},
		{e.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{e.ErrNotAVideo, http.StatusUnsupportedMediaType},
		{e.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{e.ErrIndexUnavailable, http.StatusServiceUnavailable},
		{e.ErrEncodingFailure, http.StatusServiceUnavailable},
		{fmt.Errorf("private detail"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		code, msg := ToHTTPResponse(tt.err)
		if code != tt.code {
			t.Errorf("%v: code = %d, want %d", tt.err, code, tt.code)
		}
		if code == http.StatusInternalServerError && msg != e.ErrInternalServerError.Error() {
			t.Errorf("%v: internal error must not leak details, got %q", tt.err, msg)
		}
	}
}

// Обернутые ошибки отображаются так же, как и сами сентинелы.
func TestToHTTPResponseWrapped(t *testing.T) {
	err := e.Wrap("SearchUseCase.SearchGlobal", e.Wrap("qdrant query", e.ErrIndexUnavailable))
	code, _ := ToHTTPResponse(err)
	if code != http.StatusServiceUnavailable {
		t.Errorf("wrapped ErrIndexUnavailable: code = %d, want 503", code)
	}
}

func multipartUpload(t *testing.T, field, filename, contentType string, data []byte, title string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if title != "" {
		if err := w.WriteField("title", title); err != nil {
			t.Fatal(err)
		}
	}

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestParseVideoUpload(t *testing.T) {
	req := multipartUpload(t, "file", "holiday.mp4", "video/mp4", []byte{0x00, 0x01}, "")
	if err := ensureMultipartForm(req, 32<<20); err != nil {
		t.Fatal(err)
	}

	upload, err := parseVideoUpload(req, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if upload.Title != "holiday" {
		t.Errorf("title = %q, want filename without extension", upload.Title)
	}
	if upload.ContentType != "video/mp4" {
		t.Errorf("content type = %q, want video/mp4", upload.ContentType)
	}
	if upload.FileName != "holiday.mp4" {
		t.Errorf("filename = %q", upload.FileName)
	}
}

func TestParseVideoUploadExplicitTitle(t *testing.T) {
	req := multipartUpload(t, "file", "a.mp4", "video/mp4", []byte{0x00}, "день рождения")
	if err := ensureMultipartForm(req, 32<<20); err != nil {
		t.Fatal(err)
	}

	upload, err := parseVideoUpload(req, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upload.Title != "день рождения" {
		t.Errorf("title = %q", upload.Title)
	}
}

func TestParseVideoUploadMissingFile(t *testing.T) {
	req := multipartUpload(t, "attachment", "a.mp4", "video/mp4", []byte{0x00}, "")
	if err := ensureMultipartForm(req, 32<<20); err != nil {
		t.Fatal(err)
	}

	if _, err := parseVideoUpload(req, 1<<20); err != e.ErrNoFile {
		t.Fatalf("got %v, want ErrNoFile", err)
	}
}

func TestParseVideoUploadTooLarge(t *testing.T) {
	req := multipartUpload(t, "file", "a.mp4", "video/mp4", make([]byte, 2048), "")
	if err := ensureMultipartForm(req, 32<<20); err != nil {
		t.Fatal(err)
	}

	if _, err := parseVideoUpload(req, 1024); !errors.Is(err, e.ErrFileTooLarge) {
		t.Fatalf("got %v, want ErrFileTooLarge", err)
	}
}

func TestEnsureMultipartFormRejectsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")

	if err := ensureMultipartForm(req, 32<<20); !errors.Is(err, e.ErrExpectedMultipart) {
		t.Fatalf("got %v, want ErrExpectedMultipart", err)
	}
}
