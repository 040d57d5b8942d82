package e

import "fmt"

var (
	// Ошибки пайплайна индексации
	ErrUnreadableVideo   = fmt.Errorf("video stream is unreadable")
	ErrNoFramesExtracted = fmt.Errorf("no frames extracted from video")
	ErrEncodingFailure   = fmt.Errorf("embedding encoder failure")
	ErrEmptyVectors      = fmt.Errorf("empty vectors")
	ErrVectorDimension   = fmt.Errorf("unexpected vector dimension")
	ErrIndexUnavailable  = fmt.Errorf("vector index unavailable")
	ErrStatusConflict    = fmt.Errorf("invalid indexing status transition")
	ErrIndexingInFlight  = fmt.Errorf("indexing already in progress")

	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// 400 Bad Request
	ErrEmptyQuery           = fmt.Errorf("search query is required")
	ErrInvalidLimit         = fmt.Errorf("limit must be positive")
	ErrNotAVideo            = fmt.Errorf("file must be a video")
	ErrNoFile               = fmt.Errorf("no video file provided")
	ErrFileTooLarge         = fmt.Errorf("file is too large")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	// 401 / 404 / 500
	ErrUnauthorized        = fmt.Errorf("authorization required")
	ErrVideoNotFound       = fmt.Errorf("video not found")
	ErrVideoNotReady       = fmt.Errorf("video is not ready for search")
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
