package usecase

import (
	"time"

	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
)

// VIDEO USECASE

// UploadVideoReq — запрос на загрузку видео.
type UploadVideoReq struct {
	OwnerID     string
	Title       string
	FileName    string
	ContentType string // Content-Type из multipart (video/mp4)
	Data        []byte
}

// UploadVideoRes — результат загрузки: идентификатор созданной записи.
type UploadVideoRes struct {
	VideoID int64
}

// VideoInfo — DTO с информацией о видео для внешнего использования.
type VideoInfo struct {
	ID             int64
	Title          string
	ThumbnailURL   string // presigned-ссылка; пустая, если превью еще нет
	IndexingStatus domain.IndexingStatus
	CreatedAt      time.Time
}

// VideoRef — кандидат глобального поиска: идентификатор и заголовок.
type VideoRef struct {
	ID    int64
	Title string
}

// SEARCH USECASE

// GlobalSearchReq — поиск по всем проиндексированным видео владельца.
type GlobalSearchReq struct {
	OwnerID string
	Query   string
	Limit   int
}

// GlobalSearchResult — лучший кадр одного видео-кандидата.
type GlobalSearchResult struct {
	VideoID      int64
	Title        string
	Similarity   float32
	TimestampSec float64
	FrameNumber  int
}

// InVideoSearchReq — поиск внутри одного видео.
type InVideoSearchReq struct {
	VideoID int64
	Query   string
	Limit   int
}

type InVideoSearchResult struct {
	TimestampSec float64
	FrameNumber  int
	Similarity   float32
}

// EVENTS

const (
	EventVideoUploaded  = "video.uploaded"
	EventVideoCompleted = "video.indexing.completed"
	EventVideoFailed    = "video.indexing.failed"
	EventVideoDeleted   = "video.deleted"
)

// VideoEvent — событие жизненного цикла видео для шины сообщений.
type VideoEvent struct {
	EventID   string
	Type      string
	VideoID   int64
	OwnerID   string
	Timestamp int64
}

// MAPPERS

func NewUploadVideoReq(ownerID, title, fileName, contentType string, data []byte) *UploadVideoReq {
	return &UploadVideoReq{
		OwnerID:     ownerID,
		Title:       title,
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
	}
}

func NewVideoInfo(video *domain.Video, thumbnailURL string) *VideoInfo {
	return &VideoInfo{
		ID:             video.ID,
		Title:          video.Title,
		ThumbnailURL:   thumbnailURL,
		IndexingStatus: video.IndexingStatus,
		CreatedAt:      video.CreatedAt,
	}
}

func NewGlobalSearchResult(ref VideoRef, hit domain.FrameHit) GlobalSearchResult {
	return GlobalSearchResult{
		VideoID:      ref.ID,
		Title:        ref.Title,
		Similarity:   hit.Similarity,
		TimestampSec: hit.TimestampSec,
		FrameNumber:  hit.FrameNumber,
	}
}

func NewInVideoSearchResult(hit domain.FrameHit) InVideoSearchResult {
	return InVideoSearchResult{
		TimestampSec: hit.TimestampSec,
		FrameNumber:  hit.FrameNumber,
		Similarity:   hit.Similarity,
	}
}
