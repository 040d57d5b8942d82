package domain

import "time"

// IndexingStatus — стадия жизненного цикла поискового индекса видео.
type IndexingStatus string

const (
	StatusPending   IndexingStatus = "PENDING"
	StatusIndexing  IndexingStatus = "INDEXING"
	StatusCompleted IndexingStatus = "COMPLETED"
	StatusFailed    IndexingStatus = "FAILED"
)

// CanTransition проверяет допустимость перехода статуса.
// PENDING → INDEXING → {COMPLETED, FAILED}; повторная индексация
// возможна только из FAILED (после очистки записей индекса).
func (s IndexingStatus) CanTransition(to IndexingStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusIndexing
	case StatusIndexing:
		return to == StatusCompleted || to == StatusFailed
	case StatusFailed:
		return to == StatusIndexing
	default:
		return false
	}
}

// Valid сообщает, известен ли статус.
func (s IndexingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusIndexing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Video описывает загруженное видео
type Video struct {
	ID             int64
	OwnerID        string
	Title          string
	ObjectKey      string // ключ исходного файла в MinIO
	ThumbnailKey   *string
	IndexingStatus IndexingStatus
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

func NewVideo(ownerID string, title string, objectKey string) *Video {
	return &Video{
		OwnerID:        ownerID,
		Title:          title,
		ObjectKey:      objectKey,
		IndexingStatus: StatusPending,
	}
}
