package usecase

import (
	"context"

	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
)

type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) (*domain.Video, error)
	GetByID(ctx context.Context, videoID int64) (*domain.Video, error)
	GetByOwner(ctx context.Context, ownerID string, videoID int64) (*domain.Video, error)
	// GetByOwnerForUpdate читает видео в рамках транзакции из контекста,
	// блокируя строку до коммита.
	GetByOwnerForUpdate(ctx context.Context, ownerID string, videoID int64) (*domain.Video, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Video, error)
	// GetCompletedVideos возвращает проиндексированные видео владельца —
	// кандидатов глобального поиска.
	GetCompletedVideos(ctx context.Context, ownerID string) ([]VideoRef, error)
	// CompareAndSetStatus атомарно переводит статус from → to.
	// Возвращает false, если текущий статус уже не from.
	CompareAndSetStatus(ctx context.Context, videoID int64, from, to domain.IndexingStatus) (bool, error)
	SetThumbnail(ctx context.Context, videoID int64, thumbnailKey string) error
	Delete(ctx context.Context, videoID int64) error
}

// FrameIndexRepository — адаптер векторного индекса эмбеддингов кадров.
type FrameIndexRepository interface {
	// Insert записывает эмбеддинги одним логическим батчем. После возврата
	// записи видимы для Search (запись с flush/wait).
	Insert(ctx context.Context, records []domain.FrameEmbedding) error
	// Search возвращает до k ближайших кадров по косинусной близости,
	// строго по убыванию similarity; при равенстве — по возрастанию frame_number.
	Search(ctx context.Context, vector []float32, k uint64, videoIDs []int64) ([]domain.FrameHit, error)
	// DeleteByVideo удаляет все записи видео и возвращает их число.
	// Для видео без записей возвращает 0 без ошибки.
	DeleteByVideo(ctx context.Context, videoID int64) (uint64, error)
}

// BlobRepository — хранилище исходных видео и превью.
type BlobRepository interface {
	Upload(ctx context.Context, objectKey string, data []byte, contentType string) error
	DownloadToFile(ctx context.Context, objectKey string, localPath string) error
	Delete(ctx context.Context, objectKey string) error
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

type CacheRepository interface {
	GetVideo(ctx context.Context, ownerID string, videoID int64) (*VideoInfo, error)
	SetVideo(ctx context.Context, ownerID string, info *VideoInfo) error
	DeleteVideos(ctx context.Context, ownerID string, ids []int64) error
}
