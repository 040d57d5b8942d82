package usecase

import "context"

type VideoUC interface {
	UploadVideo(ctx context.Context, req *UploadVideoReq) (*UploadVideoRes, error)
	ListVideos(ctx context.Context, ownerID string) ([]VideoInfo, error)
	GetVideo(ctx context.Context, ownerID string, videoID int64) (*VideoInfo, error)
	DeleteVideo(ctx context.Context, ownerID string, videoID int64) (uint64, error)
	StreamURL(ctx context.Context, ownerID string, videoID int64) (string, error)
}

type SearchUC interface {
	SearchGlobal(ctx context.Context, req *GlobalSearchReq) ([]GlobalSearchResult, error)
	SearchInVideo(ctx context.Context, req *InVideoSearchReq) ([]InVideoSearchResult, error)
}

type IndexerUC interface {
	// IndexVideo прогоняет видео через пайплайн индексации:
	// кадры → эмбеддинги → векторный индекс, с ведением статуса.
	IndexVideo(ctx context.Context, videoID int64, localPath string) error
}
