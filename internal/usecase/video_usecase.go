package usecase

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
	"github.com/tewff14/searh-your-moments-webapp/pkg/keylock"
	"github.com/tewff14/searh-your-moments-webapp/pkg/logger"
)

// dbTx — операции над открытой транзакцией, видимые usecase-слою.
type dbTx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	IsActive() bool
}

// beginTxFunc открывает транзакцию и кладет ее в контекст для репозиториев.
type beginTxFunc func(ctx context.Context) (context.Context, dbTx, error)

// VideoUseCase реализует управление загруженными видео.
type VideoUseCase struct {
	videoRepo  VideoRepository
	frameIndex FrameIndexRepository
	blobRepo   BlobRepository
	cacheRepo  CacheRepository
	beginTx    beginTxFunc
	dispatcher IndexDispatcher
	producer   EventProducer
	locks      *keylock.KeyLock
	logger     logger.Logger
}

func NewVideoUC(
	videoRepo VideoRepository,
	frameIndex FrameIndexRepository,
	blobRepo BlobRepository,
	cacheRepo CacheRepository,
	dbPool transaction.Transactional,
	dispatcher IndexDispatcher,
	producer EventProducer,
	locks *keylock.KeyLock,
	logger logger.Logger,
) *VideoUseCase {
	return &VideoUseCase{
		videoRepo:  videoRepo,
		frameIndex: frameIndex,
		blobRepo:   blobRepo,
		cacheRepo:  cacheRepo,
		beginTx: func(ctx context.Context) (context.Context, dbTx, error) {
			ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, dbPool)
			if err != nil {
				return ctx, nil, err
			}
			return context.WithValue(ctx, "tx", tx.Transaction()), tx, nil
		},
		dispatcher: dispatcher,
		producer:   producer,
		locks:      locks,
		logger:     logger,
	}
}

// UploadVideo сохраняет исходный файл в MinIO, создает запись со статусом
// PENDING и ставит фоновую задачу индексации (fire-and-forget).
func (v *VideoUseCase) UploadVideo(ctx context.Context, req *UploadVideoReq) (*UploadVideoRes, error) {
	const op = "VideoUseCase.UploadVideo"

	if err := validateUpload(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	ext := filepath.Ext(req.FileName)
	if ext == "" {
		ext = ".mp4"
	}
	objectKey := "videos/" + req.OwnerID + "/" + uuid.NewString() + ext

	if err := v.blobRepo.Upload(ctx, objectKey, req.Data, req.ContentType); err != nil {
		return nil, e.Wrap(op, err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = req.FileName
	}

	video, err := v.videoRepo.Create(ctx, domain.NewVideo(req.OwnerID, title, objectKey))
	if err != nil {
		// Запись не создана — загруженный объект остался бы сиротой.
		if delErr := v.blobRepo.Delete(ctx, objectKey); delErr != nil {
			v.logger.Warnf("failed to clean up orphaned object %s: %v", objectKey, delErr)
		}
		return nil, e.Wrap(op, err)
	}

	v.dispatcher.Dispatch(video)
	v.publishEvent(ctx, video, EventVideoUploaded)

	return &UploadVideoRes{VideoID: video.ID}, nil
}

// ListVideos возвращает все видео владельца, новые первыми.
func (v *VideoUseCase) ListVideos(ctx context.Context, ownerID string) ([]VideoInfo, error) {
	const op = "VideoUseCase.ListVideos"

	videos, err := v.videoRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	result := make([]VideoInfo, 0, len(videos))
	for i := range videos {
		result = append(result, *NewVideoInfo(&videos[i], v.thumbnailURL(ctx, &videos[i])))
	}

	return result, nil
}

// GetVideo возвращает информацию об одном видео владельца, используя кэш.
func (v *VideoUseCase) GetVideo(ctx context.Context, ownerID string, videoID int64) (*VideoInfo, error) {
	const op = "VideoUseCase.GetVideo"

	if cached, err := v.cacheRepo.GetVideo(ctx, ownerID, videoID); err == nil && cached != nil {
		return cached, nil
	}

	video, err := v.videoRepo.GetByOwner(ctx, ownerID, videoID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	info := NewVideoInfo(video, v.thumbnailURL(ctx, video))

	// Фоновое обновление кэша, как и при чтении — промах не критичен.
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := v.cacheRepo.SetVideo(bgCtx, ownerID, info); err != nil {
			v.logger.Warnf("failed to cache video %d in background: %v", videoID, err)
		}
	}()

	return info, nil
}

// DeleteVideo удаляет видео целиком: записи векторного индекса, исходный файл,
// превью и строку метаданных. Дожидается завершения идущей индексации, чтобы
// после удаления не «воскресли» осиротевшие записи. Возвращает число удаленных
// записей индекса.
func (v *VideoUseCase) DeleteVideo(ctx context.Context, ownerID string, videoID int64) (uint64, error) {
	const op = "VideoUseCase.DeleteVideo"

	v.locks.Lock(videoID)
	defer v.locks.Unlock(videoID)

	ctx, tx, err := v.beginTx(ctx)
	if err != nil {
		return 0, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()

	video, err := v.videoRepo.GetByOwnerForUpdate(ctx, ownerID, videoID)
	if err != nil {
		return 0, e.Wrap(op, err)
	}

	// Сироты недопустимы: записи индекса удаляются до коммита удаления строки.
	removed, err := v.frameIndex.DeleteByVideo(ctx, videoID)
	if err != nil {
		return 0, e.Wrap(op, err)
	}

	if err = v.videoRepo.Delete(ctx, videoID); err != nil {
		return 0, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, e.Wrap(op, err)
	}

	// Файлы в MinIO удаляются best-effort: потерянный объект хуже ошибки 500.
	if delErr := v.blobRepo.Delete(ctx, video.ObjectKey); delErr != nil {
		v.logger.Warnf("failed to delete video object %s: %v", video.ObjectKey, delErr)
	}
	if video.ThumbnailKey != nil {
		if delErr := v.blobRepo.Delete(ctx, *video.ThumbnailKey); delErr != nil {
			v.logger.Warnf("failed to delete thumbnail %s: %v", *video.ThumbnailKey, delErr)
		}
	}

	if cacheErr := v.cacheRepo.DeleteVideos(ctx, ownerID, []int64{videoID}); cacheErr != nil {
		v.logger.Warnf("failed to invalidate cache for video %d: %v", videoID, cacheErr)
	}

	v.publishEvent(ctx, video, EventVideoDeleted)
	return removed, nil
}

// StreamURL возвращает presigned-ссылку на исходный файл видео.
func (v *VideoUseCase) StreamURL(ctx context.Context, ownerID string, videoID int64) (string, error) {
	const op = "VideoUseCase.StreamURL"

	video, err := v.videoRepo.GetByOwner(ctx, ownerID, videoID)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	url, err := v.blobRepo.PresignedURL(ctx, video.ObjectKey)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return url, nil
}

// thumbnailURL генерирует presigned-ссылку на превью; отсутствие превью — не ошибка.
func (v *VideoUseCase) thumbnailURL(ctx context.Context, video *domain.Video) string {
	if video.ThumbnailKey == nil {
		return ""
	}

	url, err := v.blobRepo.PresignedURL(ctx, *video.ThumbnailKey)
	if err != nil {
		v.logger.Warnf("failed to presign thumbnail for video %d: %v", video.ID, err)
		return ""
	}

	return url
}

func (v *VideoUseCase) publishEvent(ctx context.Context, video *domain.Video, eventType string) {
	event := &VideoEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		VideoID:   video.ID,
		OwnerID:   video.OwnerID,
		Timestamp: time.Now().UTC().UnixNano(),
	}
	if err := v.producer.PublishVideoEvent(ctx, event); err != nil {
		v.logger.Warnf("failed to publish %s for video %d: %v", eventType, video.ID, err)
	}
}

func validateUpload(req *UploadVideoReq) error {
	if len(req.Data) == 0 {
		return e.ErrNoFile
	}
	if !strings.HasPrefix(req.ContentType, "video/") {
		return e.ErrNotAVideo
	}
	return nil
}
