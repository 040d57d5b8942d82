// Package tasks — фоновый запуск индексации загруженных видео.
package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tewff14/searh-your-moments-webapp/internal/cfg"
	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
	"github.com/tewff14/searh-your-moments-webapp/internal/usecase"
	"github.com/tewff14/searh-your-moments-webapp/pkg/logger"
)

// Thumbnailer извлекает JPEG-превью из локального видеофайла.
type Thumbnailer interface {
	Thumbnail(ctx context.Context, localPath string) ([]byte, error)
}

// Runner принимает задачи индексации и выполняет их в фоне с ограничением
// одновременных запусков. Ошибки индексации не всплывают: статус FAILED
// выставляет сам пайплайн, раннер только логирует.
type Runner struct {
	videoRepo usecase.VideoRepository
	blobRepo  usecase.BlobRepository
	indexer   usecase.IndexerUC
	thumbs    Thumbnailer
	cfg       *cfg.IndexerCfg
	logger    logger.Logger

	baseCtx context.Context
	sem     chan struct{}
	wg      sync.WaitGroup
}

func NewRunner(
	videoRepo usecase.VideoRepository,
	blobRepo usecase.BlobRepository,
	indexer usecase.IndexerUC,
	thumbs Thumbnailer,
	cfg *cfg.IndexerCfg,
	logger logger.Logger,
	baseCtx context.Context,
) *Runner {
	return &Runner{
		videoRepo: videoRepo,
		blobRepo:  blobRepo,
		indexer:   indexer,
		thumbs:    thumbs,
		cfg:       cfg,
		logger:    logger,
		baseCtx:   baseCtx,
		sem:       make(chan struct{}, cfg.MaxConcurrent),
	}
}

// Dispatch ставит видео в очередь на индексацию и сразу возвращается.
func (r *Runner) Dispatch(video *domain.Video) {
	r.wg.Add(1)
	go r.process(video)
}

func (r *Runner) process(video *domain.Video) {
	defer r.wg.Done()

	select {
	case r.sem <- struct{}{}:
	case <-r.baseCtx.Done():
		r.logger.Warnf("indexing of video %d skipped: shutting down", video.ID)
		return
	}
	defer func() { <-r.sem }()

	ctx := r.baseCtx

	localPath := filepath.Join(r.cfg.TempDir, fmt.Sprintf("video_%d%s", video.ID, filepath.Ext(video.ObjectKey)))
	if err := r.blobRepo.DownloadToFile(ctx, video.ObjectKey, localPath); err != nil {
		r.logger.Errorf(err, "failed to download video %d for indexing", video.ID)
		return
	}
	defer func() {
		if err := os.Remove(localPath); err != nil {
			r.logger.Warnf("failed to remove temp file %s: %v", localPath, err)
		}
	}()

	// Превью не критично для индексации: неудача только логируется.
	r.uploadThumbnail(ctx, video, localPath)

	if err := r.indexer.IndexVideo(ctx, video.ID, localPath); err != nil {
		r.logger.Errorf(err, "indexing of video %d failed", video.ID)
		return
	}

	r.logger.Infof("video %d indexed", video.ID)
}

// uploadThumbnail извлекает первый кадр и сохраняет его как превью видео.
func (r *Runner) uploadThumbnail(ctx context.Context, video *domain.Video, localPath string) {
	data, err := r.thumbs.Thumbnail(ctx, localPath)
	if err != nil {
		r.logger.Warnf("failed to extract thumbnail for video %d: %v", video.ID, err)
		return
	}

	key := fmt.Sprintf("thumbnails/%s/%d.jpg", video.OwnerID, video.ID)
	if err := r.blobRepo.Upload(ctx, key, data, "image/jpeg"); err != nil {
		r.logger.Warnf("failed to upload thumbnail for video %d: %v", video.ID, err)
		return
	}

	if err := r.videoRepo.SetThumbnail(ctx, video.ID, key); err != nil {
		r.logger.Warnf("failed to persist thumbnail key for video %d: %v", video.ID, err)
	}
}

// WaitForShutdown ожидает завершения запущенных задач с учётом таймаута завершения приложения.
func (r *Runner) WaitForShutdown(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("indexing tasks timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
