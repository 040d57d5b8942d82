package usecase

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
	"github.com/tewff14/searh-your-moments-webapp/pkg/keylock"
	"github.com/tewff14/searh-your-moments-webapp/pkg/logger"
)

// IndexerUseCase реализует пайплайн индексации видео:
// PENDING → INDEXING → {COMPLETED, FAILED}.
type IndexerUseCase struct {
	videoRepo  VideoRepository
	frameIndex FrameIndexRepository
	sampler    FrameSampler
	encoder    EmbeddingEncoder
	producer   EventProducer
	cacheRepo  CacheRepository
	locks      *keylock.KeyLock
	logger     logger.Logger
	batchSize  int
}

func NewIndexerUC(
	videoRepo VideoRepository,
	frameIndex FrameIndexRepository,
	sampler FrameSampler,
	encoder EmbeddingEncoder,
	producer EventProducer,
	cacheRepo CacheRepository,
	locks *keylock.KeyLock,
	logger logger.Logger,
	batchSize int,
) *IndexerUseCase {
	return &IndexerUseCase{
		videoRepo:  videoRepo,
		frameIndex: frameIndex,
		sampler:    sampler,
		encoder:    encoder,
		producer:   producer,
		cacheRepo:  cacheRepo,
		locks:      locks,
		logger:     logger,
		batchSize:  batchSize,
	}
}

// IndexVideo извлекает кадры, получает их эмбеддинги батчами и пишет в векторный
// индекс одним логическим insert'ом. Статус FAILED фиксируется до того, как
// ошибка возвращается вызывающему; на одно видео допускается не более одного
// одновременного запуска.
func (u *IndexerUseCase) IndexVideo(ctx context.Context, videoID int64, localPath string) error {
	const op = "IndexerUseCase.IndexVideo"

	if !u.locks.TryLock(videoID) {
		return e.Wrap(op, e.ErrIndexingInFlight)
	}
	defer u.locks.Unlock(videoID)

	video, err := u.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return e.Wrap(op, err)
	}

	prev := video.IndexingStatus
	if !prev.CanTransition(domain.StatusIndexing) {
		return e.Wrap(op, e.ErrStatusConflict)
	}

	ok, err := u.videoRepo.CompareAndSetStatus(ctx, videoID, prev, domain.StatusIndexing)
	if err != nil {
		return e.Wrap(op, err)
	}
	if !ok {
		return e.Wrap(op, e.ErrStatusConflict)
	}

	// Повторный запуск после неудачи: insert append-only, поэтому остатки
	// прошлого прогона убираются до новой записи.
	if prev == domain.StatusFailed {
		if _, err := u.frameIndex.DeleteByVideo(ctx, videoID); err != nil {
			u.markFailed(ctx, video)
			return e.Wrap(op, err)
		}
	}

	count, err := u.runPipeline(ctx, video, localPath)
	if err != nil {
		u.markFailed(ctx, video)
		return e.Wrap(op, err)
	}

	ok, err = u.videoRepo.CompareAndSetStatus(ctx, videoID, domain.StatusIndexing, domain.StatusCompleted)
	if err != nil {
		return e.Wrap(op, err)
	}
	if !ok {
		// Статус увели из-под пайплайна — успех не фиксируется.
		return e.Wrap(op, e.ErrStatusConflict)
	}

	u.invalidateCache(ctx, video)
	u.logger.Infof("indexed video %d: %d frames", videoID, count)
	u.publishEvent(ctx, video, EventVideoCompleted)
	return nil
}

// runPipeline выполняет шаги 2–4 пайплайна и возвращает число записанных кадров.
func (u *IndexerUseCase) runPipeline(ctx context.Context, video *domain.Video, localPath string) (int, error) {
	seq, err := u.sampler.Sample(ctx, localPath)
	if err != nil {
		return 0, err
	}
	defer seq.Close()

	records, err := u.encodeFrames(ctx, video.ID, seq)
	if err != nil {
		return 0, err
	}

	if len(records) == 0 {
		return 0, e.ErrNoFramesExtracted
	}

	if err := u.frameIndex.Insert(ctx, records); err != nil {
		return 0, err
	}

	return len(records), nil
}

// encodeFrames вычитывает ленивую последовательность кадров и кодирует ее
// батчами. Номер кадра — позиция в извлеченной последовательности, с нуля.
func (u *IndexerUseCase) encodeFrames(ctx context.Context, videoID int64, seq FrameSeq) ([]domain.FrameEmbedding, error) {
	var (
		records []domain.FrameEmbedding
		batch   []*domain.Frame
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		images := make([][]byte, len(batch))
		for i, frame := range batch {
			images[i] = frame.JPEG
		}

		vectors, err := u.encoder.EncodeImages(ctx, images)
		if err != nil {
			return err
		}
		if len(vectors) != len(batch) {
			return e.ErrEncodingFailure
		}

		for i, frame := range batch {
			records = append(records, NewFrameRecord(videoID, frame, vectors[i]))
		}

		batch = batch[:0]
		return nil
	}

	for {
		frame, err := seq.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		batch = append(batch, frame)
		if len(batch) == u.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	return records, nil
}

// markFailed фиксирует статус FAILED до возврата ошибки вызывающему.
func (u *IndexerUseCase) markFailed(ctx context.Context, video *domain.Video) {
	if _, err := u.videoRepo.CompareAndSetStatus(ctx, video.ID, domain.StatusIndexing, domain.StatusFailed); err != nil {
		u.logger.Errorf(err, "failed to mark video %d as FAILED", video.ID)
	}
	u.invalidateCache(ctx, video)
	u.publishEvent(ctx, video, EventVideoFailed)
}

// invalidateCache убирает устаревшую запись о видео после смены статуса.
func (u *IndexerUseCase) invalidateCache(ctx context.Context, video *domain.Video) {
	if err := u.cacheRepo.DeleteVideos(ctx, video.OwnerID, []int64{video.ID}); err != nil {
		u.logger.Warnf("failed to invalidate cache for video %d: %v", video.ID, err)
	}
}

// publishEvent отправляет событие жизненного цикла; ошибка шины не влияет на пайплайн.
func (u *IndexerUseCase) publishEvent(ctx context.Context, video *domain.Video, eventType string) {
	event := &VideoEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		VideoID:   video.ID,
		OwnerID:   video.OwnerID,
		Timestamp: time.Now().UTC().UnixNano(),
	}
	if err := u.producer.PublishVideoEvent(ctx, event); err != nil {
		u.logger.Warnf("failed to publish %s for video %d: %v", eventType, video.ID, err)
	}
}

// NewFrameRecord собирает запись индекса из кадра и его вектора.
func NewFrameRecord(videoID int64, frame *domain.Frame, vector []float32) domain.FrameEmbedding {
	return domain.NewFrameEmbedding(videoID, frame.Number, frame.TimestampSec, vector)
}
