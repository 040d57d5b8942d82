package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
	"github.com/tewff14/searh-your-moments-webapp/pkg/keylock"
	"github.com/tewff14/searh-your-moments-webapp/pkg/logger"
)

func pendingVideo(id int64) *domain.Video {
	return &domain.Video{
		ID:             id,
		OwnerID:        "user-1",
		Title:          "clip",
		ObjectKey:      "videos/user-1/clip.mp4",
		IndexingStatus: domain.StatusPending,
	}
}

func newIndexer(repo *memVideoRepo, index *memFrameIndex, sampler FrameSampler, producer EventProducer, batchSize int) (*IndexerUseCase, *keylock.KeyLock) {
	locks := keylock.New()
	uc := NewIndexerUC(
		repo,
		index,
		sampler,
		&stubEncoder{},
		producer,
		nopCache{},
		locks,
		logger.NewSlogLogger(),
		batchSize,
	)
	return uc, locks
}

func TestIndexVideoSuccess(t *testing.T) {
	repo := newMemVideoRepo(pendingVideo(1))
	index := &memFrameIndex{}
	producer := &recordingProducer{}
	// batchSize меньше числа кадров: проверяется сквозная нумерация между батчами.
	uc, _ := newIndexer(repo, index, &stubSampler{frames: testFrames(5)}, producer, 2)

	if err := uc.IndexVideo(context.Background(), 1, "/tmp/clip.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := repo.status(1); got != domain.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", got)
	}
	if got := index.count(1); got != 5 {
		t.Errorf("index records = %d, want 5", got)
	}

	index.mu.Lock()
	for i, rec := range index.records {
		if rec.FrameNumber != i {
			t.Errorf("record %d has frame number %d", i, rec.FrameNumber)
		}
	}
	index.mu.Unlock()

	types := producer.types()
	if len(types) != 1 || types[0] != EventVideoCompleted {
		t.Errorf("events = %v, want [%s]", types, EventVideoCompleted)
	}
}

func TestIndexVideoEmptySequenceFails(t *testing.T) {
	repo := newMemVideoRepo(pendingVideo(1))
	producer := &recordingProducer{}
	uc, _ := newIndexer(repo, &memFrameIndex{}, &stubSampler{frames: nil}, producer, 32)

	err := uc.IndexVideo(context.Background(), 1, "/tmp/clip.mp4")
	if !errors.Is(err, e.ErrNoFramesExtracted) {
		t.Fatalf("got %v, want ErrNoFramesExtracted", err)
	}
	if got := repo.status(1); got != domain.StatusFailed {
		t.Errorf("status = %s, want FAILED", got)
	}

	types := producer.types()
	if len(types) != 1 || types[0] != EventVideoFailed {
		t.Errorf("events = %v, want [%s]", types, EventVideoFailed)
	}
}

func TestIndexVideoUnreadableFails(t *testing.T) {
	repo := newMemVideoRepo(pendingVideo(1))
	uc, _ := newIndexer(repo, &memFrameIndex{}, &stubSampler{err: e.ErrUnreadableVideo}, &recordingProducer{}, 32)

	err := uc.IndexVideo(context.Background(), 1, "/tmp/clip.mp4")
	if !errors.Is(err, e.ErrUnreadableVideo) {
		t.Fatalf("got %v, want ErrUnreadableVideo", err)
	}
	if got := repo.status(1); got != domain.StatusFailed {
		t.Errorf("status = %s, want FAILED", got)
	}
}

func TestIndexVideoInsertErrorPropagates(t *testing.T) {
	repo := newMemVideoRepo(pendingVideo(1))
	index := &memFrameIndex{insertErr: errBoom}
	uc, _ := newIndexer(repo, index, &stubSampler{frames: testFrames(2)}, &recordingProducer{}, 32)

	err := uc.IndexVideo(context.Background(), 1, "/tmp/clip.mp4")
	if !errors.Is(err, errBoom) {
		t.Fatalf("got %v, want wrapped insert error", err)
	}
	if got := repo.status(1); got != domain.StatusFailed {
		t.Errorf("status = %s, want FAILED", got)
	}
}

// Повторный запуск после FAILED сперва убирает записи прошлого прогона.
func TestIndexVideoRetryAfterFailureCleansStaleRecords(t *testing.T) {
	video := pendingVideo(1)
	video.IndexingStatus = domain.StatusFailed
	repo := newMemVideoRepo(video)

	index := &memFrameIndex{}
	stale := []domain.FrameEmbedding{
		domain.NewFrameEmbedding(1, 0, 0, []float32{1, 0, 0}),
		domain.NewFrameEmbedding(1, 1, 1, []float32{0, 1, 0}),
	}
	if err := index.Insert(context.Background(), stale); err != nil {
		t.Fatal(err)
	}

	uc, _ := newIndexer(repo, index, &stubSampler{frames: testFrames(3)}, &recordingProducer{}, 32)

	if err := uc.IndexVideo(context.Background(), 1, "/tmp/clip.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := index.count(1); got != 3 {
		t.Errorf("index records = %d, want 3 (stale records must be removed)", got)
	}
	if got := repo.status(1); got != domain.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", got)
	}
}

func TestIndexVideoRejectsCompleted(t *testing.T) {
	video := pendingVideo(1)
	video.IndexingStatus = domain.StatusCompleted
	repo := newMemVideoRepo(video)
	uc, _ := newIndexer(repo, &memFrameIndex{}, &stubSampler{frames: testFrames(1)}, &recordingProducer{}, 32)

	err := uc.IndexVideo(context.Background(), 1, "/tmp/clip.mp4")
	if !errors.Is(err, e.ErrStatusConflict) {
		t.Fatalf("got %v, want ErrStatusConflict", err)
	}
	if got := repo.status(1); got != domain.StatusCompleted {
		t.Errorf("status changed to %s", got)
	}
}

// sampleFunc позволяет вклиниться в пайплайн между сменой статуса и записью.
type sampleFunc func(ctx context.Context, localPath string) (FrameSeq, error)

func (f sampleFunc) Sample(ctx context.Context, localPath string) (FrameSeq, error) {
	return f(ctx, localPath)
}

// Если статус увели из-под пайплайна, успех не фиксируется и событие
// о завершении не публикуется.
func TestIndexVideoCompletionCASMissFails(t *testing.T) {
	repo := newMemVideoRepo(pendingVideo(1))
	producer := &recordingProducer{}

	sampler := sampleFunc(func(context.Context, string) (FrameSeq, error) {
		repo.mu.Lock()
		repo.videos[1].IndexingStatus = domain.StatusFailed
		repo.mu.Unlock()
		return &stubSeq{frames: testFrames(1)}, nil
	})
	uc, _ := newIndexer(repo, &memFrameIndex{}, sampler, producer, 32)

	err := uc.IndexVideo(context.Background(), 1, "/tmp/clip.mp4")
	if !errors.Is(err, e.ErrStatusConflict) {
		t.Fatalf("got %v, want ErrStatusConflict", err)
	}

	for _, eventType := range producer.types() {
		if eventType == EventVideoCompleted {
			t.Fatalf("%s published despite status conflict", EventVideoCompleted)
		}
	}
}

func TestIndexVideoRejectsConcurrentRun(t *testing.T) {
	repo := newMemVideoRepo(pendingVideo(1))
	uc, locks := newIndexer(repo, &memFrameIndex{}, &stubSampler{frames: testFrames(1)}, &recordingProducer{}, 32)

	if !locks.TryLock(1) {
		t.Fatal("setup: lock must be free")
	}
	defer locks.Unlock(1)

	err := uc.IndexVideo(context.Background(), 1, "/tmp/clip.mp4")
	if !errors.Is(err, e.ErrIndexingInFlight) {
		t.Fatalf("got %v, want ErrIndexingInFlight", err)
	}
}
