package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
	"github.com/tewff14/searh-your-moments-webapp/pkg/vecmath"
)

// memVideoRepo — потокобезопасная замена PostgreSQL-репозитория в тестах.
type memVideoRepo struct {
	mu     sync.Mutex
	videos map[int64]*domain.Video
}

func newMemVideoRepo(videos ...*domain.Video) *memVideoRepo {
	repo := &memVideoRepo{videos: make(map[int64]*domain.Video)}
	for _, v := range videos {
		cp := *v
		repo.videos[v.ID] = &cp
	}
	return repo
}

func (r *memVideoRepo) Create(_ context.Context, video *domain.Video) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *video
	cp.ID = int64(len(r.videos) + 1)
	r.videos[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memVideoRepo) GetByID(_ context.Context, videoID int64) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[videoID]
	if !ok {
		return nil, e.ErrVideoNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *memVideoRepo) GetByOwner(ctx context.Context, ownerID string, videoID int64) (*domain.Video, error) {
	v, err := r.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if v.OwnerID != ownerID {
		return nil, e.ErrVideoNotFound
	}
	return v, nil
}

func (r *memVideoRepo) GetByOwnerForUpdate(ctx context.Context, ownerID string, videoID int64) (*domain.Video, error) {
	return r.GetByOwner(ctx, ownerID, videoID)
}

func (r *memVideoRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Video
	for _, v := range r.videos {
		if v.OwnerID == ownerID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memVideoRepo) GetCompletedVideos(_ context.Context, ownerID string) ([]VideoRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []VideoRef
	for _, v := range r.videos {
		if v.OwnerID == ownerID && v.IndexingStatus == domain.StatusCompleted {
			out = append(out, VideoRef{ID: v.ID, Title: v.Title})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memVideoRepo) CompareAndSetStatus(_ context.Context, videoID int64, from, to domain.IndexingStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[videoID]
	if !ok || v.IndexingStatus != from {
		return false, nil
	}
	v.IndexingStatus = to
	return true, nil
}

func (r *memVideoRepo) SetThumbnail(_ context.Context, videoID int64, thumbnailKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[videoID]
	if !ok {
		return e.ErrVideoNotFound
	}
	v.ThumbnailKey = &thumbnailKey
	return nil
}

func (r *memVideoRepo) Delete(_ context.Context, videoID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.videos[videoID]; !ok {
		return e.ErrVideoNotFound
	}
	delete(r.videos, videoID)
	return nil
}

func (r *memVideoRepo) status(videoID int64) domain.IndexingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.videos[videoID].IndexingStatus
}

// memFrameIndex — векторный индекс в памяти с косинусной близостью.
type memFrameIndex struct {
	mu        sync.Mutex
	records   []domain.FrameEmbedding
	insertErr error
	searchErr error
}

func (m *memFrameIndex) Insert(_ context.Context, records []domain.FrameEmbedding) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

func (m *memFrameIndex) Search(_ context.Context, vector []float32, k uint64, videoIDs []int64) ([]domain.FrameHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}

	allowed := make(map[int64]bool, len(videoIDs))
	for _, id := range videoIDs {
		allowed[id] = true
	}

	m.mu.Lock()
	var hits []domain.FrameHit
	for _, rec := range m.records {
		if !allowed[rec.VideoID] {
			continue
		}
		hits = append(hits, domain.FrameHit{
			VideoID:      rec.VideoID,
			FrameNumber:  rec.FrameNumber,
			TimestampSec: rec.TimestampSec,
			Similarity:   float32(vecmath.Cosine(vector, rec.Vector)),
		})
	}
	m.mu.Unlock()

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].FrameNumber < hits[j].FrameNumber
	})

	if uint64(len(hits)) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *memFrameIndex) DeleteByVideo(_ context.Context, videoID int64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []domain.FrameEmbedding
	var removed uint64
	for _, rec := range m.records {
		if rec.VideoID == videoID {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return removed, nil
}

func (m *memFrameIndex) count(videoID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, rec := range m.records {
		if rec.VideoID == videoID {
			n++
		}
	}
	return n
}

// stubSeq отдает заранее заданные кадры.
type stubSeq struct {
	frames []*domain.Frame
	pos    int
}

func (s *stubSeq) Next() (*domain.Frame, error) {
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

func (s *stubSeq) Close() error { return nil }

type stubSampler struct {
	frames []*domain.Frame
	err    error
}

func (s *stubSampler) Sample(context.Context, string) (FrameSeq, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &stubSeq{frames: s.frames}, nil
}

// stubEncoder детерминированно выводит вектор из первого байта изображения.
type stubEncoder struct {
	textVector []float32
}

func (s *stubEncoder) EncodeImages(_ context.Context, images [][]byte) ([][]float32, error) {
	out := make([][]float32, len(images))
	for i, img := range images {
		v := []float32{float32(img[0]), 1, 0}
		vecmath.Normalize(v)
		out[i] = v
	}
	return out, nil
}

func (s *stubEncoder) EncodeText(context.Context, string) ([]float32, error) {
	v := make([]float32, len(s.textVector))
	copy(v, s.textVector)
	vecmath.Normalize(v)
	return v, nil
}

// recordingProducer собирает опубликованные события.
type recordingProducer struct {
	mu     sync.Mutex
	events []VideoEvent
}

func (p *recordingProducer) PublishVideoEvent(_ context.Context, event *VideoEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

func (p *recordingProducer) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

// nopCache реализует CacheRepository без хранения.
type nopCache struct{}

func (nopCache) GetVideo(context.Context, string, int64) (*VideoInfo, error) { return nil, nil }
func (nopCache) SetVideo(context.Context, string, *VideoInfo) error         { return nil }
func (nopCache) DeleteVideos(context.Context, string, []int64) error        { return nil }

func testFrames(n int) []*domain.Frame {
	frames := make([]*domain.Frame, n)
	for i := range frames {
		frames[i] = &domain.Frame{
			Number:       i,
			TimestampSec: float64(i),
			JPEG:         []byte{byte(i + 1), 0xFF},
		}
	}
	return frames
}

var errBoom = fmt.Errorf("boom")
