package qdrant

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
	"github.com/tewff14/searh-your-moments-webapp/internal/cfg"
	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
)

// FrameRepo — репозиторий эмбеддингов кадров в Qdrant.
// Метрика коллекции — косинусная близость.
type FrameRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewFrameRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *FrameRepo {
	return &FrameRepo{
		client: client,
		cfg:    cfg,
	}
}

// Insert записывает эмбеддинги кадров одним запросом с Wait=true:
// после возврата записи видимы для поиска.
func (q *FrameRepo) Insert(ctx context.Context, records []domain.FrameEmbedding) error {
	if len(records) == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrEmptyVectors)
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, record := range records {
		if len(record.Vector) != int(q.cfg.VectorSize) {
			return e.Wrap(whereami.WhereAmI(), e.ErrVectorDimension)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(framePointID(record.VideoID, record.FrameNumber)),
			Vectors: qdrant.NewVectors(record.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"video_id":      record.VideoID,
				"frame_number":  int64(record.FrameNumber),
				"timestamp_sec": record.TimestampSec,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.CollectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), e.Wrap(err.Error(), e.ErrIndexUnavailable))
	}

	return nil
}

// Search возвращает до k ближайших кадров, ограничиваясь указанными видео.
// Результат отсортирован по убыванию близости; равные — по возрастанию номера кадра.
func (q *FrameRepo) Search(ctx context.Context, vector []float32, k uint64, videoIDs []int64) ([]domain.FrameHit, error) {
	query := &qdrant.QueryPoints{
		CollectionName: q.cfg.CollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(k),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if len(videoIDs) > 0 {
		query.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatchInts("video_id", videoIDs...)},
		}
	}

	points, err := q.client.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.Wrap(err.Error(), e.ErrIndexUnavailable))
	}

	hits := make([]domain.FrameHit, 0, len(points))
	for _, point := range points {
		payload := point.GetPayload()
		hits = append(hits, domain.FrameHit{
			VideoID:      payload["video_id"].GetIntegerValue(),
			FrameNumber:  int(payload["frame_number"].GetIntegerValue()),
			TimestampSec: payload["timestamp_sec"].GetDoubleValue(),
			Similarity:   point.GetScore(),
		})
	}

	// Детерминированный порядок при равных score.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].FrameNumber < hits[j].FrameNumber
	})

	return hits, nil
}

// DeleteByVideo удаляет все записи видео и возвращает их число.
// Видео без записей — 0 без ошибки.
func (q *FrameRepo) DeleteByVideo(ctx context.Context, videoID int64) (uint64, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatchInt("video_id", videoID)},
	}

	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.cfg.CollectionName,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), e.Wrap(err.Error(), e.ErrIndexUnavailable))
	}

	if count == 0 {
		return 0, nil
	}

	_, err = q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.cfg.CollectionName,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), e.Wrap(err.Error(), e.ErrIndexUnavailable))
	}

	return count, nil
}

// framePointID детерминированно выводит ID точки из (video_id, frame_number):
// повторная индексация перезаписывает те же точки, а не плодит дубликаты.
func framePointID(videoID int64, frameNumber int) string {
	name := fmt.Sprintf("video:%d:frame:%d", videoID, frameNumber)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
