package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
	"github.com/tewff14/searh-your-moments-webapp/pkg/logger"
)

// maxParallelProbes ограничивает число одновременных запросов к индексу
// при глобальном поиске: по одному k=1 запросу на видео-кандидата.
const maxParallelProbes = 8

// SearchUseCase реализует семантический поиск по эмбеддингам кадров.
// Обе операции read-only; ошибки векторного хранилища не перехватываются.
type SearchUseCase struct {
	videoRepo  VideoRepository
	frameIndex FrameIndexRepository
	encoder    EmbeddingEncoder
	logger     logger.Logger
}

func NewSearchUC(
	videoRepo VideoRepository,
	frameIndex FrameIndexRepository,
	encoder EmbeddingEncoder,
	logger logger.Logger,
) *SearchUseCase {
	return &SearchUseCase{
		videoRepo:  videoRepo,
		frameIndex: frameIndex,
		encoder:    encoder,
		logger:     logger,
	}
}

// SearchGlobal отвечает на вопрос «какие видео и где в них лучше всего
// соответствуют запросу»: не более одного результата на видео, отсортировано
// по убыванию близости.
func (s *SearchUseCase) SearchGlobal(ctx context.Context, req *GlobalSearchReq) ([]GlobalSearchResult, error) {
	const op = "SearchUseCase.SearchGlobal"

	if err := validateQuery(req.Query, req.Limit); err != nil {
		return nil, e.Wrap(op, err)
	}

	// Запрос кодируется один раз на все видео-кандидаты.
	queryVector, err := s.encoder.EncodeText(ctx, req.Query)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	candidates, err := s.videoRepo.GetCompletedVideos(ctx, req.OwnerID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(candidates) == 0 {
		return []GlobalSearchResult{}, nil
	}

	results, err := s.probeCandidates(ctx, queryVector, candidates)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Результаты приходят в порядке завершения горутин, поэтому равная
	// близость дополнительно упорядочивается по ID видео.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].VideoID < results[j].VideoID
	})

	if len(results) > req.Limit {
		results = results[:req.Limit]
	}

	return results, nil
}

// probeCandidates опрашивает индекс по одному k=1 запросу на видео.
// Запросы независимы и read-only, поэтому выполняются параллельно
// с ограниченным пулом.
func (s *SearchUseCase) probeCandidates(ctx context.Context, queryVector []float32, candidates []VideoRef) ([]GlobalSearchResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		results  = make([]GlobalSearchResult, 0, len(candidates))
		firstErr error
		wg       sync.WaitGroup
		sem      = make(chan struct{}, maxParallelProbes)
	)

	for _, candidate := range candidates {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			hits, err := s.frameIndex.Search(ctx, queryVector, 1, []int64{candidate.ID})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return
			}
			if len(hits) == 0 {
				return // у видео нет совпадений — пропускаем
			}
			results = append(results, NewGlobalSearchResult(candidate, hits[0]))
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return results, nil
}

// SearchInVideo возвращает до limit лучших кадров внутри одного видео.
// Видео без записей в индексе — пустой результат, не ошибка.
func (s *SearchUseCase) SearchInVideo(ctx context.Context, req *InVideoSearchReq) ([]InVideoSearchResult, error) {
	const op = "SearchUseCase.SearchInVideo"

	if err := validateQuery(req.Query, req.Limit); err != nil {
		return nil, e.Wrap(op, err)
	}

	queryVector, err := s.encoder.EncodeText(ctx, req.Query)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	hits, err := s.frameIndex.Search(ctx, queryVector, uint64(req.Limit), []int64{req.VideoID})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	results := make([]InVideoSearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, NewInVideoSearchResult(hit))
	}

	return results, nil
}

func validateQuery(query string, limit int) error {
	if strings.TrimSpace(query) == "" {
		return e.ErrEmptyQuery
	}
	if limit <= 0 {
		return e.ErrInvalidLimit
	}
	return nil
}
