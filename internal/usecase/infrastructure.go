package usecase

import (
	"context"

	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
)

// FrameSeq — ленивая конечная последовательность кадров.
// Next возвращает io.EOF после последнего кадра; повторный обход невозможен.
type FrameSeq interface {
	Next() (*domain.Frame, error)
	Close() error
}

type FrameSampler interface {
	// Sample открывает видеофайл и извлекает кадры с целевой частотой.
	// Возвращает e.ErrUnreadableVideo, если поток не читается или fps неизвестен.
	Sample(ctx context.Context, localPath string) (FrameSeq, error)
}

// EmbeddingEncoder отображает изображения и текст в общее embedding-пространство.
// Все возвращаемые векторы нормированы на единицу.
type EmbeddingEncoder interface {
	// EncodeImages кодирует батч JPEG-кадров, сохраняя порядок: i-й вектор
	// соответствует i-му изображению.
	EncodeImages(ctx context.Context, images [][]byte) ([][]float32, error)
	EncodeText(ctx context.Context, query string) ([]float32, error)
}

// IndexDispatcher ставит фоновую задачу индексации: fire-and-forget,
// ошибки самой индексации остаются в пайплайне.
type IndexDispatcher interface {
	Dispatch(video *domain.Video)
}

type EventProducer interface {
	PublishVideoEvent(ctx context.Context, event *VideoEvent) error
}
