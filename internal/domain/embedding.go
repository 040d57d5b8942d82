package domain

// FrameEmbedding представляет эмбеддинг одного кадра видео.
// Вектор нормирован на единицу; размерность фиксирована на весь индекс.
type FrameEmbedding struct {
	VideoID      int64
	FrameNumber  int
	TimestampSec float64
	Vector       []float32
}

func NewFrameEmbedding(videoID int64, frameNumber int, timestampSec float64, vector []float32) FrameEmbedding {
	return FrameEmbedding{
		VideoID:      videoID,
		FrameNumber:  frameNumber,
		TimestampSec: timestampSec,
		Vector:       vector,
	}
}

// FrameHit — результат поиска по индексу: кадр и его косинусная близость к запросу.
type FrameHit struct {
	VideoID      int64
	FrameNumber  int
	TimestampSec float64
	Similarity   float32
}
