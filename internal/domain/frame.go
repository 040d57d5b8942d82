package domain

// Frame — кадр, извлеченный из видео. Живет только во время индексации:
// после векторизации сохраняется лишь его эмбеддинг.
type Frame struct {
	Number       int     // порядковый номер среди извлеченных кадров, с нуля
	TimestampSec float64 // позиция в видео: decode_index / native_fps
	JPEG         []byte
}
