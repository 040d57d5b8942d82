// Package ffmpeg извлекает кадры из видео через ffmpeg/ffprobe.
package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tewff14/searh-your-moments-webapp/internal/cfg"
	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
	"github.com/tewff14/searh-your-moments-webapp/internal/usecase"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
	"github.com/tewff14/searh-your-moments-webapp/pkg/logger"
)

// Sampler извлекает кадры с целевой частотой: кадр эмитится, когда индекс
// декодирования делится на interval = round(native_fps / target_fps).
type Sampler struct {
	cfg    *cfg.SamplerCfg
	logger logger.Logger
}

func NewSampler(cfg *cfg.SamplerCfg, logger logger.Logger) *Sampler {
	return &Sampler{
		cfg:    cfg,
		logger: logger,
	}
}

// Sample запускает ffmpeg и возвращает ленивую последовательность кадров.
// Частота кадров берется из ffprobe; если она неизвестна или нулевая —
// e.ErrUnreadableVideo.
func (s *Sampler) Sample(ctx context.Context, localPath string) (usecase.FrameSeq, error) {
	const op = "Sampler.Sample"

	nativeFPS, err := s.probeFPS(ctx, localPath)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	interval := SamplingInterval(nativeFPS, s.cfg.TargetFPS)
	s.logger.Debugf("sampling %s: native %.3f fps, interval %d", localPath, nativeFPS, interval)

	// select=not(mod(n\,interval)) эмитит каждый interval-й кадр декодирования;
	// mjpeg в pipe позволяет читать кадры не дожидаясь конца файла.
	cmd := exec.CommandContext(ctx, s.cfg.FFmpegPath,
		"-i", localPath,
		"-vf", fmt.Sprintf("select=not(mod(n\\,%d))", interval),
		"-vsync", "vfr",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, e.Wrap(op, e.Wrap(err.Error(), e.ErrUnreadableVideo))
	}

	return &frameSeq{
		cmd:       cmd,
		reader:    bufio.NewReaderSize(stdout, 1<<20),
		nativeFPS: nativeFPS,
		interval:  interval,
	}, nil
}

// probeFPS возвращает нативную частоту кадров видеопотока.
func (s *Sampler) probeFPS(ctx context.Context, localPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, s.cfg.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=avg_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		localPath,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, e.Wrap(err.Error(), e.ErrUnreadableVideo)
	}

	fps, err := ParseFrameRate(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, err
	}

	return fps, nil
}

// ParseFrameRate разбирает частоту кадров в нотации ffprobe («30000/1001», «25/1»).
// Нулевая или неразборчивая частота — e.ErrUnreadableVideo.
func ParseFrameRate(raw string) (float64, error) {
	num, den, ok := strings.Cut(raw, "/")
	if !ok {
		num, den = raw, "1"
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, e.Wrap(raw, e.ErrUnreadableVideo)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, e.Wrap(raw, e.ErrUnreadableVideo)
	}

	if n == 0 || d == 0 {
		return 0, e.Wrap(raw, e.ErrUnreadableVideo)
	}

	return n / d, nil
}

// SamplingInterval возвращает шаг сэмплирования в кадрах декодирования.
// При targetFPS >= nativeFPS берется каждый кадр.
func SamplingInterval(nativeFPS, targetFPS float64) int {
	interval := int(math.Round(nativeFPS / targetFPS))
	if interval < 1 {
		interval = 1
	}
	return interval
}

// FrameTimestamp возвращает позицию i-го извлеченного кадра в секундах:
// индекс декодирования i*interval, деленный на нативную частоту.
func FrameTimestamp(index int, interval int, nativeFPS float64) float64 {
	return float64(index*interval) / nativeFPS
}

// frameSeq — ленивое чтение mjpeg-потока ffmpeg. Не перезапускается.
type frameSeq struct {
	cmd       *exec.Cmd
	reader    *bufio.Reader
	nativeFPS float64
	interval  int
	next      int
	done      bool
}

const (
	jpegSOI0 = 0xFF
	jpegSOI1 = 0xD8
	jpegEOI1 = 0xD9
)

// Next возвращает следующий кадр или io.EOF после последнего.
func (f *frameSeq) Next() (*domain.Frame, error) {
	if f.done {
		return nil, io.EOF
	}

	data, err := readJPEG(f.reader)
	if err == io.EOF {
		f.done = true
		// Закончился поток — дожидаемся ffmpeg. Ошибки декодера здесь не
		// фатальны: пустая последовательность валидна по контракту.
		_ = f.cmd.Wait()
		return nil, io.EOF
	}
	if err != nil {
		return nil, e.Wrap("frameSeq.Next", err)
	}

	frame := &domain.Frame{
		Number:       f.next,
		TimestampSec: FrameTimestamp(f.next, f.interval, f.nativeFPS),
		JPEG:         data,
	}
	f.next++

	return frame, nil
}

// Close прерывает чтение и завершает процесс ffmpeg.
func (f *frameSeq) Close() error {
	if f.done {
		return nil
	}
	f.done = true

	if f.cmd.Process != nil {
		_ = f.cmd.Process.Kill()
	}
	_ = f.cmd.Wait()

	return nil
}

// readJPEG вычитывает один JPEG (от маркера SOI до EOI) из потока.
func readJPEG(r *bufio.Reader) ([]byte, error) {
	// Поиск начала кадра.
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, io.EOF
		}
		if b != jpegSOI0 {
			continue
		}
		b, err = r.ReadByte()
		if err != nil {
			return nil, io.EOF
		}
		if b == jpegSOI1 {
			break
		}
	}

	var buf bytes.Buffer
	buf.WriteByte(jpegSOI0)
	buf.WriteByte(jpegSOI1)

	for {
		b, err := r.ReadByte()
		if err != nil {
			// Оборванный кадр в конце потока отбрасывается.
			return nil, io.EOF
		}
		buf.WriteByte(b)

		if b != jpegSOI0 {
			continue
		}
		nxt, err := r.ReadByte()
		if err != nil {
			return nil, io.EOF
		}
		buf.WriteByte(nxt)
		if nxt == jpegEOI1 {
			return buf.Bytes(), nil
		}
	}
}

// Thumbnail извлекает первый кадр видео в формате JPEG для превью.
func (s *Sampler) Thumbnail(ctx context.Context, localPath string) ([]byte, error) {
	const op = "Sampler.Thumbnail"

	cmd := exec.CommandContext(ctx, s.cfg.FFmpegPath,
		"-i", localPath,
		"-frames:v", "1",
		"-f", "image2",
		"-vcodec", "mjpeg",
		"-",
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, e.Wrap(op, e.Wrap(err.Error(), e.ErrUnreadableVideo))
	}
	if len(out) == 0 {
		return nil, e.Wrap(op, e.ErrUnreadableVideo)
	}

	return out, nil
}
