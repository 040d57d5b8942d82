// Package clip — HTTP-клиент сервиса инференса CLIP (общее пространство
// эмбеддингов для изображений и текста).
package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tewff14/searh-your-moments-webapp/internal/cfg"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
	"github.com/tewff14/searh-your-moments-webapp/pkg/jitter"
	"github.com/tewff14/searh-your-moments-webapp/pkg/logger"
	"github.com/tewff14/searh-your-moments-webapp/pkg/vecmath"
)

// Encoder клиент для взаимодействия с внешним CLIP-сервисом.
// Запросы ретраятся с экспоненциальной задержкой; число одновременных
// запросов ограничено семафором.
type Encoder struct {
	httpClient *http.Client
	endpoint   string
	vectorSize int
	maxRetries int
	sem        chan struct{}
	logger     logger.Logger
}

func NewEncoder(cfg *cfg.EncoderCfg, vectorSize uint64, logger logger.Logger) *Encoder {
	return &Encoder{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		vectorSize: int(vectorSize),
		maxRetries: cfg.MaxRetries,
		sem:        make(chan struct{}, cfg.MaxConcurrent),
		logger:     logger,
	}
}

type encodeImagesRequest struct {
	Images []string `json:"images"` // base64 JPEG
}

type encodeImagesResponse struct {
	Vectors [][]float32 `json:"vectors"`
}

type encodeTextRequest struct {
	Text string `json:"text"`
}

type encodeTextResponse struct {
	Vector []float32 `json:"vector"`
}

// EncodeImages векторизует батч JPEG-кадров, сохраняя порядок.
// Векторы нормализуются на клиенте: близость дальше считается по косинусу.
func (c *Encoder) EncodeImages(ctx context.Context, images [][]byte) ([][]float32, error) {
	const op = "Encoder.EncodeImages"

	if len(images) == 0 {
		return nil, nil
	}

	req := encodeImagesRequest{Images: make([]string, len(images))}
	for i, img := range images {
		req.Images[i] = base64.StdEncoding.EncodeToString(img)
	}

	var res encodeImagesResponse
	if err := c.doWithRetry(ctx, "/encode/images", &req, &res); err != nil {
		return nil, e.Wrap(op, err)
	}

	if len(res.Vectors) != len(images) {
		return nil, e.Wrap(op, e.Wrap(
			fmt.Sprintf("sent %d images, got %d vectors", len(images), len(res.Vectors)),
			e.ErrEncodingFailure,
		))
	}

	for i, v := range res.Vectors {
		if err := c.normalize(v); err != nil {
			return nil, e.Wrap(op, e.Wrap(fmt.Sprintf("vector %d", i), err))
		}
	}

	return res.Vectors, nil
}

// EncodeText векторизует поисковый запрос в том же пространстве, что и кадры.
func (c *Encoder) EncodeText(ctx context.Context, query string) ([]float32, error) {
	const op = "Encoder.EncodeText"

	var res encodeTextResponse
	if err := c.doWithRetry(ctx, "/encode/text", &encodeTextRequest{Text: query}, &res); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := c.normalize(res.Vector); err != nil {
		return nil, e.Wrap(op, err)
	}

	return res.Vector, nil
}

// normalize проверяет размерность и приводит вектор к единичной норме.
func (c *Encoder) normalize(v []float32) error {
	if len(v) != c.vectorSize {
		return e.Wrap(fmt.Sprintf("dimension %d, want %d", len(v), c.vectorSize), e.ErrEncodingFailure)
	}
	if !vecmath.Normalize(v) {
		return e.Wrap("zero-norm vector", e.ErrEncodingFailure)
	}
	return nil
}

// doWithRetry выполняет запрос с retry-логикой и экспоненциальной задержкой.
func (c *Encoder) doWithRetry(ctx context.Context, path string, payload, out any) error {
	const (
		op         = "Encoder.doWithRetry"
		baseJitter = 1 * time.Second
		maxJitter  = 30 * time.Second
	)

	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		lastErr = c.do(ctx, path, payload, out)
		if lastErr == nil {
			return nil
		}

		// Ошибки запроса (4xx) детерминированы: повтор даст тот же ответ.
		var se *statusError
		if errors.As(lastErr, &se) && !se.retryable() {
			break
		}

		if attempt == c.maxRetries-1 {
			break
		}

		sleepTime := jitter.ExponentialBackoff(
			baseJitter,
			maxJitter,
			attempt,
			jitter.DefaultJitter,
		)

		c.logger.Warnf("encode %s failed, retrying in %v (attempt %d): %v", path, sleepTime, attempt+1, lastErr)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return e.Wrap(op, ctx.Err())
		}
	}

	return e.Wrap(op, e.Wrap(lastErr.Error(), e.ErrEncodingFailure))
}

// statusError — не-2xx ответ сервиса инференса.
type statusError struct {
	path string
	code int
	body string
}

func (s *statusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", s.path, s.code, s.body)
}

// retryable: 5xx и 429 — временные состояния сервиса, остальные 4xx — нет.
func (s *statusError) retryable() bool {
	return s.code == http.StatusTooManyRequests || s.code >= http.StatusInternalServerError
}

func (c *Encoder) do(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{path: path, code: resp.StatusCode, body: string(data)}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
