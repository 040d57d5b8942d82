package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	r "github.com/redis/go-redis/v9"
	"github.com/jimlawless/whereami"
	"github.com/tewff14/searh-your-moments-webapp/internal/cfg"
	"github.com/tewff14/searh-your-moments-webapp/internal/repository/redis/converter"
	"github.com/tewff14/searh-your-moments-webapp/internal/usecase"
	"github.com/tewff14/searh-your-moments-webapp/pkg/clients"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
	"github.com/tewff14/searh-your-moments-webapp/pkg/logger"
)

// CacheRepo кэширует информацию о видео. Промах и любая ошибка кэша
// не критичны — источником истины остается PostgreSQL.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.VideoInfoConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.VideoInfoConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetVideo возвращает закэшированную информацию о видео; (nil, nil) при промахе.
func (c *CacheRepo) GetVideo(ctx context.Context, ownerID string, videoID int64) (*usecase.VideoInfo, error) {
	data, err := c.client.Client.Get(ctx, c.videoKey(ownerID, videoID)).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, nil // cache miss
		}
		c.logger.Warnf("Redis GET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.VideoInfoRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, nil
	}

	if model.ID != videoID {
		c.logger.Warnf("Cache ID mismatch: key_id: %d, model_id: %d", videoID, model.ID)
		if err := c.client.Client.Del(context.Background(), c.videoKey(ownerID, videoID)).Err(); err != nil {
			c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, nil // cache miss
	}

	return c.conv.ToUseCase(&model), nil
}

// SetVideo кэширует информацию о видео с TTL из конфигурации.
func (c *CacheRepo) SetVideo(ctx context.Context, ownerID string, info *usecase.VideoInfo) error {
	data, err := json.Marshal(c.conv.ToRedisModel(info))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, c.videoKey(ownerID, info.ID), data, c.cfg.VideoTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// DeleteVideos удаляет видео из кэша по ID
func (c *CacheRepo) DeleteVideos(ctx context.Context, ownerID string, ids []int64) error {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.videoKey(ownerID, id)
	}

	if err := c.client.Client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// videoKey возвращает Redis-ключ для одного видео владельца
func (c *CacheRepo) videoKey(ownerID string, id int64) string {
	return fmt.Sprintf("video:%s:%d", ownerID, id)
}
