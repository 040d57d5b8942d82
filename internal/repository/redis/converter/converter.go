package converter

import (
	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
	"github.com/tewff14/searh-your-moments-webapp/internal/usecase"
)

// VideoInfoConverter переводит DTO видео в модель кэша и обратно.
type VideoInfoConverter interface {
	ToRedisModel(info *usecase.VideoInfo) *VideoInfoRedisModel
	ToUseCase(model *VideoInfoRedisModel) *usecase.VideoInfo
}

type VideoInfoConverterImpl struct{}

func NewVideoInfoConverterImpl() *VideoInfoConverterImpl {
	return &VideoInfoConverterImpl{}
}

func (c *VideoInfoConverterImpl) ToRedisModel(info *usecase.VideoInfo) *VideoInfoRedisModel {
	return &VideoInfoRedisModel{
		ID:             info.ID,
		Title:          info.Title,
		ThumbnailURL:   info.ThumbnailURL,
		IndexingStatus: string(info.IndexingStatus),
		CreatedAt:      info.CreatedAt,
	}
}

func (c *VideoInfoConverterImpl) ToUseCase(model *VideoInfoRedisModel) *usecase.VideoInfo {
	return &usecase.VideoInfo{
		ID:             model.ID,
		Title:          model.Title,
		ThumbnailURL:   model.ThumbnailURL,
		IndexingStatus: domain.IndexingStatus(model.IndexingStatus),
		CreatedAt:      model.CreatedAt,
	}
}
