package converter

import (
	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
)

// VideoConverter переводит строки таблицы videos в доменные сущности.
type VideoConverter interface {
	ToEntity(model *VideoModel) *domain.Video
	ToArrEntity(models []VideoModel) []domain.Video
}

type VideoConverterImpl struct{}

func NewVideoConverterImpl() *VideoConverterImpl {
	return &VideoConverterImpl{}
}

func (c *VideoConverterImpl) ToEntity(model *VideoModel) *domain.Video {
	video := &domain.Video{
		ID:             model.ID,
		OwnerID:        model.OwnerID,
		Title:          model.Title,
		ObjectKey:      model.ObjectKey,
		IndexingStatus: domain.IndexingStatus(model.IndexingStatus),
		CreatedAt:      model.CreatedAt,
	}
	if model.ThumbnailKey.Valid {
		video.ThumbnailKey = &model.ThumbnailKey.String
	}
	if model.UpdatedAt.Valid {
		video.UpdatedAt = &model.UpdatedAt.Time
	}
	return video
}

func (c *VideoConverterImpl) ToArrEntity(models []VideoModel) []domain.Video {
	result := make([]domain.Video, 0, len(models))
	for i := range models {
		result = append(result, *c.ToEntity(&models[i]))
	}
	return result
}
