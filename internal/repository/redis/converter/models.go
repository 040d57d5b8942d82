package converter

import "time"

type VideoInfoRedisModel struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	ThumbnailURL   string    `json:"thumbnail_url"`
	IndexingStatus string    `json:"indexing_status"`
	CreatedAt      time.Time `json:"created_at"`
}
