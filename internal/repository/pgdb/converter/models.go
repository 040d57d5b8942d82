package converter

import (
	"database/sql"
	"time"
)

// VideoModel — строка таблицы videos.
type VideoModel struct {
	ID             int64
	OwnerID        string
	Title          string
	ObjectKey      string
	ThumbnailKey   sql.NullString
	IndexingStatus string
	CreatedAt      time.Time
	UpdatedAt      sql.NullTime
}
