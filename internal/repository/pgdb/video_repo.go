package pgdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/tewff14/searh-your-moments-webapp/internal/domain"
	"github.com/tewff14/searh-your-moments-webapp/internal/repository/pgdb/converter"
	"github.com/tewff14/searh-your-moments-webapp/internal/usecase"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
	"github.com/tewff14/searh-your-moments-webapp/pkg/tr"
)

const videoColumns = "id, owner_id, title, object_key, thumbnail_key, indexing_status, created_at, updated_at"

// VideoRepo реализует репозиторий видео поверх PostgreSQL.
type VideoRepo struct {
	pool *pgxpool.Pool
	conv converter.VideoConverter
}

func NewVideoRepo(pool *pgxpool.Pool, conv converter.VideoConverter) *VideoRepo {
	return &VideoRepo{
		pool: pool,
		conv: conv,
	}
}

// Create добавляет запись о видео со статусом PENDING.
func (v *VideoRepo) Create(ctx context.Context, video *domain.Video) (*domain.Video, error) {
	query := `
		INSERT INTO videos (owner_id, title, object_key, indexing_status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + videoColumns

	row := v.pool.QueryRow(ctx, query, video.OwnerID, video.Title, video.ObjectKey, string(video.IndexingStatus))

	model, err := scanVideo(row)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return v.conv.ToEntity(model), nil
}

func (v *VideoRepo) GetByID(ctx context.Context, videoID int64) (*domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`

	model, err := scanVideo(v.pool.QueryRow(ctx, query, videoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrVideoNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return v.conv.ToEntity(model), nil
}

func (v *VideoRepo) GetByOwner(ctx context.Context, ownerID string, videoID int64) (*domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1 AND owner_id = $2`

	model, err := scanVideo(v.pool.QueryRow(ctx, query, videoID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrVideoNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return v.conv.ToEntity(model), nil
}

// GetByOwnerForUpdate читает строку видео в транзакции из контекста с блокировкой.
func (v *VideoRepo) GetByOwnerForUpdate(ctx context.Context, ownerID string, videoID int64) (*domain.Video, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1 AND owner_id = $2 FOR UPDATE`

	model, err := scanVideo(tx.QueryRow(ctx, query, videoID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrVideoNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return v.conv.ToEntity(model), nil
}

func (v *VideoRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Video, error) {
	query := `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE owner_id = $1
		ORDER BY created_at DESC`

	rows, err := v.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var models []converter.VideoModel
	for rows.Next() {
		model, err := scanVideo(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, *model)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return v.conv.ToArrEntity(models), nil
}

// GetCompletedVideos возвращает кандидатов глобального поиска: только COMPLETED.
func (v *VideoRepo) GetCompletedVideos(ctx context.Context, ownerID string) ([]usecase.VideoRef, error) {
	query := `
		SELECT id, title
		FROM videos
		WHERE owner_id = $1 AND indexing_status = $2`

	rows, err := v.pool.Query(ctx, query, ownerID, string(domain.StatusCompleted))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	refs := make([]usecase.VideoRef, 0)
	for rows.Next() {
		var ref usecase.VideoRef
		if err := rows.Scan(&ref.ID, &ref.Title); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return refs, nil
}

// CompareAndSetStatus атомарно переводит статус from → to.
func (v *VideoRepo) CompareAndSetStatus(ctx context.Context, videoID int64, from, to domain.IndexingStatus) (bool, error) {
	query := `
		UPDATE videos
		SET indexing_status = $1, updated_at = NOW()
		WHERE id = $2 AND indexing_status = $3`

	res, err := v.pool.Exec(ctx, query, string(to), videoID, string(from))
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return res.RowsAffected() == 1, nil
}

func (v *VideoRepo) SetThumbnail(ctx context.Context, videoID int64, thumbnailKey string) error {
	query := `UPDATE videos SET thumbnail_key = $1, updated_at = NOW() WHERE id = $2`

	if _, err := v.pool.Exec(ctx, query, thumbnailKey, videoID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Delete удаляет строку видео в транзакции из контекста.
func (v *VideoRepo) Delete(ctx context.Context, videoID int64) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, videoID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func scanVideo(row pgx.Row) (*converter.VideoModel, error) {
	var model converter.VideoModel
	err := row.Scan(
		&model.ID, &model.OwnerID, &model.Title, &model.ObjectKey,
		&model.ThumbnailKey, &model.IndexingStatus, &model.CreatedAt, &model.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &model, nil
}
