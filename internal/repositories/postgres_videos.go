package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, video_url, video_key, thumbnail_url, thumbnail_key, duration, views, published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, video.ID, video.OwnerID, video.Title, video.Description,
		video.VideoURL, video.VideoKey, video.ThumbnailURL, video.ThumbnailKey,
		video.Duration, video.Views, video.Published, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a video by id.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, owner_id, title, description, video_url, video_key, thumbnail_url, thumbnail_key, duration, views, published, created_at, updated_at
        FROM videos
        WHERE id = $1
    `, id)

	var video models.Video
	if err := row.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description,
		&video.VideoURL, &video.VideoKey, &video.ThumbnailURL, &video.ThumbnailKey,
		&video.Duration, &video.Views, &video.Published, &video.CreatedAt, &video.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// List returns published videos matching the provided filters.
func (r *PostgresVideoRepository) List(ctx context.Context, params ListVideosParams) ([]models.VideoSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	orderCol := "v.created_at"
	switch params.SortBy {
	case SortByViews:
		orderCol = "v.views"
	case SortByDuration:
		orderCol = "v.duration"
	}
	direction := "DESC"
	if params.Ascending {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
        SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url, v.duration, v.views, v.created_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.published
          AND ($1 = '' OR v.title ILIKE '%%' || $1 || '%%' OR v.description ILIKE '%%' || $1 || '%%')
          AND ($2 = '' OR v.owner_id = $2)
        ORDER BY %s %s, v.id
        LIMIT $3 OFFSET $4
    `, orderCol, direction)

	rows, err := conn.Query(ctx, query, params.Query, params.OwnerID, params.Page.Limit(), params.Page.Offset())
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	return collectVideoSummaries(rows)
}

// Detail assembles the denormalized video page for the given viewer.
func (r *PostgresVideoRepository) Detail(ctx context.Context, id, viewerID string) (models.VideoDetail, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url, v.duration, v.views, v.published, v.created_at,
               u.id, u.username, u.full_name, u.avatar_url,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscribers,
               EXISTS (
                   SELECT 1 FROM subscriptions s
                   WHERE s.channel_id = u.id AND s.subscriber_id = $2
               ) AS is_subscribed,
               (SELECT COUNT(*) FROM likes l WHERE l.target_kind = 'video' AND l.target_id = v.id) AS likes_count,
               EXISTS (
                   SELECT 1 FROM likes l
                   WHERE l.target_kind = 'video' AND l.target_id = v.id AND l.liked_by = $2
               ) AS is_liked
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.id = $1
    `, id, viewerID)

	var detail models.VideoDetail
	if err := row.Scan(&detail.ID, &detail.Title, &detail.Description, &detail.VideoURL,
		&detail.Thumbnail, &detail.Duration, &detail.Views, &detail.Published, &detail.CreatedAt,
		&detail.Owner.ID, &detail.Owner.Username, &detail.Owner.FullName, &detail.Owner.Avatar,
		&detail.Owner.SubscribersCount, &detail.Owner.IsSubscribed,
		&detail.LikesCount, &detail.IsLiked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoDetail{}, ErrNotFound
		}
		return models.VideoDetail{}, fmt.Errorf("select video detail: %w", err)
	}

	return detail, nil
}

// Update modifies the mutable video fields.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, thumbnail_url = $4, thumbnail_key = $5, updated_at = $6
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.ThumbnailURL, video.ThumbnailKey, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPublished flips the publish flag.
func (r *PostgresVideoRepository) SetPublished(ctx context.Context, id string, published bool) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET published = $2, updated_at = $3
        WHERE id = $1
    `, id, published, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update video publish flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews bumps the view counter by one.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the video and everything referencing it in one transaction:
// likes on the video, likes on its comments, the comments themselves and
// watch-history rows, then the video row.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin video delete: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
        DELETE FROM likes
        WHERE (target_kind = 'video' AND target_id = $1)
           OR (target_kind = 'comment' AND target_id IN (SELECT id FROM comments WHERE video_id = $1))
    `, id); err != nil {
		return fmt.Errorf("delete video likes: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE video_id = $1`, id); err != nil {
		return fmt.Errorf("delete video comments: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM watch_history WHERE video_id = $1`, id); err != nil {
		return fmt.Errorf("delete video watch history: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM playlist_videos WHERE video_id = $1`, id); err != nil {
		return fmt.Errorf("delete video playlist memberships: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit video delete: %w", err)
	}
	return nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
