package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle flips the like state for (user, target). The insert runs first
// with ON CONFLICT DO NOTHING; when no row was inserted the existing like
// is deleted instead. The unique index on (liked_by, target_kind,
// target_id) makes concurrent duplicate toggles converge rather than
// double-insert.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, likedBy string, target models.LikeTarget) (bool, error) {
	if target.Zero() {
		return false, errors.New("like target must be provided")
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        INSERT INTO likes (id, liked_by, target_kind, target_id, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (liked_by, target_kind, target_id) DO NOTHING
    `, uuid.NewString(), likedBy, string(target.Kind()), target.ID(), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	if _, err := conn.Exec(ctx, `
        DELETE FROM likes
        WHERE liked_by = $1 AND target_kind = $2 AND target_id = $3
    `, likedBy, string(target.Kind()), target.ID()); err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}

	return false, nil
}

// LikedVideos returns the videos the user has liked, newest like first.
func (r *PostgresLikeRepository) LikedVideos(ctx context.Context, userID string, page Page) ([]models.VideoSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url, v.duration, v.views, v.created_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND l.target_kind = 'video'
        ORDER BY l.created_at DESC
        LIMIT $2 OFFSET $3
    `, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	return collectVideoSummaries(rows)
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
