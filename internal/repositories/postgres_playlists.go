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

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

// Create persists a new playlist.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description, playlist.CreatedAt, playlist.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert playlist: %w", err)
	}

	return nil
}

// FindByID fetches a playlist by id.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, owner_id, name, description, created_at, updated_at
        FROM playlists
        WHERE id = $1
    `, id)
	return scanPlaylist(row)
}

// Update replaces name and description and returns the fresh row.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, id, name, description string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE playlists
        SET name = $2, description = $3, updated_at = $4
        WHERE id = $1
        RETURNING id, owner_id, name, description, created_at, updated_at
    `, id, name, description, time.Now().UTC())
	return scanPlaylist(row)
}

// Delete removes the playlist; memberships go with it via the cascade FK.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVideo inserts a membership row, ignoring duplicates (set semantics).
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlist_videos (playlist_id, video_id, added_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (playlist_id, video_id) DO NOTHING
    `, playlistID, videoID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert playlist video: %w", err)
	}

	return nil
}

// RemoveVideo deletes a membership row. Removing an absent video is a no-op.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        DELETE FROM playlist_videos
        WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID); err != nil {
		return fmt.Errorf("delete playlist video: %w", err)
	}
	return nil
}

// Detail expands the playlist with its published videos and totals.
func (r *PostgresPlaylistRepository) Detail(ctx context.Context, id string) (models.PlaylistDetail, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.PlaylistDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT p.id, p.name, p.description, p.created_at, p.updated_at,
               u.id, u.username, u.full_name, u.avatar_url,
               (SELECT COUNT(*) FROM playlist_videos pv
                JOIN videos v ON v.id = pv.video_id
                WHERE pv.playlist_id = p.id AND v.published) AS total_videos,
               (SELECT COALESCE(SUM(v.views), 0) FROM playlist_videos pv
                JOIN videos v ON v.id = pv.video_id
                WHERE pv.playlist_id = p.id AND v.published) AS total_views
        FROM playlists p
        JOIN users u ON u.id = p.owner_id
        WHERE p.id = $1
    `, id)

	var detail models.PlaylistDetail
	if err := row.Scan(&detail.ID, &detail.Name, &detail.Description, &detail.CreatedAt, &detail.UpdatedAt,
		&detail.Owner.ID, &detail.Owner.Username, &detail.Owner.FullName, &detail.Owner.Avatar,
		&detail.TotalVideos, &detail.TotalViews); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PlaylistDetail{}, ErrNotFound
		}
		return models.PlaylistDetail{}, fmt.Errorf("select playlist detail: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url, v.duration, v.views, v.created_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE pv.playlist_id = $1 AND v.published
        ORDER BY pv.added_at ASC
    `, id)
	if err != nil {
		return models.PlaylistDetail{}, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	videos, err := collectVideoSummaries(rows)
	if err != nil {
		return models.PlaylistDetail{}, err
	}
	detail.Videos = videos

	return detail, nil
}

// ListForUser returns the user's playlists with aggregate totals.
func (r *PostgresPlaylistRepository) ListForUser(ctx context.Context, ownerID string) ([]models.PlaylistSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT p.id, p.name, p.description, p.created_at, p.updated_at,
               (SELECT COUNT(*) FROM playlist_videos pv WHERE pv.playlist_id = p.id) AS total_videos,
               (SELECT COALESCE(SUM(v.views), 0) FROM playlist_videos pv
                JOIN videos v ON v.id = pv.video_id
                WHERE pv.playlist_id = p.id) AS total_views
        FROM playlists p
        WHERE p.owner_id = $1
        ORDER BY p.created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var summaries []models.PlaylistSummary
	for rows.Next() {
		var s models.PlaylistSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt,
			&s.TotalVideos, &s.TotalViews); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	return summaries, nil
}

func scanPlaylist(row pgx.Row) (models.Playlist, error) {
	var playlist models.Playlist
	if err := row.Scan(&playlist.ID, &playlist.OwnerID, &playlist.Name,
		&playlist.Description, &playlist.CreatedAt, &playlist.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("scan playlist: %w", err)
	}
	return playlist, nil
}

var _ PlaylistRepository = (*PostgresPlaylistRepository)(nil)
