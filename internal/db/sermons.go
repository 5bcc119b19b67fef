package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/homilyhq/homily/internal/models"
)

func (db *DB) CreateSermon(ctx context.Context, sermon *models.Sermon) error {
	query := `
		INSERT INTO sermons (id, owner_id, series_id, title, body, audio_chunks)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	return db.QueryRowContext(
		ctx, query,
		sermon.ID, sermon.OwnerID, sermon.SeriesID, sermon.Title,
		sermon.Body, sermon.AudioChunks,
	).Scan(&sermon.CreatedAt, &sermon.UpdatedAt)
}

func (db *DB) GetSermon(ctx context.Context, id uuid.UUID) (*models.Sermon, error) {
	query := `
		SELECT
			id, owner_id, series_id, title, body, audio_chunks,
			audio_voice, audio_model, audio_last_generated,
			created_at, updated_at
		FROM sermons
		WHERE id = $1
	`

	sermon := &models.Sermon{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&sermon.ID, &sermon.OwnerID, &sermon.SeriesID, &sermon.Title,
		&sermon.Body, &sermon.AudioChunks,
		&sermon.AudioVoice, &sermon.AudioModel, &sermon.AudioLastGenerated,
		&sermon.CreatedAt, &sermon.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sermon not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sermon: %w", err)
	}

	return sermon, nil
}

// ListSermons returns an owner's sermons ordered by creation date
// (newest first), with limit/offset pagination.
func (db *DB) ListSermons(ctx context.Context, ownerID string, limit, offset int) ([]models.Sermon, error) {
	query := `
		SELECT
			id, owner_id, series_id, title, body, audio_chunks,
			audio_voice, audio_model, audio_last_generated,
			created_at, updated_at
		FROM sermons
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sermons: %w", err)
	}
	defer rows.Close()

	var sermons []models.Sermon
	for rows.Next() {
		var s models.Sermon
		if err := rows.Scan(
			&s.ID, &s.OwnerID, &s.SeriesID, &s.Title,
			&s.Body, &s.AudioChunks,
			&s.AudioVoice, &s.AudioModel, &s.AudioLastGenerated,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sermon: %w", err)
		}
		sermons = append(sermons, s)
	}

	return sermons, nil
}

func (db *DB) CountSermons(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sermons WHERE owner_id = $1`, ownerID).Scan(&count)
	return count, err
}

func (db *DB) UpdateSermon(ctx context.Context, id uuid.UUID, title, body *string) error {
	query := `
		UPDATE sermons
		SET title = COALESCE($1, title),
		    body = COALESCE($2, body),
		    updated_at = NOW()
		WHERE id = $3
	`
	_, err := db.ExecContext(ctx, query, title, body, id)
	return err
}

func (db *DB) DeleteSermon(ctx context.Context, id uuid.UUID) error {
	_, err := db.ExecContext(ctx, `DELETE FROM sermons WHERE id = $1`, id)
	return err
}

// ReplaceSermonChunks overwrites the sermon's optimized chunk set.
// Called by the chunk-optimization step; chunks are immutable afterwards.
func (db *DB) ReplaceSermonChunks(ctx context.Context, id uuid.UUID, chunks models.SavedChunkList) error {
	query := `UPDATE sermons SET audio_chunks = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, chunks, id)
	return err
}

// UpdateSermonAudio is the metadata-only partial update written once at the
// end of a successful synthesis run. Rerunning a generation simply
// overwrites the same three fields.
func (db *DB) UpdateSermonAudio(ctx context.Context, id uuid.UUID, meta models.SermonAudioMetadata) error {
	query := `
		UPDATE sermons
		SET audio_voice = $1, audio_model = $2, audio_last_generated = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := db.ExecContext(ctx, query, meta.Voice, meta.Model, meta.LastGenerated, id)
	return err
}
