package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dailyitems/internal/domain"
)

// CommentRepositoryPG implements domain.CommentRepository.
type CommentRepositoryPG struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepositoryPG {
	return &CommentRepositoryPG{pool: pool}
}

var _ domain.CommentRepository = (*CommentRepositoryPG)(nil)

// SaveAll inserts comments in one batch and returns their ids in order.
// Inserts only; existing comments for the target are never overwritten, so
// concurrent generation runs for one target stay safe.
func (r *CommentRepositoryPG) SaveAll(ctx context.Context, comments []domain.Comment) ([]string, error) {
	if len(comments) == 0 {
		return nil, nil
	}
	query := `
INSERT INTO comments (id, target_type, target_id, text, translation, author_type, job_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW());
`
	batch := &pgx.Batch{}
	ids := make([]string, len(comments))
	for i, c := range comments {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id
		batch.Queue(query, id, c.TargetType, c.TargetID, c.Text, c.Translation, c.Author, c.JobID)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer func() {
		_ = results.Close()
	}()
	for i := range comments {
		if _, err := results.Exec(); err != nil {
			return nil, fmt.Errorf("insert comment %d: %w", i, err)
		}
	}
	return ids, nil
}

// ListByTarget returns the newest comments for a target entity.
func (r *CommentRepositoryPG) ListByTarget(ctx context.Context, targetType domain.TargetType, targetID string, limit int) ([]domain.Comment, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
SELECT id, target_type, target_id, text, translation, author_type, job_id, created_at
FROM comments
WHERE target_type = $1 AND target_id = $2
ORDER BY created_at DESC, id
LIMIT $3;
`
	rows, err := r.pool.Query(ctx, query, targetType, targetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Comment
	for rows.Next() {
		var c domain.Comment
		var author string
		if err := rows.Scan(&c.ID, &c.TargetType, &c.TargetID, &c.Text, &c.Translation, &author, &c.JobID, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Author = domain.NormalizeAuthorType(author)
		out = append(out, c)
	}
	return out, rows.Err()
}
