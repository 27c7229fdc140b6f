package repo

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"dailyitems/internal/domain"
	"dailyitems/internal/hashtag"
)

// WhitelistRepositoryPG implements domain.WhitelistRepository over the
// hashtag_whitelist table.
type WhitelistRepositoryPG struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewWhitelistRepository(pool *pgxpool.Pool) *WhitelistRepositoryPG {
	return &WhitelistRepositoryPG{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var _ domain.WhitelistRepository = (*WhitelistRepositoryPG)(nil)

// ListActive returns the active entries ordered by priority (highest first)
// then tag, which is the suggestion tie-break order.
func (r *WhitelistRepositoryPG) ListActive(ctx context.Context) ([]domain.WhitelistEntry, error) {
	return r.list(ctx, true)
}

// List returns every entry, active or not, in the same ordering.
func (r *WhitelistRepositoryPG) List(ctx context.Context) ([]domain.WhitelistEntry, error) {
	return r.list(ctx, false)
}

func (r *WhitelistRepositoryPG) list(ctx context.Context, activeOnly bool) ([]domain.WhitelistEntry, error) {
	builder := r.sb.
		Select("tag", "priority", "active").
		From("hashtag_whitelist").
		OrderBy("priority DESC", "tag ASC")
	if activeOnly {
		builder = builder.Where(sq.Eq{"active": true})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []domain.WhitelistEntry
	for rows.Next() {
		var e domain.WhitelistEntry
		if err := rows.Scan(&e.Tag, &e.Priority, &e.Active); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Upsert stores an entry keyed by its normalized tag.
func (r *WhitelistRepositoryPG) Upsert(ctx context.Context, entry domain.WhitelistEntry) error {
	query, args, err := r.sb.
		Insert("hashtag_whitelist").
		Columns("tag", "priority", "active").
		Values(hashtag.Normalize(entry.Tag), entry.Priority, entry.Active).
		Suffix("ON CONFLICT (tag) DO UPDATE SET priority = EXCLUDED.priority, active = EXCLUDED.active, updated_at = now()").
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query, args...)
	return err
}
