package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsefeed/autopub/internal/domain"
)

const postColumns = "id, title, content, platform, priority, status, external_ref, error_message, created_at, updated_at"

type pgPostStore struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewPgPostStore returns a PostStore backed by PostgreSQL.
func NewPgPostStore(pool *pgxpool.Pool) PostStore {
	return &pgPostStore{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *pgPostStore) Enqueue(ctx context.Context, p *domain.Post) error {
	now := time.Now().UTC()
	p.Status = domain.StatusPending
	p.CreatedAt = now
	p.UpdatedAt = now

	err := s.pool.QueryRow(ctx, `
		INSERT INTO posts (title, content, platform, priority, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		p.Title, p.Content, p.Platform, p.Priority, p.Status, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *pgPostStore) DequeueNext(ctx context.Context) (*domain.Post, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE status = 'pending'
		ORDER BY created_at ASC, id ASC
		LIMIT 1`)

	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoPending
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue next: %w", err)
	}
	return p, nil
}

func (s *pgPostStore) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE posts SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *pgPostStore) SetResult(ctx context.Context, id int64, status domain.Status, externalRef, errMsg *string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE posts
		SET status = $1, external_ref = $2, error_message = $3, updated_at = $4
		WHERE id = $5`,
		status, externalRef, errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *pgPostStore) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)

	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (s *pgPostStore) List(ctx context.Context, f domain.ListFilter) ([]*domain.Post, int, error) {
	where := sq.And{}
	if f.Status != nil {
		where = append(where, sq.Eq{"status": *f.Status})
	}
	if f.Platform != nil {
		where = append(where, sq.Eq{"platform": *f.Platform})
	}

	countQuery := s.sb.Select("COUNT(*)").From("posts")
	listQuery := s.sb.Select(postColumns).From("posts")
	if len(where) > 0 {
		countQuery = countQuery.Where(where)
		listQuery = listQuery.Where(where)
	}

	sqlStr, args, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := s.pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	listQuery = listQuery.OrderBy("created_at DESC", "id DESC")
	if f.Limit > 0 {
		listQuery = listQuery.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		listQuery = listQuery.Offset(uint64(f.Offset))
	}

	sqlStr, args, err = listQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

func (s *pgPostStore) Stats(ctx context.Context) (*domain.Stats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM posts GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats domain.Stats
	for rows.Next() {
		var status domain.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		switch status {
		case domain.StatusPending:
			stats.Pending = count
		case domain.StatusProcessing:
			stats.Processing = count
		case domain.StatusDone:
			stats.Done = count
		case domain.StatusFailed:
			stats.Failed = count
		}
		stats.Total += count
	}
	return &stats, rows.Err()
}

// scanPost reads a single post row from any pgx row type.
func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Platform, &p.Priority,
		&p.Status, &p.ExternalRef, &p.ErrorMessage,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
