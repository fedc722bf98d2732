// internal/adapter/storage/post_store.go

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"ecodash/internal/domain/post"
)

// ArchiveSourceName identifies the Postgres archive in logs and overview output
const ArchiveSourceName = "archive"

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// PostStore reads archived posts from Postgres and serves them as a post source
type PostStore struct {
	db *pgxpool.Pool
}

// NewPostStore creates a new post store
func NewPostStore(db *pgxpool.Pool) *PostStore {
	return &PostStore{
		db: db,
	}
}

// Connect opens a pool for the given DSN and verifies it with a ping
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return pool, nil
}

// Name returns the source name
func (s *PostStore) Name() string {
	return ArchiveSourceName
}

// Available reports whether a pool is configured
func (s *PostStore) Available() bool {
	return s != nil && s.db != nil
}

// Fetch returns the newest archived posts, newest first
func (s *PostStore) Fetch(ctx context.Context, limit int) ([]post.RawRecord, error) {
	if !s.Available() {
		return nil, fmt.Errorf("%w: post archive not configured", post.ErrSourceUnavailable)
	}
	if limit <= 0 {
		return []post.RawRecord{}, nil
	}

	query := `
		SELECT id, title, body, author, source_group, created_at,
			votes, comments, shares, url, flair, platform
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: error querying posts: %v", post.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	records := make([]post.RawRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return records, nil
}

// SavePosts upserts canonical posts into the archive
func (s *PostStore) SavePosts(ctx context.Context, posts []post.Post) error {
	if !s.Available() {
		return fmt.Errorf("%w: post archive not configured", post.ErrSourceUnavailable)
	}

	query := `
		INSERT INTO posts (
			id, title, body, author, source_group, created_at,
			votes, comments, shares, url, flair, platform
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12
		)
		ON CONFLICT (id) DO UPDATE
		SET
			votes = $7,
			comments = $8,
			shares = $9,
			flair = $11
	`

	for _, p := range posts {
		_, err := s.db.Exec(
			ctx,
			query,
			p.ID,
			p.Title,
			p.Text,
			p.Author,
			p.SourceGroup,
			p.Timestamp,
			p.Upvotes,
			p.Comments,
			p.Shares,
			p.URL,
			p.Flair,
			p.Platform,
		)
		if err != nil {
			return fmt.Errorf("error saving post %s: %w", p.ID, err)
		}
	}

	return nil
}

// scanRecord converts one posts row into a raw record. Nullable text
// columns come back as empty strings.
func scanRecord(row rowScanner) (post.RawRecord, error) {
	var (
		rec                                    post.RawRecord
		title, body, author, group, url, flair *string
		createdAt                              *time.Time
		votes, comments, shares                *int
	)

	err := row.Scan(
		&rec.ID,
		&title,
		&body,
		&author,
		&group,
		&createdAt,
		&votes,
		&comments,
		&shares,
		&url,
		&flair,
		&rec.Platform,
	)
	if err != nil {
		return post.RawRecord{}, fmt.Errorf("error scanning post row: %w", err)
	}

	rec.Title = deref(title)
	rec.Text = deref(body)
	rec.Author = deref(author)
	rec.SourceGroup = deref(group)
	rec.URL = deref(url)
	rec.Flair = deref(flair)
	if createdAt != nil {
		rec.CreatedAt = *createdAt
	}
	if votes != nil {
		rec.Votes = *votes
	}
	if comments != nil {
		rec.Comments = *comments
	}
	if shares != nil {
		rec.Shares = *shares
	}

	return rec, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
