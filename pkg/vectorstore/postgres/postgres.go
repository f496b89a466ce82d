// Package postgres provides a vectorstore.Backend on PostgreSQL with the
// pgvector extension. It uses pgx/v5 for connection pooling and delegates
// cosine ranking to the database's <=> operator.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/docsim/pkg/vectorstore"
)

// Store is a pgvector-backed vector Backend.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements vectorstore.Backend at compile time.
var _ vectorstore.Backend = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Name returns "postgres".
func (s *Store) Name() string { return "postgres" }

// CreateCollection registers a collection.
func (s *Store) CreateCollection(ctx context.Context, name string, dimensions int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO collections (name, dimensions) VALUES ($1, $2)`, name, dimensions)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("collection %q already exists", name)
		}
		return fmt.Errorf("inserting collection: %w", err)
	}
	return nil
}

// GetCollection returns collection metadata or vectorstore.ErrNotFound.
func (s *Store) GetCollection(ctx context.Context, name string) (*vectorstore.CollectionInfo, error) {
	info := &vectorstore.CollectionInfo{Name: name}
	err := s.pool.QueryRow(ctx, `
		SELECT c.dimensions, (SELECT COUNT(*) FROM collection_items i WHERE i.collection = c.name)
		FROM collections c WHERE c.name = $1`, name,
	).Scan(&info.Dimensions, &info.Count)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, vectorstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	return info, nil
}

// DeleteCollection removes a collection. Items are removed by the
// ON DELETE CASCADE constraint.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM collections WHERE name = $1`, name); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// DeleteAll removes every item from a collection.
func (s *Store) DeleteAll(ctx context.Context, name string) error {
	if _, err := s.dimensions(ctx, s.pool, name); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM collection_items WHERE collection = $1`, name); err != nil {
		return fmt.Errorf("deleting items: %w", err)
	}
	return nil
}

// Upsert stores points in one transaction, replacing existing ones by ID.
// A collection created without dimensions adopts the length of the first
// vector it receives.
func (s *Store) Upsert(ctx context.Context, name string, points []vectorstore.Point) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	dims, err := s.dimensions(ctx, tx, name)
	if err != nil {
		return err
	}

	if dims == 0 && len(points) > 0 {
		dims = len(points[0].Vector)
		if _, err := tx.Exec(ctx,
			`UPDATE collections SET dimensions = $1 WHERE name = $2`, dims, name); err != nil {
			return fmt.Errorf("updating dimensions: %w", err)
		}
	}

	batch := &pgx.Batch{}
	for _, p := range points {
		if len(p.Vector) != dims {
			return fmt.Errorf("point %q has %d dimensions, collection has %d: %w",
				p.ID, len(p.Vector), dims, vectorstore.ErrDimensionMismatch)
		}
		batch.Queue(`
			INSERT INTO collection_items (collection, id, ordinal, content, embedding)
			VALUES ($1, $2, $3, $4, $5::vector)
			ON CONFLICT (collection, id) DO UPDATE SET
				ordinal = EXCLUDED.ordinal,
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding`,
			name, p.ID, p.Ordinal, p.Content, formatVector(p.Vector),
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting items: %w", err)
	}

	return tx.Commit(ctx)
}

// Search returns the k nearest items by cosine distance.
func (s *Store) Search(ctx context.Context, name string, vector []float32, k int) ([]vectorstore.SearchMatch, error) {
	if k <= 0 {
		return nil, nil
	}
	if _, err := s.dimensions(ctx, s.pool, name); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, ordinal, content, 1 - (embedding <=> $2::vector) AS score
		FROM collection_items
		WHERE collection = $1
		ORDER BY embedding <=> $2::vector, ordinal
		LIMIT $3`,
		name, formatVector(vector), k,
	)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var matches []vectorstore.SearchMatch
	for rows.Next() {
		var (
			m     vectorstore.SearchMatch
			score float64
		)
		if err := rows.Scan(&m.ID, &m.Ordinal, &m.Content, &score); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		m.Score = float32(score)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	return matches, nil
}

// Count returns the number of items in a collection.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	info, err := s.GetCollection(ctx, name)
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// dimensions returns the stored dimensionality of a collection, or
// vectorstore.ErrNotFound.
func (s *Store) dimensions(ctx context.Context, q queryRower, name string) (int, error) {
	var dims int
	err := q.QueryRow(ctx, `SELECT dimensions FROM collections WHERE name = $1`, name).Scan(&dims)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, vectorstore.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("querying collection: %w", err)
	}
	return dims, nil
}

// formatVector renders v in pgvector's text format: "[0.1,0.2,0.3]".
func formatVector(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
