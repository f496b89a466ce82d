// Package sqlite provides a vectorstore.Backend persisted in a local SQLite
// database file. Vectors are stored as JSON arrays and scored in process
// with brute-force cosine similarity, which suits the small collections a
// single request produces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/rhuss/docsim/pkg/vectorstore"
)

// Store is a SQLite-backed vector Backend.
type Store struct {
	db *sql.DB
}

// Ensure Store implements vectorstore.Backend at compile time.
var _ vectorstore.Backend = (*Store)(nil)

// New opens (or creates) the database at path and applies pending
// migrations. Parent directories are created as needed.
func New(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path required")
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Name returns "sqlite".
func (s *Store) Name() string { return "sqlite" }

// CreateCollection registers a collection.
func (s *Store) CreateCollection(ctx context.Context, name string, dimensions int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (name, dimensions) VALUES (?, ?)`, name, dimensions)
	if err != nil {
		return fmt.Errorf("inserting collection: %w", err)
	}
	return nil
}

// GetCollection returns collection metadata or vectorstore.ErrNotFound.
func (s *Store) GetCollection(ctx context.Context, name string) (*vectorstore.CollectionInfo, error) {
	info := &vectorstore.CollectionInfo{Name: name}
	err := s.db.QueryRowContext(ctx, `
		SELECT c.dimensions, (SELECT COUNT(*) FROM points p WHERE p.collection = c.name)
		FROM collections c WHERE c.name = ?`, name,
	).Scan(&info.Dimensions, &info.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vectorstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	return info, nil
}

// DeleteCollection removes a collection and its points.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM points WHERE collection = ?`, name); err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return tx.Commit()
}

// DeleteAll removes every point from a collection.
func (s *Store) DeleteAll(ctx context.Context, name string) error {
	if _, err := s.dimensions(ctx, s.db, name); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM points WHERE collection = ?`, name); err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}
	return nil
}

// Upsert stores points in one transaction, replacing existing ones by ID.
func (s *Store) Upsert(ctx context.Context, name string, points []vectorstore.Point) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	dims, err := s.dimensions(ctx, tx, name)
	if err != nil {
		return err
	}

	if dims == 0 && len(points) > 0 {
		dims = len(points[0].Vector)
		if _, err := tx.ExecContext(ctx,
			`UPDATE collections SET dimensions = ? WHERE name = ?`, dims, name); err != nil {
			return fmt.Errorf("updating dimensions: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO points (collection, id, ordinal, content, vector)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			ordinal = excluded.ordinal,
			content = excluded.content,
			vector  = excluded.vector`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if len(p.Vector) != dims {
			return fmt.Errorf("point %q has %d dimensions, collection has %d: %w",
				p.ID, len(p.Vector), dims, vectorstore.ErrDimensionMismatch)
		}
		vec, err := json.Marshal(p.Vector)
		if err != nil {
			return fmt.Errorf("marshaling vector: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, name, p.ID, p.Ordinal, p.Content, string(vec)); err != nil {
			return fmt.Errorf("upserting point %q: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// Search loads the collection's vectors and returns the best k by cosine
// similarity.
func (s *Store) Search(ctx context.Context, name string, vector []float32, k int) ([]vectorstore.SearchMatch, error) {
	if _, err := s.dimensions(ctx, s.db, name); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ordinal, content, vector FROM points WHERE collection = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}
	defer rows.Close()

	var matches []vectorstore.SearchMatch
	for rows.Next() {
		var (
			m      vectorstore.SearchMatch
			vecStr string
		)
		if err := rows.Scan(&m.ID, &m.Ordinal, &m.Content, &vecStr); err != nil {
			return nil, fmt.Errorf("scanning point: %w", err)
		}
		var vec []float32
		if err := json.Unmarshal([]byte(vecStr), &vec); err != nil {
			return nil, fmt.Errorf("decoding vector of point %q: %w", m.ID, err)
		}
		m.Score = vectorstore.CosineSimilarity(vector, vec)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating points: %w", err)
	}

	return vectorstore.TopK(matches, k), nil
}

// Count returns the number of points in a collection.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	info, err := s.GetCollection(ctx, name)
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dimensions returns the stored dimensionality of a collection, or
// vectorstore.ErrNotFound.
func (s *Store) dimensions(ctx context.Context, q queryer, name string) (int, error) {
	var dims int
	err := q.QueryRowContext(ctx, `SELECT dimensions FROM collections WHERE name = ?`, name).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, vectorstore.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("querying collection: %w", err)
	}
	return dims, nil
}
