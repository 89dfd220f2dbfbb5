package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/fortytech/internal/models"
)

// SQLiteMovieStore implements MovieStore using SQLite.
type SQLiteMovieStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteMovieStore opens or creates a SQLite database at dbPath and creates the
// movies table if it is missing. Parent directories are created as needed.
func NewSQLiteMovieStore(dbPath string) (*SQLiteMovieStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteMovieStore{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS movies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteMovieStore) Path() string {
	return s.path
}

// AddMovie inserts a movie and returns it with its assigned id.
func (s *SQLiteMovieStore) AddMovie(ctx context.Context, name string) (*models.Movie, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO movies (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to insert movie: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read movie id: %w", err)
	}
	return &models.Movie{ID: id, Name: name}, nil
}

// ListMovies returns all movies ordered by id.
func (s *SQLiteMovieStore) ListMovies(ctx context.Context) ([]*models.Movie, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	var movies []*models.Movie
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, &m)
	}
	return movies, rows.Err()
}

// UpdateMovie renames the movie with the given id.
func (s *SQLiteMovieStore) UpdateMovie(ctx context.Context, id int64, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	res, err := s.db.ExecContext(ctx, `UPDATE movies SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}
	return expectOneRow(res, id)
}

// DeleteMovie removes the movie with the given id.
func (s *SQLiteMovieStore) DeleteMovie(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	return expectOneRow(res, id)
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrMovieNotFound, id)
	}
	return nil
}

// CountMovies returns the number of rows.
func (s *SQLiteMovieStore) CountMovies(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteMovieStore) Close() error {
	return s.db.Close()
}
