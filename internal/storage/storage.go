// Package storage defines the persistence interface for movie records.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/fortytech/internal/models"
)

var (
	// ErrMovieNotFound is returned when an update or delete matches no row.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrEmptyName is returned when a movie name is blank.
	ErrEmptyName = errors.New("movie name cannot be empty")
)

// MovieStore defines movie CRUD operations.
type MovieStore interface {
	AddMovie(ctx context.Context, name string) (*models.Movie, error)
	ListMovies(ctx context.Context) ([]*models.Movie, error)
	UpdateMovie(ctx context.Context, id int64, name string) error
	DeleteMovie(ctx context.Context, id int64) error
	CountMovies(ctx context.Context) (int64, error)
	Close() error
}
