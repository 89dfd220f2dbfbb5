package workouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/fortytech/internal/watcher"
)

// Source loads the dataset once and keeps it until the file changes.
type Source struct {
	path     string
	excluded []string
	logger   *zap.Logger

	mu       sync.RWMutex
	data     *Dataset
	loadedAt time.Time
	watch    *watcher.Watcher
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithLogger sets the logger used for reload messages.
func WithLogger(l *zap.Logger) SourceOption {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSource returns a lazily loaded dataset at path. excluded names are hidden from
// the class options.
func NewSource(path string, excluded []string, opts ...SourceOption) *Source {
	s := &Source{
		path:     path,
		excluded: append([]string(nil), excluded...),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the dataset file path.
func (s *Source) Path() string { return s.path }

// Excluded returns the class names hidden from the filter options.
func (s *Source) Excluded() []string { return append([]string(nil), s.excluded...) }

// Dataset returns the cached dataset, loading it on first use.
func (s *Source) Dataset() (*Dataset, error) {
	s.mu.RLock()
	d := s.data
	s.mu.RUnlock()
	if d != nil {
		return d, nil
	}
	return s.Reload()
}

// Reload reads the file again and replaces the cached dataset. On error the previous
// dataset is kept.
func (s *Source) Reload() (*Dataset, error) {
	d, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.data = d
	s.loadedAt = time.Now()
	s.mu.Unlock()
	s.logger.Info("workout dataset loaded", zap.String("path", s.path), zap.Int("rows", d.Len()))
	return d, nil
}

// Rows returns the cached row count without loading; zero when nothing is loaded.
func (s *Source) Rows() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Len()
}

// LoadedAt returns when the dataset was last loaded.
func (s *Source) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Watch reloads the dataset whenever the file changes, until ctx is cancelled.
func (s *Source) Watch(ctx context.Context, opts ...watcher.Option) error {
	opts = append([]watcher.Option{watcher.WithLogger(s.logger)}, opts...)
	w := watcher.New([]string{s.path}, func(string) {
		if _, err := s.Reload(); err != nil {
			s.logger.Warn("workout dataset reload failed", zap.String("path", s.path), zap.Error(err))
		}
	}, opts...)
	if err := w.Start(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.watch = w
	s.mu.Unlock()
	return nil
}

// Close stops the file watcher, if any.
func (s *Source) Close() {
	s.mu.Lock()
	w := s.watch
	s.watch = nil
	s.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}

// Options returns the filter options of the current dataset.
func (s *Source) Options() (Options, error) {
	d, err := s.Dataset()
	if err != nil {
		return Options{}, err
	}
	return d.Options(s.excluded), nil
}

// Report filters the current dataset and aggregates it.
func (s *Source) Report(sel Selection) (*Report, error) {
	d, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	return d.Report(sel, s.excluded)
}
