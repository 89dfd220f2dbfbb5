package moviecli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/fortytech/internal/models"
	"github.com/hyperjump/fortytech/internal/storage"
)

func newStore(t *testing.T) *storage.SQLiteMovieStore {
	t.Helper()
	s, err := storage.NewSQLiteMovieStore(filepath.Join(t.TempDir(), "movie.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func run(t *testing.T, store storage.MovieStore, input string) string {
	t.Helper()
	var out bytes.Buffer
	if err := Run(context.Background(), store, strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestRun_addViewQuit(t *testing.T) {
	store := newStore(t)
	out := run(t, store, "A\nThe Matrix\na\nHeat\nV\nQ\n")

	if strings.Count(out, menuPrompt) != 4 {
		t.Errorf("expected 4 menu prompts, got output:\n%s", out)
	}
	if !strings.Contains(out, namePrompt) {
		t.Error("missing name prompt")
	}
	want := listHeader + "ID: 1 NAME: The Matrix\nID: 2 NAME: Heat\n"
	if !strings.Contains(out, want) {
		t.Errorf("listing not found in output:\n%s", out)
	}
	if !strings.HasSuffix(out, "Goodbye!\n") {
		t.Errorf("expected Goodbye! at the end, got:\n%s", out)
	}
}

func TestRun_updateAndDelete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	_, _ = store.AddMovie(ctx, "Old")
	_, _ = store.AddMovie(ctx, "Keep")

	out := run(t, store, "u\n1\nNew\nD\n2\nq\n")
	if !strings.Contains(out, updateIDPrompt+newNamePrompt) {
		t.Errorf("update prompts missing:\n%s", out)
	}
	if !strings.Contains(out, deleteIDPrompt) {
		t.Errorf("delete prompt missing:\n%s", out)
	}
	movies, _ := store.ListMovies(ctx)
	if len(movies) != 1 || movies[0].Name != "New" {
		t.Errorf("after update/delete: %+v", movies)
	}
}

func TestRun_notices(t *testing.T) {
	store := newStore(t)
	out := run(t, store, "X\nD\nabc\nD\n7\nU\n9\nname\nA\n\nQ\n")
	for _, want := range []string{
		invalidChoice,
		invalidID,
		"No record found with ID 7.",
		"No record found with ID 9.",
		emptyName,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRun_EOFEndsLoop(t *testing.T) {
	store := newStore(t)
	out := run(t, store, "A\nHalf")
	if strings.Contains(out, goodbye) {
		t.Error("EOF should end without Goodbye!")
	}
	movies, _ := store.ListMovies(context.Background())
	if len(movies) != 1 || movies[0].Name != "Half" {
		t.Errorf("unterminated last line should still be read: %+v", movies)
	}

	out = run(t, store, "U\n1\n")
	if !strings.HasSuffix(out, newNamePrompt) {
		t.Errorf("EOF mid-update should stop after the prompt, got:\n%s", out)
	}
}

type failingStore struct{ storage.MovieStore }

func (failingStore) ListMovies(ctx context.Context) ([]*models.Movie, error) {
	return nil, errors.New("disk I/O error")
}

func TestRun_storeErrorStops(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), failingStore{}, strings.NewReader("V\nQ\n"), &out)
	if err == nil || !strings.Contains(err.Error(), "disk I/O error") {
		t.Errorf("expected store error, got %v", err)
	}
}

func TestRun_cancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, newStore(t), strings.NewReader("V\n"), &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
