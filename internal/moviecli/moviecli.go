// Package moviecli implements the interactive add/view/update/delete menu over a MovieStore.
package moviecli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hyperjump/fortytech/internal/storage"
)

const (
	menuPrompt      = "Enter your choice: Press A to add a new record, Press V to view all records, Press D to delete a record, Press U to update a record, Press Q to quit: \n"
	namePrompt      = "Please enter the name of a movie: \n"
	updateIDPrompt  = "Please enter the ID of the record you want to update: \n"
	newNamePrompt   = "Please enter the new name of a movie: \n"
	deleteIDPrompt  = "Please enter the ID of the record you want to delete: \n"
	listHeader      = "Here are all the records: \n"
	goodbye         = "Goodbye!"
	invalidChoice   = "Invalid choice. Please try again."
	invalidID       = "Invalid ID. Please enter a number."
	emptyName       = "Movie name cannot be empty."
	notFoundMessage = "No record found with ID %d."
)

// Run reads menu choices from in until Q or end of input. Store failures other
// than a missing id or a blank name end the loop with an error.
func Run(ctx context.Context, store storage.MovieStore, in io.Reader, out io.Writer) error {
	s := &session{store: store, scanner: bufio.NewScanner(in), out: out}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, menuPrompt)
		choice, ok := s.readLine()
		if !ok {
			return s.scanner.Err()
		}
		var err error
		switch strings.ToUpper(strings.TrimSpace(choice)) {
		case "A":
			err = s.add(ctx)
		case "V":
			err = s.view(ctx)
		case "U":
			err = s.update(ctx)
		case "D":
			err = s.delete(ctx)
		case "Q":
			fmt.Fprintln(out, goodbye)
			return nil
		default:
			fmt.Fprintln(out, invalidChoice)
			continue
		}
		if errors.Is(err, io.EOF) {
			return s.scanner.Err()
		}
		if err != nil {
			return err
		}
	}
}

type session struct {
	store   storage.MovieStore
	scanner *bufio.Scanner
	out     io.Writer
}

func (s *session) readLine() (string, bool) {
	if !s.scanner.Scan() {
		return "", false
	}
	return s.scanner.Text(), true
}

// ask prints prompt and returns the next line, or io.EOF when input ends.
func (s *session) ask(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, ok := s.readLine()
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

// askID returns the parsed id; ok is false when a notice was printed instead.
func (s *session) askID(prompt string) (id int64, ok bool, err error) {
	line, err := s.ask(prompt)
	if err != nil {
		return 0, false, err
	}
	id, perr := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if perr != nil {
		fmt.Fprintln(s.out, invalidID)
		return 0, false, nil
	}
	return id, true, nil
}

func (s *session) add(ctx context.Context) error {
	name, err := s.ask(namePrompt)
	if err != nil {
		return err
	}
	_, err = s.store.AddMovie(ctx, name)
	return s.report(err, 0)
}

func (s *session) view(ctx context.Context) error {
	movies, err := s.store.ListMovies(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, listHeader)
	for _, m := range movies {
		fmt.Fprintf(s.out, "ID: %d NAME: %s\n", m.ID, m.Name)
	}
	return nil
}

func (s *session) update(ctx context.Context) error {
	id, ok, err := s.askID(updateIDPrompt)
	if err != nil || !ok {
		return err
	}
	name, err := s.ask(newNamePrompt)
	if err != nil {
		return err
	}
	return s.report(s.store.UpdateMovie(ctx, id, name), id)
}

func (s *session) delete(ctx context.Context) error {
	id, ok, err := s.askID(deleteIDPrompt)
	if err != nil || !ok {
		return err
	}
	return s.report(s.store.DeleteMovie(ctx, id), id)
}

// report prints a notice for recoverable store errors and passes others through.
func (s *session) report(err error, id int64) error {
	switch {
	case errors.Is(err, storage.ErrMovieNotFound):
		fmt.Fprintf(s.out, notFoundMessage+"\n", id)
		return nil
	case errors.Is(err, storage.ErrEmptyName):
		fmt.Fprintln(s.out, emptyName)
		return nil
	}
	return err
}
