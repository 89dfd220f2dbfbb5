package reference

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrUnknownPage is returned by Get for names not in Names.
var ErrUnknownPage = errors.New("unknown reference page")

// DefaultStreamDelay is the pause after each streamed word.
const DefaultStreamDelay = 100 * time.Millisecond

// StreamWords calls emit with each space-separated word of text followed by a space,
// pausing delay after each word. It stops early when ctx is done or emit fails.
func StreamWords(ctx context.Context, text string, delay time.Duration, emit func(string) error) error {
	for _, word := range strings.Split(text, " ") {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(word + " "); err != nil {
			return err
		}
		if delay <= 0 {
			continue
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
