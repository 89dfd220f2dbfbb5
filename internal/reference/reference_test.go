package reference

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestGet(t *testing.T) {
	for _, name := range Names() {
		p, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if p.Name != name || len(p.Blocks) == 0 || p.Blocks[0].Kind != KindTitle {
			t.Errorf("page %q: %+v", name, p)
		}
	}
	if _, err := Get("widgets"); !errors.Is(err, ErrUnknownPage) {
		t.Errorf("expected ErrUnknownPage, got %v", err)
	}
}

func TestTextElements_kinds(t *testing.T) {
	seen := map[Kind]int{}
	for _, b := range TextElements().Blocks {
		seen[b.Kind]++
		if b.Kind == KindCode && (b.Language != "go" || !b.LineNumbers) {
			t.Errorf("code block: %+v", b)
		}
	}
	for _, k := range []Kind{KindTitle, KindHeader, KindSubheader, KindCaption, KindCode, KindText, KindLatex} {
		if seen[k] == 0 {
			t.Errorf("missing %s block", k)
		}
	}
	if seen[KindDivider] != 2 {
		t.Errorf("dividers: %d", seen[KindDivider])
	}
}

func TestMetrics(t *testing.T) {
	got, err := Metrics(DataTable())
	if err != nil {
		t.Fatal(err)
	}
	want := []Metric{
		{Label: "Column A", Value: 10, Delta: -10},
		{Label: "Column B", Value: 100, Delta: 200},
		{Label: "Column C", Value: 1000, Delta: 50},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("metrics: %+v", got)
	}
}

func TestDataElements_recordsJSON(t *testing.T) {
	var records interface{}
	for _, b := range DataElements().Blocks {
		if b.Kind == KindJSON {
			records = b.JSON
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"A":1,"B":10,"C":100},{"A":2,"B":20,"C":200},{"A":3,"B":30,"C":300},{"A":4,"B":40,"C":400}]`
	if string(data) != want {
		t.Errorf("records:\n got %s\nwant %s", data, want)
	}
}

func TestDataCSV(t *testing.T) {
	data, err := DataCSV()
	if err != nil {
		t.Fatal(err)
	}
	want := "A,B,C\n1,10,100\n2,20,200\n3,30,300\n4,40,400\n"
	if string(data) != want {
		t.Errorf("csv:\n%s", data)
	}
}

func TestStreamWords(t *testing.T) {
	var words []string
	err := StreamWords(context.Background(), "one two  three", 0, func(w string) error {
		words = append(words, w)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"one ", "two ", " ", "three "}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("words: %q", words)
	}
}

func TestStreamWords_delay(t *testing.T) {
	start := time.Now()
	n := 0
	err := StreamWords(context.Background(), "a b c", 20*time.Millisecond, func(string) error {
		n++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 || time.Since(start) < 60*time.Millisecond {
		t.Errorf("emitted %d words in %v", n, time.Since(start))
	}
}

func TestStreamWords_cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var got strings.Builder
	err := StreamWords(ctx, StreamText, time.Second, func(w string) error {
		got.WriteString(w)
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if got.String() != "\n " {
		t.Errorf("emitted %q before cancel", got.String())
	}
}

func TestStreamWords_emitError(t *testing.T) {
	boom := errors.New("client gone")
	err := StreamWords(context.Background(), "a b", 0, func(string) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("got %v", err)
	}
}
