package keyword

import (
	"context"
	"testing"
)

func companies() []Company {
	return []Company{
		{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Information Technology"},
		{Symbol: "MSFT", Name: "Microsoft", Sector: "Information Technology"},
		{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Health Care"},
		{Symbol: "AMCR", Name: "Amcor", Sector: "Materials"},
		{Symbol: "APA", Name: "APA Corporation", Sector: "Energy"},
		{Symbol: "", Name: "skipped without a symbol", Sector: "Energy"},
	}
}

func newIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex()
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	if err := idx.IndexAll(context.Background(), companies()); err != nil {
		t.Fatalf("IndexAll: %v", err)
	}
	return idx
}

func ids(results []*Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func TestBleveIndex_DocCount(t *testing.T) {
	idx := newIndex(t)
	n, err := idx.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("DocCount = %d, want 5", n)
	}
}

func TestBleveIndex_SearchBySymbolAndName(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()

	res, err := idx.Search(ctx, "msft", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].ID != "MSFT" {
		t.Errorf("symbol search: %v", ids(res))
	}

	res, err = idx.Search(ctx, "Johnson", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].ID != "JNJ" {
		t.Errorf("name search: %v", ids(res))
	}
}

func TestBleveIndex_SymbolBoost(t *testing.T) {
	idx := newIndex(t)
	// "apa" is both a symbol and a word of the APA name; boosting symbols keeps it first.
	res, err := idx.Search(context.Background(), "apa", 10, &SearchOptions{SymbolBoost: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(res) == 0 || res[0].ID != "APA" {
		t.Errorf("boosted search: %v", ids(res))
	}
}

func TestBleveIndex_SectorFilter(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()

	res, err := idx.Search(ctx, "apple microsoft", 10, &SearchOptions{Sectors: []string{"Health Care"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 0 {
		t.Errorf("expected no hits outside the sector, got %v", ids(res))
	}

	res, err = idx.Search(ctx, "apple microsoft", 10, &SearchOptions{Sectors: []string{"Information Technology"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Errorf("expected two technology hits, got %v", ids(res))
	}

	res, err = idx.Search(ctx, "apple", 10, &SearchOptions{Sectors: []string{}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 0 {
		t.Errorf("empty sector selection should match nothing, got %v", ids(res))
	}
}

func TestBleveIndex_Fuzzy(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()
	res, err := idx.Search(ctx, "microsft", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 0 {
		t.Errorf("exact search should miss a typo, got %v", ids(res))
	}
	res, err = idx.Search(ctx, "microsft", 10, &SearchOptions{FuzzyEnabled: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].ID != "MSFT" {
		t.Errorf("fuzzy search: %v", ids(res))
	}
}

func TestBleveIndex_SearchEmpty(t *testing.T) {
	idx := newIndex(t)
	for _, q := range []string{"", "   "} {
		res, err := idx.Search(context.Background(), q, 10, nil)
		if err != nil || len(res) != 0 {
			t.Errorf("Search(%q) = %v, %v", q, ids(res), err)
		}
	}
	res, err := idx.Search(context.Background(), "apple", 0, nil)
	if err != nil || len(res) != 0 {
		t.Errorf("limit 0: %v, %v", ids(res), err)
	}
}

func TestBleveIndex_IndexAllReplaces(t *testing.T) {
	idx := newIndex(t)
	ctx := context.Background()
	if err := idx.IndexAll(ctx, []Company{{Symbol: "AAPL", Name: "Renamed Fruit", Sector: "Consumer Staples"}}); err != nil {
		t.Fatal(err)
	}
	n, _ := idx.DocCount()
	if n != 5 {
		t.Errorf("DocCount after replace = %d", n)
	}
	res, err := idx.Search(ctx, "fruit", 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].ID != "AAPL" {
		t.Errorf("replaced doc: %v", ids(res))
	}
}

func TestBleveIndex_IndexAllCancelled(t *testing.T) {
	idx, err := NewBleveIndex()
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := idx.IndexAll(ctx, companies()); err == nil {
		t.Error("expected context error")
	}
}

func TestBleveIndex_Suggest(t *testing.T) {
	idx := newIndex(t)
	got, err := idx.Suggest("microsfot")
	if err != nil {
		t.Fatal(err)
	}
	if got != "microsoft" {
		t.Errorf("Suggest = %q, want %q", got, "microsoft")
	}
	got, err = idx.Suggest("apple")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("known term should not be changed, got %q", got)
	}
}
