package keyword

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	keywordanalyzer "github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

const batchSize = 200

var _ Index = (*BleveIndex)(nil)

// BleveIndex implements Index with an in-memory Bleve index.
type BleveIndex struct {
	mu    sync.RWMutex
	index bleve.Index
}

// NewBleveIndex creates an empty in-memory index.
func NewBleveIndex() (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer lowercases and tokenizes without stemming so "apple" matches "Apple Inc.".
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("symbol", textFieldMapping)
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	sectorFieldMapping := bleve.NewTextFieldMapping()
	sectorFieldMapping.Analyzer = keywordanalyzer.Name
	docMapping.AddFieldMappingsAt("sector", sectorFieldMapping)
	im.AddDocumentMapping("company", docMapping)
	im.DefaultType = "company"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// IndexAll indexes companies by symbol in batches. Existing symbols are replaced.
func (b *BleveIndex) IndexAll(ctx context.Context, companies []Company) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch := b.index.NewBatch()
	for _, c := range companies {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := strings.TrimSpace(c.Symbol)
		if id == "" {
			continue
		}
		if err := batch.Index(id, c); err != nil {
			return fmt.Errorf("failed to index %s: %w", id, err)
		}
		if batch.Size() >= batchSize {
			if err := b.index.Batch(batch); err != nil {
				return fmt.Errorf("failed to write batch: %w", err)
			}
			batch.Reset()
		}
	}
	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to write batch: %w", err)
		}
	}
	return nil
}

// Search matches query against symbol and name and returns up to limit hits in score order.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return []*Result{}, nil
	}
	symbolBoost := 1.0
	fuzzy := false
	fuzziness := 1
	var sectors []string
	if opts != nil {
		if opts.SymbolBoost > 1 {
			symbolBoost = opts.SymbolBoost
		}
		fuzzy = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
		sectors = opts.Sectors
		if sectors != nil && len(sectors) == 0 {
			return []*Result{}, nil
		}
	}

	q := blevequery.Query(bleve.NewDisjunctionQuery(
		fieldQuery(query, "symbol", symbolBoost, fuzzy, fuzziness),
		fieldQuery(query, "name", 1, fuzzy, fuzziness),
	))
	if sectors != nil {
		q = bleve.NewConjunctionQuery(q, sectorQuery(sectors))
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	b.mu.RLock()
	res, err := b.index.SearchInContext(ctx, req)
	b.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Result, len(res.Hits))
	for i, hit := range res.Hits {
		out[i] = &Result{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

func fieldQuery(text, field string, boost float64, fuzzy bool, fuzziness int) blevequery.Query {
	if !fuzzy {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(field)
		mq.SetBoost(boost)
		return mq
	}
	terms := tokenizeQuery(text)
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		fq.SetBoost(boost)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

func sectorQuery(sectors []string) blevequery.Query {
	queries := make([]blevequery.Query, 0, len(sectors))
	for _, s := range sectors {
		tq := bleve.NewTermQuery(s)
		tq.SetField("sector")
		queries = append(queries, tq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// tokenizeQuery splits query into lowercase terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Suggest returns query with each unknown term replaced by the closest indexed name or
// symbol term (edit distance at most 2, ties broken by document frequency). It returns
// "" when no term changes.
func (b *BleveIndex) Suggest(query string) (string, error) {
	dict, err := b.terms()
	if err != nil {
		return "", err
	}
	terms := tokenizeQuery(query)
	changed := false
	for i, term := range terms {
		if _, ok := dict[term]; ok {
			continue
		}
		if best := closestTerm(term, dict, 2); best != "" {
			terms[i] = best
			changed = true
		}
	}
	if !changed {
		return "", nil
	}
	return strings.Join(terms, " "), nil
}

// terms collects the symbol and name dictionaries with their document frequencies.
func (b *BleveIndex) terms() (map[string]uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]uint64)
	for _, field := range []string{"symbol", "name"} {
		fd, err := b.index.FieldDict(field)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s terms: %w", field, err)
		}
		for {
			entry, err := fd.Next()
			if err != nil || entry == nil {
				break
			}
			out[entry.Term] += entry.Count
		}
		_ = fd.Close()
	}
	return out, nil
}

func closestTerm(term string, dict map[string]uint64, maxDistance int) string {
	type candidate struct {
		term     string
		distance int
		freq     uint64
	}
	var cands []candidate
	n := len([]rune(term))
	for t, freq := range dict {
		if d := len([]rune(t)) - n; d > maxDistance || -d > maxDistance {
			continue
		}
		if dist := LevenshteinDistance(term, t); dist <= maxDistance {
			cands = append(cands, candidate{t, dist, freq})
		}
	}
	if len(cands) == 0 {
		return ""
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].distance != cands[j].distance {
			return cands[i].distance < cands[j].distance
		}
		if cands[i].freq != cands[j].freq {
			return cands[i].freq > cands[j].freq
		}
		return cands[i].term < cands[j].term
	})
	return cands[0].term
}

// DocCount returns the number of indexed companies.
func (b *BleveIndex) DocCount() (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.index.DocCount()
}

// Close closes the index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
