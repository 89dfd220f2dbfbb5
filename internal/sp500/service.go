// Package sp500 implements the S&P 500 sector browser: the constituents table from
// Wikipedia, sector filtering, downloads, company search and year-to-date prices.
package sp500

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/fortytech/internal/config"
	"github.com/hyperjump/fortytech/internal/keyword"
	"github.com/hyperjump/fortytech/internal/models"
	"github.com/hyperjump/fortytech/internal/table"
)

var (
	// ErrNoSectors is returned when the sector filter selects no companies.
	ErrNoSectors = errors.New("no sectors selected")
	// ErrSource wraps failures loading the constituents page.
	ErrSource = errors.New("constituents source error")
	// ErrUnknownFormat is returned for unsupported download formats.
	ErrUnknownFormat = errors.New("unknown download format")
	// ErrClosed is returned by every lookup after Close.
	ErrClosed = errors.New("sp500 service closed")
)

// fuzzyDistance is the edit distance used when a fuzzy search retries a query.
const fuzzyDistance = 2

// NoSectorsMessage is the user-facing text for ErrNoSectors.
const NoSectorsMessage = "No Sectors Selected"

// PriceSource fetches year-to-date history for a symbol. *stocks.Client implements it.
type PriceSource interface {
	YearToDate(ctx context.Context, symbol string, now time.Time) (*models.History, error)
}

// SymbolPrices is the closing price series of one company.
type SymbolPrices struct {
	Symbol string         `json:"symbol"`
	Close  []models.Point `json:"close"`
	Error  string         `json:"error,omitempty"`
}

// SearchResult is a company search: matching rows in score order and an optional
// corrected query when nothing matched. Fuzzy is set when the rows came from the
// fuzzy retry.
type SearchResult struct {
	Table      *table.Table `json:"table"`
	Suggestion string       `json:"suggestion,omitempty"`
	Fuzzy      bool         `json:"fuzzy,omitempty"`
}

// indexRef is a search index shared by concurrent searches. A replaced index is
// closed once its last reader releases it. Fields are guarded by Service.mu.
type indexRef struct {
	idx     *keyword.BleveIndex
	readers int
	retired bool
}

func (r *indexRef) retire() error {
	r.retired = true
	if r.readers == 0 {
		return r.idx.Close()
	}
	return nil
}

// Service loads and caches the constituents table.
type Service struct {
	cfg        config.SP500Config
	httpClient *http.Client
	prices     PriceSource
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	table    *table.Table
	index    *indexRef
	loadedAt time.Time
	closed   bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHTTPClient sets the client used to fetch the constituents page.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithClock overrides the time source for cache expiry and year-to-date ranges.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService returns a browser backed by cfg.SourceURL and prices.
func NewService(cfg config.SP500Config, prices PriceSource, opts ...Option) *Service {
	s := &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		prices:     prices,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns the constituents table, refetching it once the cache TTL has passed.
func (s *Service) Table(ctx context.Context) (*table.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tableLocked(ctx)
}

func (s *Service) tableLocked(ctx context.Context) (*table.Table, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.table != nil && (s.cfg.CacheTTL <= 0 || s.now().Sub(s.loadedAt) < s.cfg.CacheTTL) {
		return s.table, nil
	}
	t, err := Fetch(ctx, s.httpClient, s.cfg.SourceURL)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{ColumnSymbol, ColumnSecurity, ColumnSector} {
		if t.ColumnIndex(col) < 0 {
			return nil, fmt.Errorf("%w: missing column %q", ErrSource, col)
		}
	}
	idx, err := buildIndex(ctx, t)
	if err != nil {
		return nil, err
	}
	if s.index != nil {
		_ = s.index.retire()
	}
	s.table, s.index, s.loadedAt = t, &indexRef{idx: idx}, s.now()
	rows, _ := t.Shape()
	s.logger.Info("S&P 500 constituents loaded", zap.Int("rows", rows), zap.String("source", s.cfg.SourceURL))
	return t, nil
}

func buildIndex(ctx context.Context, t *table.Table) (*keyword.BleveIndex, error) {
	idx, err := keyword.NewBleveIndex()
	if err != nil {
		return nil, err
	}
	companies := make([]keyword.Company, 0, len(t.Rows))
	for _, r := range t.Records() {
		companies = append(companies, keyword.Company{
			Symbol: r.Get(ColumnSymbol),
			Name:   r.Get(ColumnSecurity),
			Sector: r.Get(ColumnSector),
		})
	}
	if err := idx.IndexAll(ctx, companies); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return idx, nil
}

// Sectors returns the sorted unique GICS sectors.
func (s *Service) Sectors(ctx context.Context) ([]string, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	return t.Unique(ColumnSector)
}

// Filter returns the rows whose sector is in sectors. Nil sectors selects all.
func (s *Service) Filter(ctx context.Context, sectors []string) (*table.Table, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	if sectors == nil {
		return t, nil
	}
	return t.FilterIn(ColumnSector, sectors)
}

// DimensionText describes the shape of t.
func DimensionText(t *table.Table) string {
	rows, cols := t.Shape()
	return fmt.Sprintf("Data Dimension: %d rows and %d columns.", rows, cols)
}

// acquire returns the current table and its index. The caller must release the index.
func (s *Service) acquire(ctx context.Context) (*table.Table, *indexRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.tableLocked(ctx)
	if err != nil {
		return nil, nil, err
	}
	s.index.readers++
	return t, s.index, nil
}

func (s *Service) release(ref *indexRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref.readers--
	if ref.retired && ref.readers == 0 {
		_ = ref.idx.Close()
	}
}

// Search returns up to limit companies within sectors matching query by symbol or name.
// With fuzzy set, a query without exact hits is retried allowing a few typos.
func (s *Service) Search(ctx context.Context, query string, sectors []string, limit int, fuzzy bool) (*SearchResult, error) {
	t, ref, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.release(ref)
	idx := ref.idx

	opts := &keyword.SearchOptions{SymbolBoost: 3, Sectors: sectors}
	hits, err := idx.Search(ctx, query, limit, opts)
	if err != nil {
		return nil, err
	}
	usedFuzzy := false
	if len(hits) == 0 && fuzzy {
		opts.FuzzyEnabled, opts.Fuzziness = true, fuzzyDistance
		if hits, err = idx.Search(ctx, query, limit, opts); err != nil {
			return nil, err
		}
		usedFuzzy = len(hits) > 0
	}
	bySymbol := make(map[string][]string, len(t.Rows))
	col := t.ColumnIndex(ColumnSymbol)
	for _, row := range t.Rows {
		bySymbol[row[col]] = row
	}
	rows := make([][]string, 0, len(hits))
	for _, h := range hits {
		if row, ok := bySymbol[h.ID]; ok {
			rows = append(rows, row)
		}
	}
	res := &SearchResult{Table: table.New(t.Columns, rows), Fuzzy: usedFuzzy}
	if len(rows) == 0 && strings.TrimSpace(query) != "" {
		if sug, err := idx.Suggest(query); err == nil {
			res.Suggestion = sug
		}
	}
	return res, nil
}

// FileName returns the download name for format.
func FileName(format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		return "SP500.csv", nil
	case "xlsx":
		return "SP500.xlsx", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Download writes the filtered table to w as csv or xlsx.
func (s *Service) Download(ctx context.Context, w io.Writer, sectors []string, format string) error {
	if _, err := FileName(format); err != nil {
		return err
	}
	t, err := s.Filter(ctx, sectors)
	if err != nil {
		return err
	}
	if strings.EqualFold(format, "xlsx") {
		return t.WriteXLSX(w)
	}
	return t.WriteCSV(w)
}

// ClampCompanies limits n to [1, max].
func ClampCompanies(n, max int) int {
	if max < 1 {
		max = 1
	}
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}

// Prices fetches year-to-date closing prices for the first n companies of the filtered
// table, in table order. A failed symbol carries its error instead of failing the batch.
func (s *Service) Prices(ctx context.Context, sectors []string, n int) ([]SymbolPrices, error) {
	t, err := s.Filter(ctx, sectors)
	if err != nil {
		return nil, err
	}
	if rows, _ := t.Shape(); rows == 0 {
		return nil, ErrNoSectors
	}
	symbols, err := t.Head(ClampCompanies(n, s.cfg.MaxPriceCompanies)).Column(ColumnSymbol)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]SymbolPrices, len(symbols))
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			out[i] = SymbolPrices{Symbol: sym, Close: []models.Point{}}
			h, err := s.prices.YearToDate(ctx, sym, now)
			if err != nil {
				s.logger.Warn("Price fetch failed", zap.String("symbol", sym), zap.Error(err))
				out[i].Error = err.Error()
				return
			}
			out[i].Close = h.CloseSeries()
		}(i, sym)
	}
	wg.Wait()
	return out, nil
}

// LoadedAt returns when the table was last fetched; zero before the first load.
func (s *Service) LoadedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedAt
}

// Close releases the search index. Later lookups return ErrClosed; searches still
// running finish on the index they hold.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.index == nil {
		return nil
	}
	err := s.index.retire()
	s.index = nil
	return err
}
