// Package stocks fetches daily price history from the Yahoo Finance chart API.
package stocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/fortytech/internal/models"
)

// DefaultBaseURL is the Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// DateLayout is the layout of start and end dates accepted by the API and CLI.
const DateLayout = "2006-01-02"

// NoDataMessage is the user-facing text for ErrNoData.
const NoDataMessage = "No data available for the specified date range."

var (
	// ErrNoData is returned when the range contains no trading days.
	ErrNoData = errors.New("no data available for the specified date range")
	// ErrInvalidRange is returned for malformed dates or an end before the start.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrInvalidSymbol is returned for an empty ticker symbol.
	ErrInvalidSymbol = errors.New("invalid ticker symbol")
	// ErrEndpoint wraps failures talking to the quote service.
	ErrEndpoint = errors.New("quote endpoint error")
)

const userAgent = "Mozilla/5.0 (compatible; fortytech/1.0)"

// Client fetches price histories.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// NewClient returns a client for baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseRange parses start and end dates (YYYY-MM-DD). The end date is exclusive.
func ParseRange(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(DateLayout, strings.TrimSpace(start))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %q", ErrInvalidRange, start)
	}
	e, err := time.Parse(DateLayout, strings.TrimSpace(end))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %q", ErrInvalidRange, end)
	}
	if !e.After(s) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidRange, end, start)
	}
	return s, e, nil
}

// History returns the daily bars of symbol in [start, end). Days without a close are skipped.
func (c *Client) History(ctx context.Context, symbol string, start, end time.Time) (*models.History, error) {
	return c.fetch(ctx, symbol, start, end, false)
}

// YearToDate returns the dividend- and split-adjusted daily bars of symbol since
// 1 January of now's year.
func (c *Client) YearToDate(ctx context.Context, symbol string, now time.Time) (*models.History, error) {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return c.fetch(ctx, symbol, start, now.Add(24*time.Hour), true)
}

func (c *Client) fetch(ctx context.Context, symbol string, start, end time.Time, adjusted bool) (*models.History, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrInvalidSymbol
	}
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "div,split")
	endpoint := c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEndpoint, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrEndpoint, err)
	}

	var payload chartResponse
	decodeErr := json.Unmarshal(data, &payload)
	if resp.StatusCode == http.StatusNotFound || (decodeErr == nil && payload.Chart.Error != nil && payload.Chart.Error.Code == "Not Found") {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Quote request failed", zap.Int("status", resp.StatusCode), zap.String("symbol", symbol))
		return nil, fmt.Errorf("%w: status %d: %s", ErrEndpoint, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrEndpoint, decodeErr)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrEndpoint, payload.Chart.Error.Description)
	}

	h := &models.History{Symbol: symbol, Bars: []models.PriceBar{}}
	for _, r := range payload.Chart.Result {
		h.Bars = append(h.Bars, r.bars(adjusted)...)
	}
	if len(h.Bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	c.logger.Debug("Fetched price history", zap.String("symbol", symbol), zap.Int("bars", len(h.Bars)))
	return h, nil
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol           string `json:"symbol"`
		ExchangeTimezone string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// bars converts the column arrays into bars. With adjusted set, open, high, low and
// close are scaled by the adjusted-close ratio of the day.
func (r chartResult) bars(adjusted bool) []models.PriceBar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]
	var adj []*float64
	if adjusted && len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}
	loc := time.UTC
	if r.Meta.ExchangeTimezone != "" {
		if l, err := time.LoadLocation(r.Meta.ExchangeTimezone); err == nil {
			loc = l
		}
	}

	out := make([]models.PriceBar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		closeP := at(q.Close, i)
		if closeP == nil {
			continue
		}
		t := time.Unix(ts, 0).In(loc)
		bar := models.PriceBar{
			Date:  time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			Open:  value(at(q.Open, i)),
			High:  value(at(q.High, i)),
			Low:   value(at(q.Low, i)),
			Close: *closeP,
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			bar.Volume = *q.Volume[i]
		}
		if a := at(adj, i); a != nil && *closeP != 0 {
			ratio := *a / *closeP
			bar.Open *= ratio
			bar.High *= ratio
			bar.Low *= ratio
			bar.Close = *a
		}
		out = append(out, bar)
	}
	return out
}

func at(s []*float64, i int) *float64 {
	if i < len(s) {
		return s[i]
	}
	return nil
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
