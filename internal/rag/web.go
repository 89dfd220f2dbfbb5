package rag

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/hyperjump/fortytech/pkg/utils"
)

const userAgent = "fortytech/1.0 (+https://github.com/hyperjump/fortytech)"

// maxPageBytes caps how much of a fetched page is parsed.
const maxPageBytes = 10 << 20

// WebLoader fetches pages and reduces them to their visible text.
type WebLoader struct {
	client *http.Client
	logger *zap.Logger
}

// NewWebLoader returns a loader using client (a 30s-timeout client when nil).
func NewWebLoader(client *http.Client, logger *zap.Logger) *WebLoader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebLoader{client: client, logger: logger}
}

// ValidateURL checks that raw is an absolute http or https URL.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

// Load fetches rawURL and returns its body text with scripts and styles removed
// and whitespace collapsed.
func (l *WebLoader) Load(ctx context.Context, rawURL string) (Document, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := ValidateURL(rawURL); err != nil {
		return Document{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Document{}, fmt.Errorf("create request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Document{}, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	text, err := PageText(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	l.logger.Debug("Loaded web page", zap.String("url", rawURL), zap.Int("chars", len(text)))
	return Document{Source: rawURL, Content: text}, nil
}

// PageText parses an HTML document and returns its visible body text.
func PageText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, template").Remove()
	sel := doc.Find("body")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	var parts []string
	for _, n := range sel.Nodes {
		collectText(n, &parts)
	}
	return utils.CollapseSpace(strings.Join(parts, " ")), nil
}

// collectText appends every text node under n in document order, so adjacent
// blocks such as <p>a</p><p>b</p> do not run together.
func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		*parts = append(*parts, n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
