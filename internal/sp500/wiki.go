package sp500

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperjump/fortytech/internal/table"
	"github.com/hyperjump/fortytech/pkg/utils"
)

const userAgent = "fortytech/1.0 (+https://github.com/hyperjump/fortytech)"

// Column names of the constituents table used by the browser.
const (
	ColumnSymbol   = "Symbol"
	ColumnSecurity = "Security"
	ColumnSector   = "GICS Sector"
)

// Fetch downloads the constituents page and parses its first table.
func Fetch(ctx context.Context, client *http.Client, url string) (*table.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSource, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrSource, resp.StatusCode)
	}
	t, err := ParseTable(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSource, err)
	}
	return t, nil
}

// ParseTable returns the first wikitable of an HTML page (or the first table when none is
// marked). The first all-header row gives the columns; rows with data cells follow.
// Footnote markers are dropped from cell text.
func ParseTable(r io.Reader) (*table.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	tbl := doc.Find("table.wikitable").First()
	if tbl.Length() == 0 {
		tbl = doc.Find("table").First()
	}
	if tbl.Length() == 0 {
		return nil, fmt.Errorf("no table found")
	}
	tbl.Find("sup.reference").Remove()

	var columns []string
	var rows [][]string
	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("th, td")
		if cells.Length() == 0 {
			return
		}
		values := cells.Map(func(_ int, c *goquery.Selection) string {
			return utils.CollapseSpace(c.Text())
		})
		if columns == nil {
			if cells.Filter("td").Length() == 0 {
				columns = values
			}
			return
		}
		if cells.Filter("td").Length() > 0 {
			rows = append(rows, values)
		}
	})
	if columns == nil {
		return nil, fmt.Errorf("table has no header row")
	}
	return table.New(columns, rows), nil
}
