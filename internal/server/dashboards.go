package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/fortytech/internal/models"
	"github.com/hyperjump/fortytech/internal/sp500"
	"github.com/hyperjump/fortytech/internal/stocks"
	"github.com/hyperjump/fortytech/internal/table"
	"github.com/hyperjump/fortytech/internal/workouts"
	"go.uber.org/zap"
)

const (
	defaultSearchLimit = 25
	xlsxMIME           = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) handleWorkoutOptions(w http.ResponseWriter, r *http.Request) {
	if s.workouts == nil {
		s.notEnabled(w, "workouts")
		return
	}
	opts, err := s.workouts.Options()
	if err != nil {
		s.respondErr(w, "workout options", err)
		return
	}
	s.respondJSON(w, http.StatusOK, opts)
}

func (s *Server) handleWorkoutData(w http.ResponseWriter, r *http.Request) {
	if s.workouts == nil {
		s.notEnabled(w, "workouts")
		return
	}
	d, err := s.workouts.Dataset()
	if err != nil {
		s.respondErr(w, "workout data", err)
		return
	}
	s.respondJSON(w, http.StatusOK, d.Table())
}

func (s *Server) handleWorkoutReport(w http.ResponseWriter, r *http.Request) {
	if s.workouts == nil {
		s.notEnabled(w, "workouts")
		return
	}
	q := r.URL.Query()
	sel := workouts.Selection{
		Years:     selection(q, "year"),
		Locations: selection(q, "location"),
		Classes:   selection(q, "class"),
	}
	report, err := s.workouts.Report(sel)
	if err != nil {
		s.respondErr(w, "workout report", err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

type stockResponse struct {
	Symbol string         `json:"symbol"`
	Close  []models.Point `json:"close"`
	Volume []models.Point `json:"volume"`
}

func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	if s.stocks == nil {
		s.notEnabled(w, "stocks")
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	if start == "" {
		start = s.config.Stocks.Start
	}
	if end == "" {
		end = s.config.Stocks.End
	}
	from, to, err := stocks.ParseRange(start, end)
	if err != nil {
		s.respondErr(w, "stock history", err)
		return
	}
	s.logger.Debug("stock history request", zap.String("symbol", symbol), zap.String("start", start), zap.String("end", end))
	h, err := s.stocks.History(r.Context(), symbol, from, to)
	if err != nil {
		s.respondErr(w, "stock history", err)
		return
	}
	s.respondJSON(w, http.StatusOK, stockResponse{Symbol: h.Symbol, Close: h.CloseSeries(), Volume: h.VolumeSeries()})
}

func (s *Server) handleSP500Sectors(w http.ResponseWriter, r *http.Request) {
	if s.sp500 == nil {
		s.notEnabled(w, "sp500")
		return
	}
	sectors, err := s.sp500.Sectors(r.Context())
	if err != nil {
		s.respondErr(w, "sp500 sectors", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"sectors": sectors})
}

type companiesResponse struct {
	Dimension  string       `json:"dimension"`
	Table      *table.Table `json:"table"`
	Suggestion string       `json:"suggestion,omitempty"`
	Fuzzy      bool         `json:"fuzzy,omitempty"`
}

func (s *Server) handleSP500Companies(w http.ResponseWriter, r *http.Request) {
	if s.sp500 == nil {
		s.notEnabled(w, "sp500")
		return
	}
	q := r.URL.Query()
	sectors := selection(q, "sector")
	limit, err := intParam(q, "limit", defaultSearchLimit)
	if err != nil {
		s.respondErr(w, "sp500 companies", err)
		return
	}
	fuzzy, err := boolParam(q, "fuzzy")
	if err != nil {
		s.respondErr(w, "sp500 companies", err)
		return
	}

	var resp companiesResponse
	if query := strings.TrimSpace(q.Get("q")); query != "" {
		res, err := s.sp500.Search(r.Context(), query, sectors, limit, fuzzy)
		if err != nil {
			s.respondErr(w, "sp500 search", err)
			return
		}
		resp.Table, resp.Suggestion, resp.Fuzzy = res.Table, res.Suggestion, res.Fuzzy
	} else {
		t, err := s.sp500.Filter(r.Context(), sectors)
		if err != nil {
			s.respondErr(w, "sp500 companies", err)
			return
		}
		resp.Table = t
	}
	resp.Dimension = sp500.DimensionText(resp.Table)
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSP500Download(w http.ResponseWriter, r *http.Request) {
	if s.sp500 == nil {
		s.notEnabled(w, "sp500")
		return
	}
	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	name, err := sp500.FileName(format)
	if err != nil {
		s.respondErr(w, "sp500 download", err)
		return
	}
	var buf bytes.Buffer
	if err := s.sp500.Download(r.Context(), &buf, selection(q, "sector"), format); err != nil {
		s.respondErr(w, "sp500 download", err)
		return
	}
	contentType := "text/csv"
	if format == "xlsx" {
		contentType = xlsxMIME
	}
	writeAttachment(w, name, contentType, buf.Bytes())
}

func (s *Server) handleSP500Prices(w http.ResponseWriter, r *http.Request) {
	if s.sp500 == nil {
		s.notEnabled(w, "sp500")
		return
	}
	q := r.URL.Query()
	n, err := intParam(q, "n", 1)
	if err != nil {
		s.respondErr(w, "sp500 prices", err)
		return
	}
	prices, err := s.sp500.Prices(r.Context(), selection(q, "sector"), n)
	if err != nil {
		s.respondErr(w, "sp500 prices", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"companies": prices})
}

func writeAttachment(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
