package models

import (
	"testing"
	"time"
)

func TestProcessRequest_Validate(t *testing.T) {
	r := ProcessRequest{SourceType: " Web ", URLs: []string{" https://a.example "}}
	if err := r.Validate(); err != nil {
		t.Fatal(err)
	}
	if r.SourceType != "Web" || r.URLs[0] != "https://a.example" {
		t.Errorf("fields not trimmed: %+v", r)
	}
	if err := (&ProcessRequest{}).Validate(); err == nil {
		t.Error("expected error for missing source_type")
	}
}

func TestAskRequest_Validate(t *testing.T) {
	if err := (&AskRequest{Query: "  "}).Validate(); err == nil {
		t.Error("expected error for blank query")
	}
	r := AskRequest{Query: " why? "}
	if err := r.Validate(); err != nil || r.Query != "why?" {
		t.Errorf("got %q, %v", r.Query, err)
	}
}

func TestHistory_Series(t *testing.T) {
	h := History{Symbol: "IBM", Bars: []PriceBar{
		{Date: time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), Close: 163.5, Volume: 100},
		{Date: time.Date(2024, 1, 3, 14, 30, 0, 0, time.UTC), Close: 162.0, Volume: 250},
	}}
	closes := h.CloseSeries()
	if len(closes) != 2 || closes[0].Date != "2024-01-02" || closes[0].Value != 163.5 {
		t.Errorf("close series: %+v", closes)
	}
	volumes := h.VolumeSeries()
	if volumes[1].Value != 250 {
		t.Errorf("volume series: %+v", volumes)
	}
}
