package rag

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!doctype html><html><head><title>T</title><style>body{color:red}</style></head>
<body><script>var x = "hidden";</script><h1>Heading</h1><p>First   paragraph.</p><p>Second
paragraph.</p><noscript>enable js</noscript></body></html>`

func TestPageText(t *testing.T) {
	got, err := PageText(strings.NewReader(samplePage))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Heading First paragraph. Second paragraph." {
		t.Errorf("got %q", got)
	}
}

func TestWebLoader_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	l := NewWebLoader(srv.Client(), nil)
	doc, err := l.Load(context.Background(), srv.URL+"/page")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Source != srv.URL+"/page" || !strings.Contains(doc.Content, "First paragraph.") {
		t.Errorf("got %+v", doc)
	}

	if _, err := l.Load(context.Background(), srv.URL+"/missing"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestValidateURL(t *testing.T) {
	for _, u := range []string{"https://example.com", "http://localhost:8080/x"} {
		if err := ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q): %v", u, err)
		}
	}
	for _, u := range []string{"example.com", "ftp://example.com", "http://", "::"} {
		if err := ValidateURL(u); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("ValidateURL(%q): expected ErrInvalidURL, got %v", u, err)
		}
	}
}
