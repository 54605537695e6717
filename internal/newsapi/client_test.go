package newsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/newsgate/internal/heuristics"
	"github.com/ppiankov/newsgate/internal/model"
	"github.com/ppiankov/newsgate/internal/worker"
)

func testConfig(baseURL string) model.SearchConfig {
	return model.SearchConfig{
		BaseURL:  baseURL,
		APIKey:   "test-key",
		PageSize: 20,
		Language: "en",
		Timeout:  5 * time.Second,
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(testConfig(baseURL), worker.NewLimiter(0, 1))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.APIKey = "  "
	if _, err := NewClient(cfg, nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestQuery(t *testing.T) {
	tests := []struct {
		domains []string
		want    string
	}{
		{nil, "storm"},
		{[]string{"cnn.com"}, "storm AND cnn.com"},
		{[]string{"bbc.com", "bbc.co.uk"}, "storm AND (bbc.com OR bbc.co.uk)"},
	}
	for _, tt := range tests {
		if got := Query("storm", tt.domains); got != tt.want {
			t.Errorf("Query(%v): expected %q, got %q", tt.domains, tt.want, got)
		}
	}
}

func TestEverything_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/everything" {
			t.Errorf("Expected /v2/everything, got %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("Expected API key header, got %q", r.Header.Get("X-Api-Key"))
		}
		q := r.URL.Query()
		if q.Get("q") != "flood warning AND (bbc.com OR bbc.co.uk)" {
			t.Errorf("Unexpected q %q", q.Get("q"))
		}
		if q.Get("sortBy") != "publishedAt" || q.Get("pageSize") != "20" || q.Get("language") != "en" {
			t.Errorf("Unexpected params %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","totalResults":1,"articles":[{"source":{"id":"bbc-news","name":"BBC News"},"title":"Flood warning issued","description":"d","url":"https://www.bbc.com/news/1","publishedAt":"2024-03-01T10:00:00Z","content":"c"}]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	articles, err := c.Everything(context.Background(), "flood warning", model.OutletBBC.Domains())
	if err != nil {
		t.Fatalf("Everything failed: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(articles))
	}
	a := articles[0]
	if a.Title != "Flood warning issued" || a.Source != "BBC News" || a.PublishedAt != "2024-03-01T10:00:00Z" {
		t.Errorf("Unexpected article %+v", a)
	}
}

func TestEverything_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusTooManyRequests, `{"status":"error","code":"rateLimited","message":"slow down"}`, model.ErrRateLimited},
		{http.StatusOK, `{"status":"error","code":"rateLimited","message":"slow down"}`, model.ErrRateLimited},
		{http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid","message":"bad key"}`, model.ErrUpstream},
		{http.StatusInternalServerError, `oops`, model.ErrUpstream},
		{http.StatusOK, `not json`, model.ErrUpstream},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			fmt.Fprint(w, tt.body)
		}))

		c := newTestClient(t, server.URL)
		_, err := c.Everything(context.Background(), "anything", nil)
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d body %q: expected %v, got %v", tt.status, tt.body, tt.want, err)
		}
		server.Close()
	}
}

func TestEverything_Cache(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"status":"ok","articles":[{"source":{"name":"CNN"},"title":"t","url":"https://cnn.com/x"}]}`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.CacheTTL = time.Minute
	c, err := NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := c.Everything(context.Background(), "same query", []string{"cnn.com"}); err != nil {
			t.Fatalf("Everything failed: %v", err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 upstream call with caching, got %d", got)
	}
}

// outletServer answers per outlet domain; entities queries find nothing so
// the keyword query is exercised
func outletServer(t *testing.T, handler func(q string) (int, string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, body := handler(r.URL.Query().Get("q"))
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

var terms = heuristics.SearchTerms{
	Entities: "Parliament Westminster",
	Keywords: "budget announced parliament",
}

func TestSearchOutlets(t *testing.T) {
	server := outletServer(t, func(q string) (int, string) {
		switch {
		case strings.HasPrefix(q, "Parliament Westminster"):
			return 200, `{"status":"ok","articles":[]}`
		case strings.Contains(q, "bbc.com"):
			return 200, `{"status":"ok","articles":[
				{"source":{"name":"BBC News"},"title":"Budget announced","url":"https://www.bbc.co.uk/news/1"},
				{"source":{"name":"Some Blog"},"title":"Copy","url":"https://blog.example/1"}]}`
		case strings.Contains(q, "theguardian.com"):
			return 200, `{"status":"ok","articles":[{"source":{"name":"The Guardian"},"title":"Budget","url":"https://www.theguardian.com/uk/1"}]}`
		default:
			return 200, `{"status":"ok","articles":[]}`
		}
	})
	defer server.Close()

	c := newTestClient(t, server.URL)
	results, err := c.SearchOutlets(context.Background(), terms)
	if err != nil {
		t.Fatalf("SearchOutlets failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("Expected 4 outlet results, got %d", len(results))
	}
	for i, o := range model.ReferenceOutlets {
		if results[i].Outlet != o {
			t.Errorf("Result %d: expected outlet %s, got %s", i, o, results[i].Outlet)
		}
		if results[i].Articles == nil {
			t.Errorf("Result %d: expected non-nil articles", i)
		}
	}

	bbc := results[0]
	if len(bbc.Articles) != 1 || bbc.Articles[0].URL != "https://www.bbc.co.uk/news/1" {
		t.Errorf("Expected only the BBC-owned article, got %+v", bbc.Articles)
	}
	if bbc.Query != terms.Keywords {
		t.Errorf("Expected keyword query to win, got %q", bbc.Query)
	}
	if len(results[1].Articles) != 0 || len(results[2].Articles) != 0 {
		t.Error("Expected CNN and ABC to have no articles")
	}
	if len(results[3].Articles) != 1 {
		t.Errorf("Expected 1 Guardian article, got %d", len(results[3].Articles))
	}
}

func TestSearchOutlets_RateLimitIsTerminal(t *testing.T) {
	server := outletServer(t, func(q string) (int, string) {
		if strings.Contains(q, "cnn.com") {
			return http.StatusTooManyRequests, `{"status":"error","code":"rateLimited","message":"too many"}`
		}
		return 200, `{"status":"ok","articles":[]}`
	})
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.SearchOutlets(context.Background(), terms)
	if !errors.Is(err, model.ErrRateLimited) {
		t.Errorf("Expected ErrRateLimited, got %v", err)
	}
}

func TestSearchOutlets_PartialFailureIsTolerated(t *testing.T) {
	server := outletServer(t, func(q string) (int, string) {
		if strings.Contains(q, "abcnews.go.com") {
			return http.StatusInternalServerError, `{"status":"error","message":"boom"}`
		}
		return 200, `{"status":"ok","articles":[]}`
	})
	defer server.Close()

	c := newTestClient(t, server.URL)
	results, err := c.SearchOutlets(context.Background(), terms)
	if err != nil {
		t.Fatalf("Expected partial failure to be tolerated, got %v", err)
	}
	if len(results[2].Articles) != 0 {
		t.Error("Expected failed outlet to report no articles")
	}
}

func TestSearchOutlets_AllFailed(t *testing.T) {
	server := outletServer(t, func(q string) (int, string) {
		return http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid","message":"bad key"}`
	})
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.SearchOutlets(context.Background(), terms)
	if !errors.Is(err, model.ErrUpstream) {
		t.Errorf("Expected ErrUpstream, got %v", err)
	}
}

func TestSearchOutlets_NoQueries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	results, err := c.SearchOutlets(context.Background(), heuristics.SearchTerms{})
	if err != nil {
		t.Fatalf("SearchOutlets failed: %v", err)
	}
	if len(results) != 4 || atomic.LoadInt32(&calls) != 0 {
		t.Errorf("Expected 4 empty results without upstream calls, got %d results and %d calls", len(results), calls)
	}
}
