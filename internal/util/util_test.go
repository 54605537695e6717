package util

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/newsgate/internal/model"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.internal:3128", "", "example.org")

	req, _ := http.NewRequest(http.MethodGet, "https://newsapi.org/v2/everything", nil)
	got, err := proxy(req)
	if err != nil {
		t.Fatalf("proxy failed: %v", err)
	}
	if got == nil || got.Host != "proxy.internal:3128" {
		t.Errorf("Expected https to fall back to the http proxy, got %v", got)
	}

	req, _ = http.NewRequest(http.MethodGet, "https://news.example.org/a", nil)
	got, err = proxy(req)
	if err != nil {
		t.Fatalf("proxy failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected NO_PROXY host to bypass the proxy, got %v", got)
	}
}

func TestNewProxyFunc_Separate(t *testing.T) {
	proxy := NewProxyFunc("http://plain:8080", "http://secure:8443", "")

	req, _ := http.NewRequest(http.MethodGet, "https://feeds.bbci.co.uk/news/rss.xml", nil)
	got, _ := proxy(req)
	if got == nil || got.Host != "secure:8443" {
		t.Errorf("Expected https proxy, got %v", got)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://feeds.reuters.com/reuters/topNews", nil)
	got, _ = proxy(req)
	if got == nil || got.Host != "plain:8080" {
		t.Errorf("Expected http proxy, got %v", got)
	}
}

func TestNewHTTPClient_RedirectCap(t *testing.T) {
	var hits int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		http.Redirect(w, r, fmt.Sprintf("%s/%d", server.URL, n), http.StatusFound)
	}))
	defer server.Close()

	client := NewHTTPClient(model.HTTPConfig{Timeout: 5 * time.Second})
	resp, err := client.Get(server.URL)
	if err == nil {
		_ = resp.Body.Close()
		t.Fatal("Expected redirect loop to be stopped")
	}
	if got := atomic.LoadInt32(&hits); got != MaxRedirects {
		t.Errorf("Expected %d requests, got %d", MaxRedirects, got)
	}
}

func TestRobotsChecker(t *testing.T) {
	var robotsHits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(&robotsHits, 1)
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "newsgate-test")
	ctx := context.Background()

	allowed, err := checker.Allowed(ctx, server.URL+"/news/story")
	if err != nil || !allowed {
		t.Errorf("Expected /news/story to be allowed, got %v, %v", allowed, err)
	}

	allowed, err = checker.Allowed(ctx, server.URL+"/private/page")
	if err != nil || allowed {
		t.Errorf("Expected /private/page to be disallowed, got %v, %v", allowed, err)
	}

	if got := atomic.LoadInt32(&robotsHits); got != 1 {
		t.Errorf("Expected robots.txt fetched once, got %d", got)
	}
}

func TestRobotsChecker_RulesExpire(t *testing.T) {
	var robotsHits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(&robotsHits, 1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := newRobotsChecker(server.Client(), "newsgate-test", 50*time.Millisecond)
	ctx := context.Background()

	_, _ = checker.Allowed(ctx, server.URL+"/a")
	_, _ = checker.Allowed(ctx, server.URL+"/b")
	if got := atomic.LoadInt32(&robotsHits); got != 1 {
		t.Fatalf("Expected robots.txt fetched once while cached, got %d", got)
	}

	time.Sleep(150 * time.Millisecond)
	if n := checker.cache.ItemCount(); n != 0 {
		t.Errorf("Expected expired rules to be evicted, still holding %d", n)
	}

	_, _ = checker.Allowed(ctx, server.URL+"/c")
	if got := atomic.LoadInt32(&robotsHits); got != 2 {
		t.Errorf("Expected robots.txt refetched after expiry, got %d fetches", got)
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "newsgate-test")
	allowed, err := checker.Allowed(context.Background(), server.URL+"/anything")
	if err != nil || !allowed {
		t.Errorf("Expected allowed when robots.txt is missing, got %v, %v", allowed, err)
	}
}

func TestRobotsChecker_InvalidURL(t *testing.T) {
	checker := NewRobotsChecker(http.DefaultClient, "newsgate-test")
	if _, err := checker.Allowed(context.Background(), "not a url"); err == nil {
		t.Error("Expected error for URL without host")
	}
}

func TestIsPublicAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:4700::1111", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.9", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"fd00::1", false},
		{"fe80::1", false},
		{"::ffff:127.0.0.1", false},
		{"224.0.0.1", false},
	}

	for _, tt := range tests {
		if got := IsPublicAddr(netip.MustParseAddr(tt.addr)); got != tt.want {
			t.Errorf("IsPublicAddr(%s) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestNewPublicHTTPClient_RejectsLoopback(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	_, err := NewPublicHTTPClient(model.HTTPConfig{Timeout: 5 * time.Second}).Get(server.URL)
	if !errors.Is(err, ErrPrivateAddress) {
		t.Errorf("Expected ErrPrivateAddress, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("Expected the request not to reach the server")
	}

	resp, err := NewPublicHTTPClient(model.HTTPConfig{Timeout: 5 * time.Second, AllowPrivateHosts: true}).Get(server.URL)
	if err != nil {
		t.Fatalf("Expected loopback to be allowed, got %v", err)
	}
	_ = resp.Body.Close()
}

func TestNewPublicHTTPClient_RedirectToPrivate(t *testing.T) {
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "internal")
	}))
	defer internal.Close()

	redirector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, internal.URL+"/admin", http.StatusFound)
	}))
	defer redirector.Close()

	client := NewPublicHTTPClient(model.HTTPConfig{Timeout: 5 * time.Second})
	transport := client.Transport.(*http.Transport)
	transport.DisableKeepAlives = true

	// The first connection stands in for a public host; the redirect
	// target goes through the guard.
	guarded := transport.DialContext
	var dials int32
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		if atomic.AddInt32(&dials, 1) == 1 {
			return (&net.Dialer{}).DialContext(ctx, network, addr)
		}
		return guarded(ctx, network, addr)
	}

	_, err := client.Get(redirector.URL)
	if !errors.Is(err, ErrPrivateAddress) {
		t.Errorf("Expected redirect to a private address to fail, got %v", err)
	}
}

func TestNewPublicHTTPClient_ProxyChecksTarget(t *testing.T) {
	client := NewPublicHTTPClient(model.HTTPConfig{HTTPProxy: "http://proxy.example:3128"})
	transport := client.Transport.(*http.Transport)

	req, _ := http.NewRequest(http.MethodGet, "http://10.0.0.5:8080/admin", nil)
	if _, err := transport.Proxy(req); !errors.Is(err, ErrPrivateAddress) {
		t.Errorf("Expected proxied private target to be rejected, got %v", err)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://93.184.216.34/news", nil)
	got, err := transport.Proxy(req)
	if err != nil || got == nil || got.Host != "proxy.example:3128" {
		t.Errorf("Expected public target to use the proxy, got %v %v", got, err)
	}
}
