package trust

import (
	"testing"

	"github.com/ppiankov/newsgate/internal/model"
)

func TestTable_Lookup_Trusted(t *testing.T) {
	table := Default()

	tests := []struct {
		host     string
		expected string
		desc     string
	}{
		{host: "bbc.com", expected: "bbc.com", desc: "Exact match"},
		{host: "www.bbc.com", expected: "bbc.com", desc: "Leading www stripped"},
		{host: "WWW.BBC.COM", expected: "bbc.com", desc: "Case insensitive"},
		{host: "news.bbc.co.uk", expected: "bbc.co.uk", desc: "Subdomain walks up to registrable domain"},
		{host: "edition.cnn.com", expected: "cnn.com", desc: "CNN edition subdomain"},
		{host: "abcnews.go.com", expected: "abcnews.go.com", desc: "Entry below a shared registrable domain"},
		{host: "bbc.com:443", expected: "bbc.com", desc: "Port stripped"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			entry := table.Lookup(tt.host)
			if entry.Status != model.TrustTrusted {
				t.Errorf("Expected trusted for %s, got %s", tt.host, entry.Status)
			}
			if entry.Domain != tt.expected {
				t.Errorf("Expected domain %s for %s, got %s", tt.expected, tt.host, entry.Domain)
			}
		})
	}
}

func TestTable_Lookup_BBCScore(t *testing.T) {
	entry := Default().LookupURL("https://www.bbc.com/news/x")
	if entry.Status != model.TrustTrusted || entry.TrustScore != 1.0 {
		t.Errorf("Expected trusted/1.0 for bbc.com, got %s/%.2f", entry.Status, entry.TrustScore)
	}
}

func TestTable_Lookup_Questionable(t *testing.T) {
	entry := Default().Lookup("www.fake-news.com")
	if entry.Status != model.TrustQuestionable {
		t.Errorf("Expected questionable, got %s", entry.Status)
	}
	if entry.TrustScore >= 0.5 {
		t.Errorf("Expected low trust score, got %.2f", entry.TrustScore)
	}
}

func TestTable_Lookup_Unknown(t *testing.T) {
	table := Default()

	for _, host := range []string{
		"example.com",
		"my-local-blog.net",
		"go.com", // parent of abcnews.go.com is not itself trusted
		"",
		"localhost",
		"com",
	} {
		entry := table.Lookup(host)
		if entry.Status != model.TrustUnknown {
			t.Errorf("Expected unknown for %q, got %s", host, entry.Status)
		}
		if entry.TrustScore != 0.5 {
			t.Errorf("Expected trust score 0.5 for %q, got %.2f", host, entry.TrustScore)
		}
		if entry.Reason != "Domain not in database" {
			t.Errorf("Unexpected reason for %q: %s", host, entry.Reason)
		}
	}
}

func TestNew_ExtraEntriesOverride(t *testing.T) {
	table := New([]model.DomainTrustEntry{
		{Domain: "www.Example.com", TrustScore: 0.8, Status: model.TrustTrusted, Reason: "Local paper"},
		{Domain: "cnn.com", TrustScore: 0.3, Status: model.TrustQuestionable, Reason: "Override"},
	})

	if e := table.Lookup("example.com"); e.Status != model.TrustTrusted || e.TrustScore != 0.8 {
		t.Errorf("Expected extra entry to be used, got %+v", e)
	}
	if e := table.Lookup("cnn.com"); e.Status != model.TrustQuestionable {
		t.Errorf("Expected override for cnn.com, got %+v", e)
	}
	if Default().Lookup("example.com").Status != model.TrustUnknown {
		t.Error("Extra entries must not leak into the default table")
	}
}

func TestHostOf(t *testing.T) {
	tests := map[string]string{
		"https://www.bbc.com/news/x": "www.bbc.com",
		"bbc.com/news":               "bbc.com",
		"http://example.com:8080/a":  "example.com",
		"":                           "",
	}
	for in, want := range tests {
		if got := HostOf(in); got != want {
			t.Errorf("HostOf(%q) = %q, want %q", in, got, want)
		}
	}
}
