package trust

import (
	"net/url"
	"strings"
	"sync"

	"github.com/ppiankov/newsgate/internal/model"
	"golang.org/x/net/publicsuffix"
)

// builtin is the process-wide trust table. Scores are 0..1.
var builtin = []model.DomainTrustEntry{
	// Trusted wire services and broadcasters
	{Domain: "bbc.com", TrustScore: 1.0, Status: model.TrustTrusted, Reason: "Public broadcaster with strong editorial standards"},
	{Domain: "bbc.co.uk", TrustScore: 1.0, Status: model.TrustTrusted, Reason: "Public broadcaster with strong editorial standards"},
	{Domain: "reuters.com", TrustScore: 1.0, Status: model.TrustTrusted, Reason: "International wire service"},
	{Domain: "apnews.com", TrustScore: 1.0, Status: model.TrustTrusted, Reason: "International wire service"},
	{Domain: "ap.org", TrustScore: 1.0, Status: model.TrustTrusted, Reason: "International wire service"},
	{Domain: "npr.org", TrustScore: 0.95, Status: model.TrustTrusted, Reason: "Public broadcaster"},
	{Domain: "pbs.org", TrustScore: 0.95, Status: model.TrustTrusted, Reason: "Public broadcaster"},
	{Domain: "theguardian.com", TrustScore: 0.95, Status: model.TrustTrusted, Reason: "Established national newspaper"},
	{Domain: "cnn.com", TrustScore: 0.9, Status: model.TrustTrusted, Reason: "Established news network"},
	{Domain: "abcnews.go.com", TrustScore: 0.9, Status: model.TrustTrusted, Reason: "Established news network"},
	{Domain: "nytimes.com", TrustScore: 0.9, Status: model.TrustTrusted, Reason: "Established national newspaper"},
	{Domain: "washingtonpost.com", TrustScore: 0.9, Status: model.TrustTrusted, Reason: "Established national newspaper"},
	{Domain: "wsj.com", TrustScore: 0.9, Status: model.TrustTrusted, Reason: "Established national newspaper"},
	{Domain: "ft.com", TrustScore: 0.9, Status: model.TrustTrusted, Reason: "Established national newspaper"},
	{Domain: "aljazeera.com", TrustScore: 0.85, Status: model.TrustTrusted, Reason: "International news network"},

	// Questionable: fabricated, satirical or clickbait publishers
	{Domain: "fake-news.com", TrustScore: 0.1, Status: model.TrustQuestionable, Reason: "Known for fabricated stories"},
	{Domain: "clickbait.net", TrustScore: 0.1, Status: model.TrustQuestionable, Reason: "Clickbait publisher"},
	{Domain: "unverified.info", TrustScore: 0.15, Status: model.TrustQuestionable, Reason: "Publishes unverified claims"},
	{Domain: "infowars.com", TrustScore: 0.1, Status: model.TrustQuestionable, Reason: "Repeated publication of conspiracy content"},
	{Domain: "naturalnews.com", TrustScore: 0.1, Status: model.TrustQuestionable, Reason: "Repeated publication of health misinformation"},
	{Domain: "beforeitsnews.com", TrustScore: 0.1, Status: model.TrustQuestionable, Reason: "User-submitted content without editorial review"},
	{Domain: "worldnewsdailyreport.com", TrustScore: 0.05, Status: model.TrustQuestionable, Reason: "Satirical site frequently mistaken for news"},
	{Domain: "theonion.com", TrustScore: 0.2, Status: model.TrustQuestionable, Reason: "Satire publication"},
}

// Table maps registrable domains to trust entries. It is immutable after
// construction and safe for concurrent use.
type Table struct {
	entries map[string]model.DomainTrustEntry
}

var defaultTable = sync.OnceValue(func() *Table { return New(nil) })

// Default returns the built-in table
func Default() *Table {
	return defaultTable()
}

// New builds a table from the built-in entries plus extra ones. Extra
// entries override built-in entries for the same domain.
func New(extra []model.DomainTrustEntry) *Table {
	t := &Table{entries: make(map[string]model.DomainTrustEntry, len(builtin)+len(extra))}
	for _, e := range builtin {
		t.add(e)
	}
	for _, e := range extra {
		t.add(e)
	}
	return t
}

func (t *Table) add(e model.DomainTrustEntry) {
	key := Normalize(e.Domain)
	if key == "" {
		return
	}
	e.Domain = key
	if e.Status == "" {
		e.Status = model.TrustUnknown
	}
	t.entries[key] = e
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup returns the trust entry for a hostname. The lookup is total:
// unmatched hosts return the unknown entry.
func (t *Table) Lookup(hostname string) model.DomainTrustEntry {
	host := Normalize(hostname)
	if host == "" {
		return model.UnknownDomain(host)
	}

	if e, ok := t.entries[host]; ok {
		return e
	}

	// Walk up parent domains (news.bbc.co.uk -> bbc.co.uk) but never past
	// the registrable domain
	suffix, _ := publicsuffix.PublicSuffix(host)
	for parent := parentDomain(host); parent != "" && parent != suffix; parent = parentDomain(parent) {
		if e, ok := t.entries[parent]; ok {
			return e
		}
	}

	return model.UnknownDomain(host)
}

// LookupURL extracts the host of rawURL and looks it up
func (t *Table) LookupURL(rawURL string) model.DomainTrustEntry {
	return t.Lookup(HostOf(rawURL))
}

// Normalize lower-cases a hostname and strips a leading "www." and any port
func Normalize(hostname string) string {
	host := strings.ToLower(strings.TrimSpace(hostname))
	host = strings.TrimSuffix(host, ".")
	if idx := strings.LastIndex(host, ":"); idx > 0 && !strings.Contains(host[idx:], "]") {
		host = host[:idx]
	}
	return strings.TrimPrefix(host, "www.")
}

// HostOf returns the host part of a URL. Inputs without a scheme are treated
// as bare hostnames.
func HostOf(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

func parentDomain(host string) string {
	idx := strings.Index(host, ".")
	if idx < 0 {
		return ""
	}
	return host[idx+1:]
}
