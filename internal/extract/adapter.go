package extract

import "strings"

// Adapter knows where a site keeps its article body
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle reports whether the adapter applies to a host
	CanHandle(host string) bool

	// BodySelectors lists CSS selectors for body paragraphs, tried in order
	BodySelectors() []string
}

// Registry picks an adapter per host, falling back to the generic one
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a registry with the reference outlet adapters
func NewRegistry() *Registry {
	r := &Registry{generic: genericAdapter{}}
	r.Register(siteAdapter{
		name:      "bbc",
		domains:   []string{"bbc.com", "bbc.co.uk"},
		selectors: []string{`[data-component="text-block"] p`, `article p`},
	})
	r.Register(siteAdapter{
		name:      "cnn",
		domains:   []string{"cnn.com"},
		selectors: []string{`.article__content p`, `.zn-body__paragraph`},
	})
	r.Register(siteAdapter{
		name:      "abc",
		domains:   []string{"abcnews.go.com"},
		selectors: []string{`[data-testid="prism-article-body"] p`, `article p`},
	})
	r.Register(siteAdapter{
		name:      "guardian",
		domains:   []string{"theguardian.com", "guardian.co.uk"},
		selectors: []string{`#maincontent p`, `[data-gu-name="body"] p`},
	})
	return r
}

// Register adds an adapter; later registrations are tried last
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// Find returns the adapter for host
func (r *Registry) Find(host string) Adapter {
	host = strings.ToLower(host)
	for _, a := range r.adapters {
		if a.CanHandle(host) {
			return a
		}
	}
	return r.generic
}

type genericAdapter struct{}

func (genericAdapter) Name() string               { return "generic" }
func (genericAdapter) CanHandle(host string) bool { return true }
func (genericAdapter) BodySelectors() []string    { return []string{"article p", "p"} }

type siteAdapter struct {
	name      string
	domains   []string
	selectors []string
}

func (a siteAdapter) Name() string { return a.name }

func (a siteAdapter) CanHandle(host string) bool {
	for _, d := range a.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// BodySelectors ends with the generic selectors so layout changes degrade
// gracefully
func (a siteAdapter) BodySelectors() []string {
	return append(append([]string{}, a.selectors...), genericAdapter{}.BodySelectors()...)
}
