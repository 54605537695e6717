// Package extract turns a fetched news page into plain article text: a
// headline line followed by the body paragraphs.
package extract

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoContent is returned when a page has no readable paragraphs
var ErrNoContent = errors.New("no article text found")

// Article is the readable part of a news page
type Article struct {
	URL        string   `json:"url"`
	Adapter    string   `json:"adapter"`
	Headline   string   `json:"headline"`
	Paragraphs []string `json:"paragraphs"`
}

// Content is the text submitted for analysis: the headline as the first
// line, then the paragraphs
func (a *Article) Content() string {
	var b strings.Builder
	b.WriteString(a.Headline)
	for _, p := range a.Paragraphs {
		b.WriteString("\n")
		b.WriteString(p)
	}
	return b.String()
}

// Extractor pulls article text out of HTML
type Extractor struct {
	registry *Registry
}

// NewExtractor creates an extractor with the default adapters
func NewExtractor() *Extractor {
	return &Extractor{registry: NewRegistry()}
}

// Extract parses an HTML page fetched from pageURL
func (e *Extractor) Extract(r io.Reader, pageURL string) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	host := ""
	if u, err := url.Parse(pageURL); err == nil {
		host = u.Hostname()
	}
	adapter := e.registry.Find(host)

	doc.Find("script, style, noscript, nav, header, footer, aside, figure, form").Remove()

	article := &Article{
		URL:      pageURL,
		Adapter:  adapter.Name(),
		Headline: headline(doc),
	}

	for _, sel := range adapter.BodySelectors() {
		article.Paragraphs = paragraphs(doc, sel)
		if len(article.Paragraphs) > 0 {
			break
		}
	}

	if len(article.Paragraphs) == 0 {
		return nil, ErrNoContent
	}
	return article, nil
}

func headline(doc *goquery.Document) string {
	if h := clean(doc.Find("h1").First().Text()); h != "" {
		return h
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && clean(og) != "" {
		return clean(og)
	}
	return clean(doc.Find("title").First().Text())
}

func paragraphs(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := clean(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// clean collapses whitespace runs to single spaces
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
