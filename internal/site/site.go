package site

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	SiteOLX    = "olx"
	SiteOtodom = "otodom"
)

var ErrUnsupportedDomain = errors.New("unsupported domain")

// Adapter holds the extraction rules for one classifieds site.
//
// Lookups that find nothing return an empty selection rather than nil.
type Adapter interface {
	Name() string
	Domain() string
	DefaultURL() string

	// Entries returns every listing container in document order.
	Entries(doc *goquery.Document) *goquery.Selection
	PriceField(entry *goquery.Selection) *goquery.Selection
	DetailLink(entry *goquery.Selection) string
	// HiddenFeeField tries each of the site's detail page layouts in order.
	HiddenFeeField(doc *goquery.Document) *goquery.Selection
}

type Registry struct {
	adapters []Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: append([]Adapter{}, adapters...)}
}

// Default returns the registry of every supported site.
func Default() *Registry {
	return NewRegistry(NewOLX(), NewOtodom())
}

func (r *Registry) All() []Adapter {
	return append([]Adapter{}, r.adapters...)
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		names = append(names, adapter.Name())
	}
	return names
}

func (r *Registry) Lookup(name string) (Adapter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, adapter := range r.adapters {
		if adapter.Name() == name {
			return adapter, nil
		}
	}
	return nil, fmt.Errorf("unknown site %q (supported: %s)", name, strings.Join(r.Names(), ", "))
}

// ForURL picks the adapter whose domain owns rawURL. Detail links are
// matched this way because one site often hosts the other's offers.
func (r *Registry) ForURL(rawURL string) (Adapter, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDomain, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrUnsupportedDomain, rawURL)
	}
	for _, adapter := range r.adapters {
		domain := adapter.Domain()
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return adapter, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedDomain, host)
}

func firstLink(entry *goquery.Selection) string {
	return strings.TrimSpace(entry.Find("a[href]").First().AttrOr("href", ""))
}

// labeled returns the first match of selector whose text contains label.
func labeled(doc *goquery.Document, selector string, label string) *goquery.Selection {
	return doc.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), label)
	}).First()
}
