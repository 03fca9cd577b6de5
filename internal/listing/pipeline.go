package listing

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/czynsz/internal/document"
	"github.com/jimezsa/czynsz/internal/price"
	"github.com/jimezsa/czynsz/internal/site"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/atom"
)

// Decision is the verdict on one listing of a results page.
type Decision struct {
	Position int    `json:"position"`
	URL      string `json:"url"`
	Listed   int    `json:"listed"`
	Hidden   int    `json:"hidden"`
	Total    int    `json:"total"`
	Accepted bool   `json:"accepted"`
	// FeeSkipped is set when the listed price alone was over the limit.
	FeeSkipped bool `json:"fee_skipped,omitempty"`
}

type Result struct {
	Site      string     `json:"site"`
	URL       string     `json:"url"`
	Artifact  string     `json:"artifact"`
	Decisions []Decision `json:"decisions"`
}

func (r *Result) Accepted() int {
	count := 0
	for _, d := range r.Decisions {
		if d.Accepted {
			count++
		}
	}
	return count
}

type Options struct {
	// CostLimit is the monthly budget; +Inf keeps every listing.
	CostLimit float64
	OutputDir string
	// Progress is called with each decision and the number of listings.
	Progress func(d Decision, count int)
}

type Pipeline struct {
	fetcher Fetcher
	fees    *FeeResolver
	opts    Options
	logger  zerolog.Logger
}

func NewPipeline(fetcher Fetcher, fees *FeeResolver, opts Options, logger zerolog.Logger) *Pipeline {
	if opts.CostLimit <= 0 {
		opts.CostLimit = math.Inf(1)
	}
	return &Pipeline{fetcher: fetcher, fees: fees, opts: opts, logger: logger}
}

// ArtifactPath is where Run saves the corrected page for a site.
func (p *Pipeline) ArtifactPath(siteName string) string {
	return ArtifactPath(p.opts.OutputDir, siteName)
}

func ArtifactPath(dir string, siteName string) string {
	return filepath.Join(dir, siteName+".html")
}

// Run fetches a results page, prices every listing including its hidden
// fee, drops the ones over budget and saves the rewritten page. Nothing
// is written when a fetch fails.
func (p *Pipeline) Run(ctx context.Context, adapter site.Adapter, resultsURL string) (*Result, error) {
	logger := p.logger.With().Str("site", adapter.Name()).Logger()

	page, err := p.fetcher.Get(ctx, resultsURL)
	if err != nil {
		return nil, fmt.Errorf("results page: %w", err)
	}
	doc, err := document.Parse(page.Body, page.ContentType)
	if err != nil {
		return nil, fmt.Errorf("results page %s: %w", resultsURL, err)
	}

	// Judge everything before touching the tree.
	var entries []*goquery.Selection
	adapter.Entries(doc.Document).Each(func(_ int, s *goquery.Selection) {
		entries = append(entries, s)
	})
	logger.Debug().Int("listings", len(entries)).Str("url", resultsURL).Msg("results page parsed")

	decisions := make([]Decision, 0, len(entries))
	fields := make([]*goquery.Selection, 0, len(entries))
	for i, entry := range entries {
		decision, field, err := p.judge(ctx, adapter, entry, i+1, resultsURL)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, decision)
		fields = append(fields, field)
		if p.opts.Progress != nil {
			p.opts.Progress(decision, len(entries))
		}
	}

	var kept []*goquery.Selection
	for i, decision := range decisions {
		if decision.Accepted {
			document.SetOwnText(fields[i], price.Format(decision.Total))
			kept = append(kept, entries[i])
		}
	}
	for i, decision := range decisions {
		if !decision.Accepted {
			container(entries[i], kept).Remove()
		}
	}

	path := p.ArtifactPath(adapter.Name())
	if err := doc.Save(path); err != nil {
		return nil, fmt.Errorf("save %s: %w", path, err)
	}

	result := &Result{Site: adapter.Name(), URL: resultsURL, Artifact: path, Decisions: decisions}
	logger.Info().
		Int("listings", len(decisions)).
		Int("accepted", result.Accepted()).
		Str("artifact", path).
		Msg("results page rewritten")
	return result, nil
}

func (p *Pipeline) judge(ctx context.Context, adapter site.Adapter, entry *goquery.Selection, position int, resultsURL string) (Decision, *goquery.Selection, error) {
	decision := Decision{Position: position}

	field := adapter.PriceField(entry)
	listed, err := price.Extract(document.OwnText(field))
	if err != nil {
		return decision, nil, fmt.Errorf("listing %d: advertised price: %w", position, err)
	}
	decision.Listed = listed
	decision.URL = absoluteURL(resultsURL, adapter.DetailLink(entry))

	switch {
	case p.overLimit(listed):
		decision.FeeSkipped = true
		p.logger.Debug().Int("position", position).Int("listed", listed).Msg("over limit, hidden fee not fetched")
	case decision.URL == "":
		p.logger.Warn().Int("position", position).Msg("listing has no detail link")
	default:
		hidden, err := p.fees.Resolve(ctx, decision.URL)
		if err != nil {
			return decision, nil, fmt.Errorf("listing %d: hidden fee: %w", position, err)
		}
		decision.Hidden = hidden
	}

	decision.Total = decision.Listed + decision.Hidden
	decision.Accepted = !p.overLimit(decision.Total)
	return decision, field, nil
}

func (p *Pipeline) overLimit(amount int) bool {
	return float64(amount) > p.opts.CostLimit
}

// container is the node removed for a rejected entry: its parent, unless
// that parent is the page body or still holds a kept entry.
func container(entry *goquery.Selection, kept []*goquery.Selection) *goquery.Selection {
	parent := entry.Parent()
	if parent.Length() == 0 {
		return entry
	}
	switch parent.Nodes[0].DataAtom {
	case atom.Body, atom.Html:
		return entry
	}
	for _, other := range kept {
		if parent.Contains(other.Nodes[0]) {
			return entry
		}
	}
	return parent
}

func absoluteURL(base string, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
