package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jimezsa/czynsz/internal/network"
	"github.com/jimezsa/czynsz/internal/site"
	"github.com/rs/zerolog"
)

const resultsURL = "https://www.olx.pl/nieruchomosci/mieszkania/wynajem/"

type fakeFetcher struct {
	pages     map[string]string
	fail      map[string]error
	requested []string
}

func (f *fakeFetcher) Get(_ context.Context, url string) (*network.Page, error) {
	f.requested = append(f.requested, url)
	if err, ok := f.fail[url]; ok {
		return nil, err
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: GET %s: http 404", network.ErrRequestFailed, url)
	}
	return &network.Page{
		URL:         url,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(body),
	}, nil
}

func (f *fakeFetcher) fetched(url string) bool {
	for _, requested := range f.requested {
		if requested == url {
			return true
		}
	}
	return false
}

type olxOffer struct {
	href  string
	price string
}

func olxResultsPage(offers ...olxOffer) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>Mieszkania na wynajem</title></head><body><table id="offers">`)
	for _, offer := range offers {
		fmt.Fprintf(&b, `<tr><td><div class="offer-wrapper"><h3><a href="%s">Mieszkanie</a></h3><p class="price"><strong>%s</strong></p></div></td></tr>`, offer.href, offer.price)
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}

func olxDetailPage(fee string) string {
	if fee == "" {
		return `<html><body><ul><li class="offer-details__item"><span class="offer-details__name">Poziom</span><strong>2</strong></li></ul></body></html>`
	}
	return `<html><body><ul><li class="offer-details__item"><span class="offer-details__name">Czynsz (dodatkowo)</span><strong>` + fee + `</strong></li></ul></body></html>`
}

type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return nil
}

func newTestPipeline(fetcher *fakeFetcher, limit float64, dir string) (*Pipeline, *sleepRecorder) {
	recorder := &sleepRecorder{}
	fees := NewFeeResolver(fetcher, site.Default(), 2*time.Second, zerolog.Nop())
	fees.sleep = recorder.sleep
	pipeline := NewPipeline(fetcher, fees, Options{CostLimit: limit, OutputDir: dir}, zerolog.Nop())
	return pipeline, recorder
}
