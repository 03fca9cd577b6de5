package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/jimezsa/czynsz/internal/document"
	"github.com/jimezsa/czynsz/internal/network"
	"github.com/jimezsa/czynsz/internal/price"
	"github.com/jimezsa/czynsz/internal/site"
	"github.com/rs/zerolog"
)

type Fetcher interface {
	Get(ctx context.Context, url string) (*network.Page, error)
}

type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FeeResolver reads the recurring rent surcharge from offer detail pages.
type FeeResolver struct {
	fetcher Fetcher
	sites   *site.Registry
	delay   time.Duration
	sleep   SleepFunc
	logger  zerolog.Logger
}

// NewFeeResolver waits delay before every detail page request so the
// sites do not ban the client.
func NewFeeResolver(fetcher Fetcher, sites *site.Registry, delay time.Duration, logger zerolog.Logger) *FeeResolver {
	return &FeeResolver{
		fetcher: fetcher,
		sites:   sites,
		delay:   delay,
		sleep:   Sleep,
		logger:  logger,
	}
}

// Resolve returns the hidden fee shown on detailURL, or 0 when the page
// belongs to no supported site or shows no fee. Only fetch failures are
// returned as errors.
func (r *FeeResolver) Resolve(ctx context.Context, detailURL string) (int, error) {
	adapter, err := r.sites.ForURL(detailURL)
	if err != nil {
		r.logger.Warn().Err(err).Str("url", detailURL).Msg("hidden fee lookup skipped")
		return 0, nil
	}

	if err := r.sleep(ctx, r.delay); err != nil {
		return 0, err
	}

	page, err := r.fetcher.Get(ctx, detailURL)
	if err != nil {
		return 0, err
	}
	doc, err := document.Parse(page.Body, page.ContentType)
	if err != nil {
		return 0, fmt.Errorf("detail page %s: %w", detailURL, err)
	}

	field := adapter.HiddenFeeField(doc.Document)
	if field.Length() == 0 {
		r.logger.Debug().Str("site", adapter.Name()).Str("url", detailURL).Msg("no hidden fee on detail page")
		return 0, nil
	}

	fee, err := price.Extract(document.OwnText(field))
	if err != nil {
		r.logger.Warn().Err(err).Str("url", detailURL).Msg("unreadable hidden fee")
		return 0, nil
	}
	return fee, nil
}
