package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jimezsa/czynsz/internal/config"
	"github.com/jimezsa/czynsz/internal/listing"
	"github.com/jimezsa/czynsz/internal/network"
	"github.com/jimezsa/czynsz/internal/site"
	"github.com/jimezsa/czynsz/internal/ui"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	olxResults   = "https://www.olx.pl/nieruchomosci/mieszkania/wynajem/warszawa/"
	otodomSearch = "https://www.otodom.pl/pl/wyniki/wynajem/mieszkanie/krakow"
	offerA       = "https://www.olx.pl/d/oferta/a.html"
	offerB       = "https://www.olx.pl/d/oferta/b.html"
)

type stubFetcher struct {
	pages     map[string]string
	requested []string
}

func (f *stubFetcher) Get(_ context.Context, url string) (*network.Page, error) {
	f.requested = append(f.requested, url)
	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: GET %s: http 404", network.ErrRequestFailed, url)
	}
	return &network.Page{URL: url, StatusCode: 200, ContentType: "text/html; charset=utf-8", Body: []byte(body)}, nil
}

func olxPages() map[string]string {
	return map[string]string{
		olxResults: `<html><body><table>` +
			`<tr><td><div class="offer-wrapper"><a href="/d/oferta/a.html">A</a><p class="price"><strong>800 zł</strong></p></div></td></tr>` +
			`<tr><td><div class="offer-wrapper"><a href="/d/oferta/b.html">B</a><p class="price"><strong>2 200 zł</strong></p></div></td></tr>` +
			`</table></body></html>`,
		offerA: `<html><body><ul><li class="offer-details__item"><span class="offer-details__name">Czynsz (dodatkowo)</span><strong>100 zł</strong></li></ul></body></html>`,
	}
}

type testEnv struct {
	ctx     *Context
	out     *bytes.Buffer
	fetcher *stubFetcher
	opened  []string
}

func newTestEnv(t *testing.T, pages map[string]string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	sites := site.Default()
	store := config.NewStore(filepath.Join(dir, "config"), sites)

	require.NoError(t, os.MkdirAll(store.Dir(), 0o755))
	settingsFile := fmt.Sprintf("sleep_time=0\ncost_limit=2000\nolx_url=%s\notodom_url=%s\n",
		olxResults, "https://www.otodom.pl/wynajem/mieszkanie")
	require.NoError(t, os.WriteFile(store.Path(), []byte(settingsFile), 0o644))
	settings, recovered, err := store.Load()
	require.NoError(t, err)
	require.False(t, recovered)

	env := &testEnv{out: &bytes.Buffer{}, fetcher: &stubFetcher{pages: pages}}
	env.ctx = &Context{
		Out:      env.out,
		Err:      env.out,
		UI:       ui.New(env.out, env.out, ui.ColorNever, true),
		Store:    store,
		Settings: settings,
		Sites:    sites,
		Logger:   zerolog.Nop(),
		Dir:      filepath.Join(dir, "pages"),
		Fetcher:  env.fetcher,
		Opener: func(path string) error {
			env.opened = append(env.opened, path)
			return nil
		},
	}
	return env
}

func TestRefreshSavesFilteredPageAndOpensIt(t *testing.T) {
	env := newTestEnv(t, olxPages())

	require.NoError(t, (&RefreshCmd{Site: "OLX"}).Run(env.ctx))

	artifact := filepath.Join(env.ctx.Dir, "olx.html")
	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Contains(t, string(data), "900 zł")
	assert.NotContains(t, string(data), "2 200")
	assert.Equal(t, []string{artifact}, env.opened)
	assert.Equal(t, []string{olxResults, offerA}, env.fetcher.requested)

	out := env.out.String()
	assert.Contains(t, out, "[1/2] kept: 800 zł + 100 zł -> 900 zł\n    "+offerA+"\n")
	assert.Contains(t, out, "[2/2] dropped: 2200 zł over 2000 zł (hidden fee not checked)\n    "+offerB+"\n")
	assert.Contains(t, out, "summary: site=olx listings=2 kept=1 dropped=1")
}

func TestRefreshJSONPrintsDecisionsOnly(t *testing.T) {
	env := newTestEnv(t, olxPages())
	env.ctx.JSONOutput = true

	require.NoError(t, (&RefreshCmd{Site: "olx", NoOpen: true}).Run(env.ctx))

	var result listing.Result
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &result))
	require.Len(t, result.Decisions, 2)
	assert.True(t, result.Decisions[0].Accepted)
	assert.Equal(t, 900, result.Decisions[0].Total)
	assert.True(t, result.Decisions[1].FeeSkipped)
	assert.Empty(t, env.opened)
}

func TestRefreshUnknownSite(t *testing.T) {
	env := newTestEnv(t, olxPages())
	err := (&RefreshCmd{Site: "gumtree"}).Run(env.ctx)
	require.Error(t, err)
	assert.Empty(t, env.fetcher.requested)
}

func TestRefreshFailedFetchKeepsPreviousPage(t *testing.T) {
	pages := olxPages()
	delete(pages, offerA)
	env := newTestEnv(t, pages)

	artifact := filepath.Join(env.ctx.Dir, "olx.html")
	require.NoError(t, os.MkdirAll(env.ctx.Dir, 0o755))
	require.NoError(t, os.WriteFile(artifact, []byte("previous"), 0o644))

	err := (&RefreshCmd{Site: "olx"}).Run(env.ctx)
	require.ErrorIs(t, err, network.ErrRequestFailed)
	assert.Contains(t, err.Error(), offerA)

	data, readErr := os.ReadFile(artifact)
	require.NoError(t, readErr)
	assert.Equal(t, "previous", string(data))
	assert.Empty(t, env.opened)
}

func TestOpenRefreshesWhenPageMissing(t *testing.T) {
	env := newTestEnv(t, olxPages())

	require.NoError(t, (&OpenCmd{Site: "olx"}).Run(env.ctx))
	assert.Len(t, env.fetcher.requested, 2)
	require.Len(t, env.opened, 1)

	env.fetcher.requested = nil
	require.NoError(t, (&OpenCmd{Site: "olx"}).Run(env.ctx))
	assert.Empty(t, env.fetcher.requested)
	assert.Len(t, env.opened, 2)
}

func TestLinkRejectsUnsupportedDomain(t *testing.T) {
	env := newTestEnv(t, olxPages())
	before, err := os.ReadFile(env.ctx.Store.Path())
	require.NoError(t, err)

	err = (&LinkCmd{URL: "https://www.gumtree.pl/s-mieszkania"}).Run(env.ctx)
	require.ErrorIs(t, err, site.ErrUnsupportedDomain)
	assert.Contains(t, err.Error(), "invalid link")

	after, err := os.ReadFile(env.ctx.Store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, env.fetcher.requested)
}

func TestLinkStoresURLAndRefreshes(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		otodomSearch: `<html><body><p>Brak ogłoszeń</p></body></html>`,
	})

	require.NoError(t, (&LinkCmd{URL: otodomSearch, NoOpen: true}).Run(env.ctx))

	assert.Equal(t, otodomSearch, env.ctx.Settings.URL(site.SiteOtodom))
	reloaded, _, err := env.ctx.Store.Load()
	require.NoError(t, err)
	assert.Equal(t, otodomSearch, reloaded.URL(site.SiteOtodom))
	assert.Equal(t, olxResults, reloaded.URL(site.SiteOLX))
	assert.Equal(t, []string{otodomSearch}, env.fetcher.requested)
	assert.FileExists(t, filepath.Join(env.ctx.Dir, "otodom.html"))
	assert.Empty(t, env.opened)
}

func TestSettingsPlain(t *testing.T) {
	env := newTestEnv(t, nil)
	env.ctx.PlainText = true

	require.NoError(t, (&SettingsCmd{}).Run(env.ctx))
	lines := strings.Split(strings.TrimSpace(env.out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "sleep_time\t0s", lines[0])
	assert.Equal(t, "cost_limit\t2000 zł", lines[1])
	assert.Equal(t, "olx_url\t"+olxResults, lines[2])
}

func TestSettingsJSONShowsUnlimitedAsNull(t *testing.T) {
	env := newTestEnv(t, nil)
	env.ctx.JSONOutput = true
	env.ctx.Settings.CostLimit = math.Inf(1)

	require.NoError(t, (&SettingsCmd{}).Run(env.ctx))
	var view map[string]any
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &view))
	assert.Nil(t, view["cost_limit"])
	assert.Equal(t, olxResults, view["urls"].(map[string]any)["olx"])
}

func TestConfigResetRestoresDefaults(t *testing.T) {
	env := newTestEnv(t, nil)

	require.NoError(t, (&ResetConfigCmd{}).Run(env.ctx))
	assert.True(t, env.ctx.Settings.Unlimited())
	assert.Equal(t, "https://www.olx.pl/nieruchomosci/mieszkania/wynajem/", env.ctx.Settings.URL(site.SiteOLX))

	created, err := env.ctx.Store.Init()
	require.NoError(t, err)
	assert.False(t, created)
}

func TestFormatDecision(t *testing.T) {
	cases := []struct {
		name  string
		d     listing.Decision
		limit float64
		want  string
	}{
		{
			name:  "kept",
			d:     listing.Decision{Position: 2, Listed: 1500, Hidden: 100, Total: 1600, Accepted: true},
			limit: 2000,
			want:  "[2/3] kept: 1500 zł + 100 zł -> 1600 zł",
		},
		{
			name:  "dropped after fee",
			d:     listing.Decision{Position: 1, Listed: 1900, Hidden: 300, Total: 2200},
			limit: 2000,
			want:  "[1/3] dropped: 2200 zł over 2000 zł",
		},
		{
			name:  "dropped on listed price",
			d:     listing.Decision{Position: 3, Listed: 2200, Total: 2200, FeeSkipped: true},
			limit: 2000,
			want:  "[3/3] dropped: 2200 zł over 2000 zł (hidden fee not checked)",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatDecision(tc.d, 3, tc.limit))
		})
	}
	assert.Equal(t, "no limit", formatLimit(math.Inf(1)))
}
