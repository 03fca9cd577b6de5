package cmd

import (
	"context"
	"io"
	"time"

	"github.com/jimezsa/czynsz/internal/config"
	"github.com/jimezsa/czynsz/internal/listing"
	"github.com/jimezsa/czynsz/internal/network"
	"github.com/jimezsa/czynsz/internal/site"
	"github.com/jimezsa/czynsz/internal/ui"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
)

const proxyBanDuration = 10 * time.Minute

type Context struct {
	Ctx        context.Context
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Store      *config.Store
	Settings   config.Settings
	Sites      *site.Registry
	Logger     zerolog.Logger
	Dir        string
	Proxies    string
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode

	// Fetcher replaces the HTTP client when set.
	Fetcher listing.Fetcher
	// Opener shows a saved page; defaults to the system browser.
	Opener  func(path string) error
}

func (c *Context) context() context.Context {
	if c.Ctx != nil {
		return c.Ctx
	}
	return context.Background()
}

func (c *Context) machineOutput() bool {
	return c.JSONOutput || c.PlainText
}

func (c *Context) fetcher() (listing.Fetcher, error) {
	if c.Fetcher != nil {
		return c.Fetcher, nil
	}

	proxies, err := config.LoadProxies(c.Proxies, c.Store.Dir())
	if err != nil {
		return nil, err
	}
	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, proxyBanDuration)
		if err != nil {
			return nil, err
		}
	}

	client, err := network.NewClient(rotator, c.Logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Context) open(path string) error {
	opener := c.Opener
	if opener == nil {
		opener = browser.OpenFile
	}
	if !c.machineOutput() {
		c.UI.Infof("Opening %s", path)
	}
	return opener(path)
}
