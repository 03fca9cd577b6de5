package cmd

import (
	"fmt"
	"strings"
)

type LinkCmd struct {
	URL    string `arg:"" help:"Results page URL from a supported site."`
	NoOpen bool   `help:"Do not open the saved page afterwards."`
}

// Run stores URL as the search for the site that owns its domain, then
// refreshes that site with the reloaded settings.
func (l *LinkCmd) Run(ctx *Context) error {
	raw := strings.TrimSpace(l.URL)
	adapter, err := ctx.Sites.ForURL(raw)
	if err != nil {
		return fmt.Errorf("invalid link %q: %w", raw, err)
	}

	settings, err := ctx.Store.SetURL(adapter.Name(), raw)
	if err != nil {
		return err
	}
	ctx.Settings = settings
	if !ctx.machineOutput() {
		ctx.UI.Successf("Saved %s search: %s", adapter.Name(), raw)
	}

	result, err := refresh(ctx, adapter, false)
	if err != nil {
		return err
	}
	if l.NoOpen {
		return nil
	}
	return ctx.open(result.Artifact)
}
