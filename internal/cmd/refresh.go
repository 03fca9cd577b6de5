package cmd

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jimezsa/czynsz/internal/listing"
	"github.com/jimezsa/czynsz/internal/price"
	"github.com/jimezsa/czynsz/internal/report"
	"github.com/jimezsa/czynsz/internal/site"
	"github.com/muesli/termenv"
)

type RefreshCmd struct {
	Site   string `arg:"" help:"Site to refresh (olx, otodom)."`
	NoOpen bool   `help:"Do not open the saved page afterwards."`
	Table  bool   `help:"Print a table of every decision after the run."`
}

func (r *RefreshCmd) Run(ctx *Context) error {
	adapter, err := ctx.Sites.Lookup(r.Site)
	if err != nil {
		return err
	}
	result, err := refresh(ctx, adapter, r.Table)
	if err != nil {
		return err
	}
	if r.NoOpen {
		return nil
	}
	return ctx.open(result.Artifact)
}

// refresh runs the pipeline for adapter against its configured results
// page and reports the outcome.
func refresh(ctx *Context, adapter site.Adapter, table bool) (*listing.Result, error) {
	resultsURL := ctx.Settings.URL(adapter.Name())
	if strings.TrimSpace(resultsURL) == "" {
		return nil, fmt.Errorf("no results URL configured for %s", adapter.Name())
	}

	fetcher, err := ctx.fetcher()
	if err != nil {
		return nil, err
	}
	fees := listing.NewFeeResolver(fetcher, ctx.Sites, ctx.Settings.SleepTime, ctx.Logger)
	opts := listing.Options{
		CostLimit: ctx.Settings.CostLimit,
		OutputDir: ctx.Dir,
	}
	if !ctx.machineOutput() {
		ctx.UI.Infof("Refreshing %s: %s", adapter.Name(), resultsURL)
		opts.Progress = func(d listing.Decision, count int) {
			printDecision(ctx, d, count)
		}
	}
	pipeline := listing.NewPipeline(fetcher, fees, opts, ctx.Logger)

	result, err := pipeline.Run(ctx.context(), adapter, resultsURL)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", adapter.Name(), err)
	}
	return result, writeResult(ctx, result, table)
}

func printDecision(ctx *Context, d listing.Decision, count int) {
	line := formatDecision(d, count, ctx.Settings.CostLimit)
	if d.Accepted {
		ctx.UI.Acceptf("%s", line)
	} else {
		ctx.UI.Rejectf("%s", line)
	}
	if d.URL != "" {
		ctx.UI.Plainf("    %s", ctx.UI.LinkText(d.URL))
	}
}

func formatDecision(d listing.Decision, count int, limit float64) string {
	position := fmt.Sprintf("[%d/%d]", d.Position, count)
	if d.Accepted {
		return fmt.Sprintf("%s kept: %s + %s -> %s",
			position, price.Format(d.Listed), price.Format(d.Hidden), price.Format(d.Total))
	}
	line := fmt.Sprintf("%s dropped: %s over %s", position, price.Format(d.Total), formatLimit(limit))
	if d.FeeSkipped {
		line += " (hidden fee not checked)"
	}
	return line
}

func formatLimit(limit float64) string {
	if limit <= 0 || math.IsInf(limit, 1) {
		return "no limit"
	}
	return price.Format(int(limit))
}

func writeResult(ctx *Context, result *listing.Result, table bool) error {
	switch {
	case ctx.JSONOutput:
		return report.WriteResult(ctx.Out, result, report.FormatJSON, report.WriteOptions{})
	case ctx.PlainText:
		return report.WriteResult(ctx.Out, result, report.FormatTSV, report.WriteOptions{})
	}

	if table {
		colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled
		if err := report.WriteResult(ctx.Out, result, report.FormatTable, report.WriteOptions{
			ColorEnabled: colorEnabled,
			Hyperlinks:   colorEnabled && isTTY(ctx.Out),
		}); err != nil {
			return err
		}
	}
	ctx.UI.Successf("%s", report.Summary(result))
	return nil
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}
