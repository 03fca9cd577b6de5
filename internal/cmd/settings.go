package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/jimezsa/czynsz/internal/config"
)

type SettingsCmd struct{}

type settingRow struct {
	Key   string
	Value string
}

type settingsView struct {
	SleepTime float64           `json:"sleep_time"`
	CostLimit *int              `json:"cost_limit"`
	URLs      map[string]string `json:"urls"`
	Path      string            `json:"path"`
}

func (s *SettingsCmd) Run(ctx *Context) error {
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(newSettingsView(ctx))
	}

	rows := settingRows(ctx)
	if ctx.PlainText {
		for _, row := range rows {
			fmt.Fprintf(ctx.Out, "%s\t%s\n", row.Key, row.Value)
		}
		return nil
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", row.Key, row.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	ctx.UI.Infof("Settings file: %s", ctx.Store.Path())
	return nil
}

func newSettingsView(ctx *Context) settingsView {
	view := settingsView{
		SleepTime: ctx.Settings.SleepTime.Seconds(),
		URLs:      map[string]string{},
		Path:      ctx.Store.Path(),
	}
	if !ctx.Settings.Unlimited() {
		limit := int(ctx.Settings.CostLimit)
		view.CostLimit = &limit
	}
	for _, name := range ctx.Sites.Names() {
		view.URLs[name] = ctx.Settings.URL(name)
	}
	return view
}

func settingRows(ctx *Context) []settingRow {
	rows := []settingRow{
		{Key: config.KeySleepTime, Value: strconv.FormatFloat(ctx.Settings.SleepTime.Seconds(), 'f', -1, 64) + "s"},
		{Key: config.KeyCostLimit, Value: formatLimit(ctx.Settings.CostLimit)},
	}
	for _, name := range ctx.Sites.Names() {
		rows = append(rows, settingRow{Key: config.URLKey(name), Value: ctx.Settings.URL(name)})
	}
	return rows
}
