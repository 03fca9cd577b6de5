package cmd

import "github.com/alecthomas/kong"

type CLI struct {
	Color     string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto" env:"CZYNSZ_COLOR"`
	JSON      bool   `help:"JSON output to stdout; disables colors." env:"CZYNSZ_JSON"`
	Plain     bool   `help:"TSV output to stdout; disables colors." env:"CZYNSZ_PLAIN"`
	Verbose   bool   `help:"Enable debug logging." env:"CZYNSZ_VERBOSE"`
	ConfigDir string `name:"config-dir" help:"Directory holding config.txt and proxies.txt." env:"CZYNSZ_CONFIG_DIR" type:"path"`
	Dir       string `help:"Directory for saved pages." default:"." env:"CZYNSZ_DIR" type:"path"`
	ProxyList string `name:"proxies" help:"Comma-separated proxy URLs (overrides CZYNSZ_PROXIES and proxies.txt)."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Refresh  RefreshCmd  `cmd:"" help:"Fetch a site's listings, add hidden fees and save the filtered page."`
	Open     OpenCmd     `cmd:"" help:"Open the saved page for a site, refreshing it first if missing."`
	Link     LinkCmd     `cmd:"" help:"Use a results page URL as the search for its site, then refresh."`
	Settings SettingsCmd `cmd:"" help:"Print current settings."`
	Config   ConfigCmd   `cmd:"" help:"Manage the settings file."`
	Proxies  ProxiesCmd  `cmd:"" help:"Proxy utilities."`
	Version  VersionCmd  `cmd:"" help:"Print version."`
}

func NewCLI() *CLI {
	return &CLI{}
}
