package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/jimezsa/czynsz/internal/cmd"
	"github.com/jimezsa/czynsz/internal/config"
	"github.com/jimezsa/czynsz/internal/site"
	"github.com/jimezsa/czynsz/internal/ui"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	// A local .env may carry CZYNSZ_* overrides.
	_ = godotenv.Load()

	cli := cmd.NewCLI()
	versionString := buildVersion()

	parser, err := newParser(cli, versionString)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		fallbackUI := ui.New(os.Stdout, os.Stderr, ui.NormalizeColorMode(os.Getenv("CZYNSZ_COLOR")), false)
		fallbackUI.Errorf("%v", err)
		os.Exit(1)
	}

	colorMode := ui.NormalizeColorMode(cli.Color)
	disableColor := cli.JSON || cli.Plain
	userInterface := ui.New(os.Stdout, os.Stderr, colorMode, disableColor)

	level := zerolog.InfoLevel
	if cli.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	configDir := cli.ConfigDir
	if configDir == "" {
		configDir, err = config.ConfigDir()
		if err != nil {
			userInterface.Errorf("%v", err)
			os.Exit(1)
		}
	}

	sites := site.Default()
	store := config.NewStore(configDir, sites)
	settings, recovered, err := store.Load()
	if err != nil {
		userInterface.Errorf("%v", err)
		os.Exit(1)
	}
	if recovered {
		logger.Warn().Str("path", store.Path()).Msg("settings missing or malformed, defaults restored")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runCtx := &cmd.Context{
		Ctx:        ctx,
		Out:        os.Stdout,
		Err:        os.Stderr,
		UI:         userInterface,
		Store:      store,
		Settings:   settings,
		Sites:      sites,
		Logger:     logger,
		Dir:        cli.Dir,
		Proxies:    cli.ProxyList,
		Verbose:    cli.Verbose,
		JSONOutput: cli.JSON,
		PlainText:  cli.Plain,
		Version:    versionString,
		ColorMode:  colorMode,
	}

	if err := kctx.Run(runCtx); err != nil {
		userInterface.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}

func newParser(cli *cmd.CLI, versionString string) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("czynsz"),
		kong.Description("Rental listings from olx.pl and otodom.pl with the hidden rent fee added to the price."),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": versionString},
	)
}

func buildVersion() string {
	switch {
	case commit == "" && date == "":
		return version
	case commit == "":
		return fmt.Sprintf("%s (%s)", version, date)
	case date == "":
		return fmt.Sprintf("%s (%s)", version, commit)
	default:
		return fmt.Sprintf("%s (%s, %s)", version, commit, date)
	}
}
