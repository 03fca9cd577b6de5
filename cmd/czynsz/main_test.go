package main

import (
	"testing"

	"github.com/jimezsa/czynsz/internal/cmd"
)

func TestParseReadsEnvSwitches(t *testing.T) {
	t.Setenv("CZYNSZ_JSON", "true")
	t.Setenv("CZYNSZ_VERBOSE", "1")
	t.Setenv("CZYNSZ_COLOR", "never")

	cli := cmd.NewCLI()
	parser, err := newParser(cli, "test")
	if err != nil {
		t.Fatalf("newParser() error = %v", err)
	}
	if _, err := parser.Parse([]string{"version"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !cli.JSON || !cli.Verbose || cli.Plain || cli.Color != "never" {
		t.Fatalf("unexpected cli flags: json=%v verbose=%v plain=%v color=%q", cli.JSON, cli.Verbose, cli.Plain, cli.Color)
	}
}

func TestFlagsOverrideEnvSwitches(t *testing.T) {
	t.Setenv("CZYNSZ_COLOR", "never")

	cli := cmd.NewCLI()
	parser, err := newParser(cli, "test")
	if err != nil {
		t.Fatalf("newParser() error = %v", err)
	}
	if _, err := parser.Parse([]string{"--color", "always", "version"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cli.Color != "always" {
		t.Fatalf("Color = %q, want always", cli.Color)
	}
}

func TestBuildVersion(t *testing.T) {
	version, commit, date = "1.2.0", "abc123", ""
	t.Cleanup(func() { version, commit, date = "dev", "", "" })

	if got := buildVersion(); got != "1.2.0 (abc123)" {
		t.Fatalf("buildVersion() = %q", got)
	}
}
