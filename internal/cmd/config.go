package cmd

import "fmt"

type ConfigCmd struct {
	Init  InitConfigCmd  `cmd:"" help:"Write the default settings file if missing."`
	Path  PathConfigCmd  `cmd:"" help:"Print the settings directory."`
	Reset ResetConfigCmd `cmd:"" help:"Overwrite the settings file with defaults."`
}

type InitConfigCmd struct{}

type PathConfigCmd struct{}

type ResetConfigCmd struct{}

func (c *InitConfigCmd) Run(ctx *Context) error {
	created, err := ctx.Store.Init()
	if err != nil {
		return err
	}
	if !created {
		ctx.UI.Infof("Settings already initialized at %s", ctx.Store.Path())
		return nil
	}
	ctx.UI.Infof("Created: %s", ctx.Store.Path())
	return nil
}

func (c *PathConfigCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintln(ctx.Out, ctx.Store.Dir())
	return err
}

func (c *ResetConfigCmd) Run(ctx *Context) error {
	if err := ctx.Store.Recover(); err != nil {
		return err
	}
	settings, _, err := ctx.Store.Load()
	if err != nil {
		return err
	}
	ctx.Settings = settings
	ctx.UI.Successf("Restored default settings at %s", ctx.Store.Path())
	return nil
}
