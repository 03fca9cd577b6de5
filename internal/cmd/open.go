package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/jimezsa/czynsz/internal/listing"
)

type OpenCmd struct {
	Site string `arg:"" help:"Site whose saved page to open (olx, otodom)."`
}

func (o *OpenCmd) Run(ctx *Context) error {
	adapter, err := ctx.Sites.Lookup(o.Site)
	if err != nil {
		return err
	}

	path := listing.ArtifactPath(ctx.Dir, adapter.Name())
	_, err = os.Stat(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		if !ctx.machineOutput() {
			ctx.UI.Infof("No saved page for %s yet.", adapter.Name())
		}
		result, err := refresh(ctx, adapter, false)
		if err != nil {
			return err
		}
		path = result.Artifact
	default:
		return err
	}
	return ctx.open(path)
}
