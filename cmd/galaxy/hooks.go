package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vanderheijden86/foodgalaxy/pkg/hooks"
)

// withHooks runs the project's pre-export hooks, then write, then the
// post-export hooks. A failing post hook does not undo the export.
func withHooks(stderr io.Writer, noHooks bool, ctx hooks.ExportContext, write func() error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	ctx.Timestamp = time.Now()
	exec, err := hooks.RunHooks(cwd, ctx, noHooks)
	if err != nil {
		return fmt.Errorf("load hooks: %w", err)
	}
	if exec == nil {
		return write()
	}
	if err := exec.RunPreExport(); err != nil {
		bad.Fprintln(stderr, exec.Summary())
		return err
	}
	if err := write(); err != nil {
		return err
	}
	postErr := exec.RunPostExport()
	subtle.Fprintln(stderr, exec.Summary())
	if postErr != nil {
		warn.Fprintf(stderr, "galaxy: %v\n", postErr)
	}
	return nil
}
