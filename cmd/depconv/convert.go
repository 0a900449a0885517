package main

import (
	"fmt"

	"github.com/fwojciec/depconv"
	"github.com/fwojciec/depconv/batch"
)

// progressInterval is how many documents pass between progress lines.
const progressInterval = 50

// Run executes the convert command.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	deps.Logger.Info("convert",
		"root", c.InputRoot,
		"geocoding", c.Geocoding,
	)

	progress := func(e batch.ProgressEvent) {
		switch e.Type {
		case batch.ProgressStarted:
			fmt.Fprintf(deps.Stderr, "Found %d documents\n", e.Total)
		case batch.ProgressFailed:
			deps.Logger.Error("convert document", "path", e.Path, "err", e.Error)
		}
		if e.Type == batch.ProgressCompleted || e.Type == batch.ProgressFailed {
			if e.Completed%progressInterval == 0 {
				fmt.Fprintf(deps.Stderr, "[%d/%d] processed\n", e.Completed, e.Total)
			}
		}
	}

	result, err := deps.Converter.Convert(deps.Ctx, c.InputRoot, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", depconv.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Converted %d of %d documents\n", result.Converted, result.Total)

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", result.Failed, result.Total)
	}
	return nil
}
