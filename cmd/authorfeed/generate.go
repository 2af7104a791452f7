package main

import (
	"fmt"

	"github.com/smach/authorfeed"
	"github.com/smach/authorfeed/pipeline"
)

// Run executes the generate command.
func (c *GenerateCmd) Run(deps *Dependencies) error {
	feeds := deps.Config.Feeds
	progress := func(ev pipeline.ProgressEvent) {
		switch ev.Type {
		case pipeline.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "error: %s\n", authorfeed.ErrorMessageOrText(ev.Error))
		case pipeline.ProgressCompleted:
			deps.Logger.Debug("feed finished", "output", ev.Output, "completed", ev.Completed, "total", ev.Total)
		}
	}

	results, err := deps.Generator.GenerateAll(deps.Ctx, feeds, progress)

	degraded := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Degraded {
			degraded++
			fmt.Fprintf(deps.Stderr, "warning: %s: page could not be read, wrote error feed: %s\n",
				r.Write.Path, authorfeed.ErrorMessageOrText(r.Err))
			continue
		}
		fmt.Fprintf(deps.Stdout, "Wrote %s (%d articles, %s, checksum %s)\n",
			r.Write.Path, len(r.Articles), FormatBytes(r.Write.Bytes), r.Write.Checksum)
	}

	if err != nil {
		if ctxErr := deps.Ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		failed := 0
		for _, r := range results {
			if r == nil {
				failed++
			}
		}
		return fmt.Errorf("%d of %d feeds failed", failed, len(feeds))
	}
	if c.Strict && degraded > 0 {
		return fmt.Errorf("%d of %d feeds degraded", degraded, len(feeds))
	}
	return nil
}
