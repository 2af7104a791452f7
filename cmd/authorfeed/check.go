package main

import (
	"fmt"

	"github.com/smach/authorfeed"
	"github.com/smach/authorfeed/dateparse"
	"github.com/smach/authorfeed/yaml"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	dates := dateparse.NewParser()
	for i, fc := range deps.Config.Feeds {
		if _, err := newExtractor(fc, dates, deps.Logger); err != nil {
			return authorfeed.Errorf(authorfeed.EINVALID, "feeds[%d]: %s", i, authorfeed.ErrorMessage(err))
		}
	}

	if err := yaml.Encode(deps.Stdout, deps.Config); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stderr, "configuration OK: %d feeds\n", len(deps.Config.Feeds))
	return nil
}
