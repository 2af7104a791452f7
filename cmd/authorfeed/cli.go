package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/smach/authorfeed"
	"github.com/smach/authorfeed/pipeline"
	"github.com/smach/authorfeed/yaml"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Config    *authorfeed.Config
	Logger    *slog.Logger
	Generator *pipeline.Generator
}

// CLI defines the command-line interface structure for Kong. Feed flags
// describe a single feed; --config loads one or more feeds from YAML instead.
type CLI struct {
	Config string `short:"C" help:"YAML configuration file with one or more feeds"`

	Author         string        `short:"a" help:"Author name as shown in bylines"`
	ProfileURL     string        `short:"u" name:"profile-url" help:"Author profile page URL"`
	Output         string        `short:"o" default:"feed.xml" help:"Feed file to write"`
	MaxArticles    int           `short:"n" name:"max-articles" default:"20" help:"Maximum number of articles in the feed"`
	ArticlePattern string        `name:"article-pattern" default:"/article/" help:"Regular expression article URLs must match"`
	SiteName       string        `name:"site-name" help:"Publication name used in the feed title"`
	Cascade        string        `enum:"first-match,union" default:"first-match" help:"How discovery strategies are combined (first-match, union)"`
	Timeout        time.Duration `short:"t" default:"60s" help:"Page render timeout"`
	Scrolls        int           `default:"3" help:"Scroll passes to trigger lazy loading"`
	WaitSelector   string        `name:"wait-selector" help:"CSS selector to wait for before scrolling"`
	BrowserPath    string        `name:"browser-path" help:"Chrome or Chromium binary to launch"`
	Concurrency    int           `short:"c" default:"2" help:"Feeds generated in parallel"`
	Debug          bool          `short:"d" help:"Log extraction details"`
	LogFile        string        `name:"log-file" help:"Also write logs to this file, rotated by size"`

	Generate GenerateCmd `cmd:"" help:"Render profile pages and write feed files"`
	Preview  PreviewCmd  `cmd:"" help:"Render profile pages and print the extracted articles"`
	Check    CheckCmd    `cmd:"" help:"Validate the configuration and print the effective settings"`
}

// LoadConfig returns the run configuration from --config, or from the feed
// flags when no file is given. --debug and --log-file apply to both.
func (c *CLI) LoadConfig() (*authorfeed.Config, error) {
	if c.Config != "" {
		cfg, err := yaml.LoadConfig(c.Config)
		if err != nil {
			return nil, err
		}
		cfg.Debug = cfg.Debug || c.Debug
		if c.LogFile != "" {
			cfg.LogFile = c.LogFile
		}
		return cfg, nil
	}

	if c.Author == "" || c.ProfileURL == "" {
		return nil, authorfeed.Errorf(authorfeed.EINVALID, "--author and --profile-url are required unless --config is given")
	}

	cfg := &authorfeed.Config{
		Debug:       c.Debug,
		LogFile:     c.LogFile,
		Concurrency: c.Concurrency,
		Render: authorfeed.RenderConfig{
			Timeout:      c.Timeout,
			Scrolls:      c.Scrolls,
			WaitSelector: c.WaitSelector,
			BrowserPath:  c.BrowserPath,
		},
		Feeds: []authorfeed.FeedConfig{{
			Author:         c.Author,
			ProfileURL:     c.ProfileURL,
			Output:         c.Output,
			MaxArticles:    c.MaxArticles,
			ArticlePattern: c.ArticlePattern,
			SiteName:       c.SiteName,
			Cascade:        c.Cascade,
		}},
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GenerateCmd is the "generate" subcommand.
type GenerateCmd struct {
	Strict bool `help:"Exit with an error when a feed could only be written as an error notice"`
}

// PreviewCmd is the "preview" subcommand.
type PreviewCmd struct {
	Width int `short:"w" default:"60" help:"Maximum title column width"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct{}
