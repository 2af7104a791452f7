package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/smach/authorfeed"
)

// chromeFlags keep pages rendering while they are not in the foreground and
// avoid exhausting /dev/shm in containers.
var chromeFlags = []flags.Flag{
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-renderer-backgrounding",
	"disable-dev-shm-usage",
}

// Chrome owns the browser process shared by all renders of a run. A browser
// that stopped answering between feeds is relaunched on the next page.
//
// Chrome is safe for concurrent use.
type Chrome struct {
	binPath  string
	headless bool

	mu         sync.Mutex
	browser    *rod.Browser
	launcher   *launcher.Launcher
	relaunches int
	closed     bool
}

// ChromeOption configures Chrome.
type ChromeOption func(*Chrome)

// WithBrowserPath sets the Chrome or Chromium binary to launch. When empty,
// the launcher finds a local browser or downloads one.
func WithBrowserPath(path string) ChromeOption {
	return func(c *Chrome) {
		c.binPath = path
	}
}

// WithHeadless toggles headless mode. Defaults to true.
func WithHeadless(headless bool) ChromeOption {
	return func(c *Chrome) {
		c.headless = headless
	}
}

// LaunchChrome starts a browser. Close must be called when it is no longer
// needed.
func LaunchChrome(opts ...ChromeOption) (*Chrome, error) {
	c := &Chrome{headless: true}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.launch(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewPage opens a blank page. If the browser does not answer, it is
// relaunched once before giving up.
func (c *Chrome) NewPage() (*rod.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, authorfeed.Errorf(authorfeed.EINVALID, "browser is closed")
	}

	page, err := c.browser.Page(proto.TargetCreateTarget{})
	if err == nil {
		return page, nil
	}

	_ = c.shutdown()
	if lerr := c.launch(); lerr != nil {
		return nil, fmt.Errorf("opening page: %w (relaunch: %v)", err, lerr)
	}
	c.relaunches++
	return c.browser.Page(proto.TargetCreateTarget{})
}

// Relaunches returns how many times the browser was restarted.
func (c *Chrome) Relaunches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.relaunches
}

// PID returns the launcher process ID, or 0 once closed.
func (c *Chrome) PID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.launcher == nil {
		return 0
	}
	return c.launcher.PID()
}

// Close stops the browser. Close is safe to call multiple times.
func (c *Chrome) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.shutdown()
}

// launch must be called with mu held, or before c is shared.
func (c *Chrome) launch() error {
	l := launcher.New().Leakless(true).Headless(c.headless)
	for _, flag := range chromeFlags {
		l = l.Set(flag)
	}
	if c.binPath != "" {
		l = l.Bin(c.binPath)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	c.browser = browser
	c.launcher = l
	return nil
}

// shutdown must be called with mu held.
func (c *Chrome) shutdown() error {
	var err error
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	if c.launcher != nil {
		c.launcher.Kill()
		c.launcher = nil
	}
	return err
}
