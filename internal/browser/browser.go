package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/maltedev/shop-scraper/internal/region"
)

type Options struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	ProxyServer    string
	LaunchArgs     []string
	ExtraHeaders   map[string]string
	Indicators     Indicators
	// Rand picks the user agent per session. nil uses the global source.
	Rand *rand.Rand
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       false,
		Timeout:        60 * time.Second,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		LaunchArgs: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
		ExtraHeaders: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Encoding": "gzip, deflate, br",
			"DNT":             "1",
		},
		Indicators: DefaultIndicators(),
	}
}

// NavigationError reports a failed page load: transport error, timeout or a
// non-OK response status.
type NavigationError struct {
	URL    string
	Status int
	Err    error
}

func (e *NavigationError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("navigate %s: status %d: %v", e.URL, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("navigate %s: status %d", e.URL, e.Status)
	}
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

var errNoResponse = errors.New("no response")

// Launcher owns the playwright driver. Every Open launches a fresh browser so
// no cookies or storage leak between regions.
type Launcher struct {
	opts   *Options
	logger *slog.Logger

	mu sync.Mutex
	pw *playwright.Playwright
}

func NewLauncher(opts *Options) *Launcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Launcher{
		opts:   opts,
		logger: slog.Default().With("component", "browser"),
	}
}

func (l *Launcher) driver() (*playwright.Playwright, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pw != nil {
		return l.pw, nil
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	l.pw = pw
	return pw, nil
}

// Open starts an isolated browser configured to look like a client in the
// profile's region.
func (l *Launcher) Open(ctx context.Context, profile region.GeoProfile) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := l.driver()
	if err != nil {
		return nil, err
	}

	args := append([]string(nil), l.opts.LaunchArgs...)
	args = append(args,
		fmt.Sprintf("--window-size=%d,%d", l.opts.ViewportWidth, l.opts.ViewportHeight),
		"--lang="+profile.Locale,
	)

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.opts.Headless),
		Args:     args,
	}
	if l.opts.ProxyServer != "" {
		launchOpts.Proxy = &playwright.Proxy{Server: l.opts.ProxyServer}
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	headers := make(map[string]string, len(l.opts.ExtraHeaders)+len(profile.Headers))
	for k, v := range l.opts.ExtraHeaders {
		headers[k] = v
	}
	for k, v := range profile.Headers {
		headers[k] = v
	}

	userAgent := profile.PickUserAgent(l.opts.Rand)
	contextOpts := playwright.BrowserNewContextOptions{
		Locale:     playwright.String(profile.Locale),
		TimezoneId: playwright.String(profile.Timezone),
		Geolocation: &playwright.Geolocation{
			Latitude:  profile.Coordinates.Latitude,
			Longitude: profile.Coordinates.Longitude,
		},
		Permissions:       []string{"geolocation"},
		JavaScriptEnabled: playwright.Bool(true),
		AcceptDownloads:   playwright.Bool(false),
		Viewport: &playwright.Size{
			Width:  l.opts.ViewportWidth,
			Height: l.opts.ViewportHeight,
		},
		ExtraHttpHeaders: headers,
	}
	if userAgent != "" {
		contextOpts.UserAgent = playwright.String(userAgent)
	}

	bctx, err := b.NewContext(contextOpts)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		b.Close()
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}
	page.SetDefaultTimeout(float64(l.opts.Timeout.Milliseconds()))

	l.logger.Debug("session opened", "region", profile.Code, "locale", profile.Locale, "user_agent", userAgent)

	return &Session{
		browser:     b,
		context:     bctx,
		page:        page,
		timeout:     l.opts.Timeout,
		indicators:  l.opts.Indicators,
		interactive: !l.opts.Headless,
		logger:      l.logger.With("region", profile.Code),
	}, nil
}

// Close stops the playwright driver. Sessions must be closed first.
func (l *Launcher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pw == nil {
		return nil
	}
	err := l.pw.Stop()
	l.pw = nil
	if err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

type Session struct {
	browser     playwright.Browser
	context     playwright.BrowserContext
	page        playwright.Page
	timeout     time.Duration
	indicators  Indicators
	interactive bool
	logger      *slog.Logger
}

// Navigate loads url and waits for the network to go idle.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return &NavigationError{URL: url, Err: err}
	}

	resp, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(s.timeout.Milliseconds())),
	})
	if err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	if resp == nil {
		return &NavigationError{URL: url, Err: errNoResponse}
	}
	if !resp.Ok() {
		return &NavigationError{URL: url, Status: resp.Status()}
	}
	return nil
}

// Settle waits for DOM content and then for delay, so client-side rendering
// can finish.
func (s *Session) Settle(ctx context.Context, delay time.Duration) error {
	if err := s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("wait for dom content: %w", err)
	}

	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Session) ProbeBlock() bool {
	return s.indicators.IsBlocked(s.bodyText())
}

func (s *Session) ProbeChallenge() bool {
	return s.indicators.IsChallenge(s.bodyText())
}

func (s *Session) bodyText() string {
	text, err := s.page.InnerText("body")
	if err != nil {
		s.logger.Debug("failed to read body text", "error", err)
		return ""
	}
	return text
}

// Snapshot returns the rendered document markup.
func (s *Session) Snapshot() (string, error) {
	html, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}
	return html, nil
}

// URL is the page's current address after redirects.
func (s *Session) URL() string {
	return s.page.URL()
}

// Interactive reports whether an operator can see the window.
func (s *Session) Interactive() bool {
	return s.interactive
}

func (s *Session) Close() error {
	var errs []string

	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("page: %v", err))
		}
	}
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("context: %v", err))
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("browser: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %s", strings.Join(errs, "; "))
	}
	return nil
}
