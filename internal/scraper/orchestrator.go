package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maltedev/shop-scraper/internal/browser"
	"github.com/maltedev/shop-scraper/internal/models"
	"github.com/maltedev/shop-scraper/internal/ratelimit"
	"github.com/maltedev/shop-scraper/internal/region"
	"github.com/maltedev/shop-scraper/internal/shopurl"
)

const challengeQuestion = "Verification required. Solve it in the browser, then type 'continue', 'skip' or 'quit': "

// Orchestrator drives a single URL through navigation, detection and
// operator recovery, rotating regions between attempts.
type Orchestrator struct {
	table      *region.Table
	resolver   *region.Resolver
	normalizer *shopurl.Normalizer
	sessions   SessionFactory
	operator   Operator
	snapshots  SnapshotStore
	backoff    Backoff
	observer   Observer
	opts       Options
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSnapshotStore writes the markup of every successful attempt to s.
func WithSnapshotStore(s SnapshotStore) Option {
	return func(o *Orchestrator) { o.snapshots = s }
}

// WithBackoff replaces the default 4-6s pause between failed attempts.
func WithBackoff(b Backoff) Option {
	return func(o *Orchestrator) { o.backoff = b }
}

// WithObserver reports every finished attempt to obs.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithLogger sets the logger; the component attribute is added.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l.With("component", "orchestrator") }
}

// WithNormalizer replaces the default tiktok.com host normalizer.
func WithNormalizer(n *shopurl.Normalizer) Option {
	return func(o *Orchestrator) { o.normalizer = n }
}

// WithClock sets the time source for attempt timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func NewOrchestrator(table *region.Table, sessions SessionFactory, operator Operator, opts Options, options ...Option) *Orchestrator {
	defaults := DefaultOptions()
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaults.MaxAttempts
	}
	if len(opts.Regions) == 0 {
		opts.Regions = defaults.Regions
	}

	o := &Orchestrator{
		table:      table,
		resolver:   region.NewResolver(table),
		normalizer: shopurl.NewNormalizer(table, shopurl.DefaultDomain),
		sessions:   sessions,
		operator:   operator,
		backoff:    ratelimit.NewBackoff(ratelimit.DefaultMinDelay, ratelimit.DefaultMaxDelay, nil),
		opts:       opts,
		logger:     slog.Default().With("component", "orchestrator"),
		now:        time.Now,
	}
	for _, opt := range options {
		opt(o)
	}
	for _, code := range o.opts.Regions {
		if !table.Has(code) {
			o.logger.Warn("rotation region has no profile, attempts fall back to the resolver", "region", code, "default", table.Default())
		}
	}
	return o
}

// RegionFor returns the region tried on the given 1-based attempt.
func (o *Orchestrator) RegionFor(attempt int) region.Code {
	if attempt < 1 {
		attempt = 1
	}
	return o.opts.Regions[(attempt-1)%len(o.opts.Regions)]
}

// ScrapeURL retries one candidate until success, exhaustion, operator quit
// or cancellation. It never panics.
func (o *Orchestrator) ScrapeURL(ctx context.Context, candidate models.CandidateURL) *URLResult {
	result := &URLResult{Candidate: candidate}
	logger := o.logger.With("url", candidate.URL)

	for attempt := 1; attempt <= o.opts.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			logger.Info("scrape cancelled", "attempts", len(result.Attempts))
			return result
		}

		code := o.RegionFor(attempt)
		logger.Info("scrape attempt", "attempt", attempt, "max_attempts", o.opts.MaxAttempts, "region", code)

		a := o.Attempt(ctx, candidate.URL, attempt, code)
		result.Attempts = append(result.Attempts, a)

		switch a.Outcome {
		case models.OutcomeSuccess:
			result.Success = a
			logger.Info("scrape succeeded", "attempt", attempt, "region", a.Region, "final_url", a.FinalURL)
			return result
		case models.OutcomeUserQuit:
			result.Quit = true
			logger.Info("operator quit", "attempt", attempt)
			return result
		}

		logger.Warn("scrape attempt failed",
			"attempt", attempt,
			"region", a.Region,
			"outcome", a.Outcome,
			"error", a.Error,
		)

		if attempt < o.opts.MaxAttempts {
			if err := o.backoff.Wait(ctx); err != nil {
				logger.Info("backoff interrupted", "error", err)
				return result
			}
		}
	}

	logger.Warn("all attempts failed", "attempts", len(result.Attempts))
	return result
}

// Attempt runs one pass of the state machine. The returned attempt always
// carries a terminal outcome and the session is always closed.
func (o *Orchestrator) Attempt(ctx context.Context, rawURL string, attempt int, code region.Code) (res *models.ScrapeAttempt) {
	started := time.Now()
	res = &models.ScrapeAttempt{
		URL:        rawURL,
		Attempt:    attempt,
		CapturedAt: o.now(),
	}

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = models.OutcomeException
			res.Error = fmt.Sprintf("panic: %v", r)
			res.HTML = ""
		}
		if o.observer != nil {
			o.observer.ObserveAttempt(res.Region, res.Outcome, time.Since(started))
		}
	}()

	// START
	canonical, detected := o.normalizer.Normalize(rawURL)
	switch {
	case detected != "":
		code = detected
	case code == "" || !o.table.Has(code):
		code = o.resolver.Resolve(rawURL)
	}
	profile := o.table.Profile(code)
	target := shopurl.ApplyRegionParams(canonical, profile)

	res.Region = string(profile.Code)
	res.FinalURL = target

	session, err := o.sessions.Open(ctx, profile)
	if err != nil {
		return o.finish(res, models.OutcomeException, fmt.Errorf("open session: %w", err))
	}
	defer func() {
		if err := session.Close(); err != nil {
			o.logger.Warn("failed to close session", "url", rawURL, "error", err)
		}
	}()

	// NAVIGATING
	if err := session.Navigate(ctx, target); err != nil {
		var navErr *browser.NavigationError
		if errors.As(err, &navErr) {
			return o.finish(res, models.OutcomeHTTPError, err)
		}
		return o.finish(res, models.OutcomeException, err)
	}
	if u := session.URL(); u != "" {
		res.FinalURL = u
	}

	// SETTLING / PROBING
	if err := session.Settle(ctx, o.opts.SettleDelay); err != nil {
		return o.finish(res, models.OutcomeException, fmt.Errorf("settle: %w", err))
	}
	if session.ProbeBlock() {
		return o.finish(res, models.OutcomeRegionBlocked, ErrRegionBlocked)
	}

	if session.ProbeChallenge() {
		if !session.Interactive() {
			return o.finish(res, models.OutcomeChallengeHeadlessAbort, ErrChallenge)
		}

		// CHALLENGED
		if o.operator == nil {
			return o.finish(res, models.OutcomeChallengeHeadlessAbort, ErrChallenge)
		}
		o.logger.Info("challenge detected", "url", rawURL, "region", res.Region, "attempt", attempt)

		answer, err := o.operator.Prompt(ctx, challengeQuestion)
		if err != nil {
			return o.finish(res, models.OutcomeException, fmt.Errorf("operator prompt: %w", err))
		}

		switch ParseDecision(answer) {
		case DecisionSkip:
			return o.finish(res, models.OutcomeUserSkipped, ErrUserAbort)
		case DecisionQuit:
			return o.finish(res, models.OutcomeUserQuit, ErrUserAbort)
		}

		if err := session.Settle(ctx, o.opts.ChallengeSettle); err != nil {
			return o.finish(res, models.OutcomeException, fmt.Errorf("settle after challenge: %w", err))
		}
		if session.ProbeBlock() {
			return o.finish(res, models.OutcomeRegionBlocked, ErrRegionBlocked)
		}
		if u := session.URL(); u != "" {
			res.FinalURL = u
		}
	}

	// LOADED
	html, err := session.Snapshot()
	if err != nil {
		return o.finish(res, models.OutcomeException, err)
	}
	res.HTML = html

	if o.snapshots != nil {
		path, err := o.snapshots.Save(rawURL, attempt, html)
		if err != nil {
			o.logger.Warn("failed to save snapshot", "url", rawURL, "attempt", attempt, "error", err)
		} else {
			res.SnapshotPath = path
		}
	}

	return o.finish(res, models.OutcomeSuccess, nil)
}

func (o *Orchestrator) finish(res *models.ScrapeAttempt, outcome models.Outcome, err error) *models.ScrapeAttempt {
	res.Outcome = outcome
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
