package scraper

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/maltedev/shop-scraper/internal/browser"
	"github.com/maltedev/shop-scraper/internal/models"
	"github.com/maltedev/shop-scraper/internal/region"
)

var (
	ErrRegionBlocked = errors.New("product not available in region")
	ErrChallenge     = errors.New("human verification required")
	ErrUserAbort     = errors.New("aborted by operator")
)

// Session is one isolated browsing context. It is owned by a single attempt.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Settle(ctx context.Context, delay time.Duration) error
	ProbeBlock() bool
	ProbeChallenge() bool
	Snapshot() (string, error)
	URL() string
	Interactive() bool
	Close() error
}

type SessionFactory interface {
	Open(ctx context.Context, profile region.GeoProfile) (Session, error)
}

// Operator answers the challenge prompt.
type Operator interface {
	Prompt(ctx context.Context, question string) (string, error)
}

// SnapshotStore persists captured markup and returns where it went.
type SnapshotStore interface {
	Save(url string, attempt int, html string) (string, error)
}

// Backoff blocks between failed attempts.
type Backoff interface {
	Wait(ctx context.Context) error
}

// Observer receives one call per finished attempt.
type Observer interface {
	ObserveAttempt(region string, outcome models.Outcome, elapsed time.Duration)
}

type launcherSessions struct {
	launcher *browser.Launcher
}

// BrowserSessions adapts a playwright launcher to SessionFactory.
func BrowserSessions(l *browser.Launcher) SessionFactory {
	return launcherSessions{launcher: l}
}

func (f launcherSessions) Open(ctx context.Context, profile region.GeoProfile) (Session, error) {
	s, err := f.launcher.Open(ctx, profile)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Decision is the operator's answer to a challenge.
type Decision int

const (
	DecisionContinue Decision = iota
	DecisionSkip
	DecisionQuit
)

func (d Decision) String() string {
	switch d {
	case DecisionSkip:
		return "skip"
	case DecisionQuit:
		return "quit"
	default:
		return "continue"
	}
}

// ParseDecision reads an operator answer. Unrecognized input continues.
func ParseDecision(answer string) Decision {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "skip", "s":
		return DecisionSkip
	case "quit", "q":
		return DecisionQuit
	default:
		return DecisionContinue
	}
}

// OutcomeError maps a finished attempt to the error a caller can match with
// errors.Is. Success returns nil.
func OutcomeError(a *models.ScrapeAttempt) error {
	if a == nil {
		return nil
	}
	switch a.Outcome {
	case models.OutcomeSuccess:
		return nil
	case models.OutcomeRegionBlocked:
		return ErrRegionBlocked
	case models.OutcomeChallengeHeadlessAbort:
		return ErrChallenge
	case models.OutcomeUserSkipped, models.OutcomeUserQuit:
		return ErrUserAbort
	default:
		if a.Error != "" {
			return errors.New(a.Error)
		}
		return errors.New(string(a.Outcome))
	}
}

type Options struct {
	MaxAttempts int
	// Regions is the rotation order; attempt n uses Regions[(n-1)%len].
	Regions []region.Code
	// SettleDelay follows every successful navigation.
	SettleDelay time.Duration
	// ChallengeSettle follows an operator's continue.
	ChallengeSettle time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts:     3,
		Regions:         []region.Code{region.VN, region.SA, region.US},
		SettleDelay:     3 * time.Second,
		ChallengeSettle: 5 * time.Second,
	}
}

// URLResult is every attempt made for one candidate.
type URLResult struct {
	Candidate models.CandidateURL     `json:"candidate"`
	Attempts  []*models.ScrapeAttempt `json:"attempts"`
	// Success is the successful attempt, nil when all attempts failed.
	Success *models.ScrapeAttempt `json:"-"`
	// Quit is set when the operator asked to stop the whole run.
	Quit bool `json:"quit"`
}

// Last returns the final attempt, or nil when none ran.
func (r *URLResult) Last() *models.ScrapeAttempt {
	if len(r.Attempts) == 0 {
		return nil
	}
	return r.Attempts[len(r.Attempts)-1]
}
