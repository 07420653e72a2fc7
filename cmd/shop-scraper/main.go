package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/maltedev/shop-scraper/internal/api"
	"github.com/maltedev/shop-scraper/internal/browser"
	"github.com/maltedev/shop-scraper/internal/cache"
	"github.com/maltedev/shop-scraper/internal/config"
	"github.com/maltedev/shop-scraper/internal/database"
	"github.com/maltedev/shop-scraper/internal/discovery"
	"github.com/maltedev/shop-scraper/internal/metrics"
	"github.com/maltedev/shop-scraper/internal/operator"
	"github.com/maltedev/shop-scraper/internal/output"
	"github.com/maltedev/shop-scraper/internal/parser"
	"github.com/maltedev/shop-scraper/internal/ratelimit"
	"github.com/maltedev/shop-scraper/internal/region"
	"github.com/maltedev/shop-scraper/internal/scraper"
	"github.com/maltedev/shop-scraper/internal/shopurl"
	"github.com/maltedev/shop-scraper/internal/storage"
	"github.com/maltedev/shop-scraper/internal/workflow"
	"github.com/maltedev/shop-scraper/pkg/logger"
)

const defaultQuery = "Lancôme products TikTok shop Vietnam"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var (
		query       = flag.String("query", defaultQuery, "Search query used for URL discovery")
		limit       = flag.Int("limit", cfg.Discovery.Limit, "Maximum number of discovered URLs")
		country     = flag.String("country", cfg.Discovery.Country, "Country hint passed to discovery")
		attempts    = flag.Int("attempts", cfg.Scraper.MaxAttempts, "Attempts per URL, one region each")
		headless    = flag.Bool("headless", cfg.Browser.Headless, "Run the browser without a window (challenges abort)")
		yes         = flag.Bool("yes", false, "Start without the confirmation prompt")
		onChallenge = flag.String("on-challenge", "", "Answer challenges automatically: continue, skip or quit")
		outputDir   = flag.String("output-dir", cfg.Output.Dir, "Directory for CSV, snapshots and the ledger")
		statusAddr  = flag.String("status-addr", cfg.Server.StatusAddr, "Address of the status server, empty to disable")
	)
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		*query = strings.Join(args, " ")
	}

	cfg.Discovery.Limit = *limit
	cfg.Discovery.Country = *country
	cfg.Scraper.MaxAttempts = *attempts
	cfg.Browser.Headless = *headless
	cfg.Output.Dir = *outputDir
	cfg.Server.StatusAddr = *statusAddr

	log := logger.Init(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *query, *yes, *onChallenge, log); err != nil {
		log.Error("scrape failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, query string, yes bool, onChallenge string, log *slog.Logger) error {
	console := operator.NewConsole(os.Stdin, os.Stdout)

	fmt.Printf("\nQuery:            %s\n", query)
	fmt.Printf("Headless:         %t\n", cfg.Browser.Headless)
	fmt.Printf("Output directory: %s\n", cfg.Output.Dir)
	fmt.Printf("Regions:          %s\n", strings.Join(cfg.Scraper.Regions, ", "))
	if !cfg.Browser.Headless && onChallenge == "" {
		fmt.Println("A browser window opens per attempt. Solve any verification there, then answer the prompt.")
	}

	if !yes {
		ok, err := console.Confirm(ctx, "\nPress ENTER to start scraping, or 'q' to quit: ")
		if err != nil {
			if ctx.Err() != nil {
				fmt.Println("\nScraping cancelled.")
				return nil
			}
			return fmt.Errorf("confirmation prompt: %w", err)
		}
		if !ok {
			fmt.Println("Scraping cancelled.")
			return nil
		}
	}

	table := region.DefaultTable()
	m := metrics.New()

	var op scraper.Operator = console
	if onChallenge != "" {
		op = operator.Fixed{Answer: onChallenge}
	}

	browserOpts := browser.DefaultOptions()
	browserOpts.Headless = cfg.Browser.Headless
	browserOpts.Timeout = cfg.Scraper.NavTimeout
	browserOpts.ViewportWidth = cfg.Browser.ViewportWidth
	browserOpts.ViewportHeight = cfg.Browser.ViewportHeight
	browserOpts.ProxyServer = cfg.Browser.ProxyServer

	launcher := browser.NewLauncher(browserOpts)
	defer func() {
		if err := launcher.Close(); err != nil {
			log.Warn("failed to stop browser driver", "error", err)
		}
	}()

	orchOpts := []scraper.Option{
		scraper.WithBackoff(ratelimit.NewBackoff(cfg.Scraper.BackoffMin, cfg.Scraper.BackoffMax, nil)),
		scraper.WithObserver(m),
	}
	if cfg.Output.SaveSnapshots {
		orchOpts = append(orchOpts, scraper.WithSnapshotStore(output.NewSnapshotStore(cfg.Output.Dir)))
	}

	orch := scraper.NewOrchestrator(table, scraper.BrowserSessions(launcher), op, scraper.Options{
		MaxAttempts:     cfg.Scraper.MaxAttempts,
		Regions:         region.ParseCodes(cfg.Scraper.Regions),
		SettleDelay:     cfg.Scraper.SettleDelay,
		ChallengeSettle: cfg.Scraper.ChallengeSettle,
	}, orchOpts...)

	searcher := discovery.NewFirecrawlClient(cfg.Discovery.APIKey, discovery.WithBaseURL(cfg.Discovery.BaseURL))

	deps := workflow.Deps{
		Discoverer: discovery.NewService(searcher, shopurl.NewClassifier(shopurl.DefaultRules())),
		Scraper:    orch,
		Extractor:  parser.NewExtractor(parser.DefaultSelectors(), parser.DefaultKeywords()),
		CSV:        output.NewCSVWriter(cfg.Output.Dir),
		Metrics:    m,
		NewLedger: func(runID string) (workflow.Ledger, error) {
			name := cfg.Output.LedgerFile
			if name == "" {
				name = filepath.Join(cfg.Output.Dir, fmt.Sprintf("ledger_%s.json", runID))
			}
			l, err := storage.NewLedger(name, runID)
			if err != nil {
				return nil, err
			}
			return l, nil
		},
	}

	if cfg.Database.Enabled {
		db, err := database.New(ctx, database.Config{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			Database:    cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			MaxConns:    cfg.Database.MaxConns,
			MinConns:    1,
			MaxConnLife: 5 * time.Minute,
			MaxConnIdle: time.Minute,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		deps.Store = db
		log.Info("connected to database")
	}

	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, continuing without recent-url cache", "error", err)
		} else {
			store := cache.NewRecentStore(client, cfg.Redis.KeyPrefix, cfg.Redis.RecentTTL)
			defer store.Close()
			deps.Cache = store
			log.Info("connected to redis", "addr", cfg.Redis.Addr)
		}
	}

	wf := workflow.New(deps, workflow.Options{
		Limit:      cfg.Discovery.Limit,
		Country:    cfg.Discovery.Country,
		SkipRecent: cfg.Redis.SkipRecent,
	}, nil)

	if cfg.Server.StatusAddr != "" {
		server := api.NewServer(cfg.Server.StatusAddr, api.NewRouter(api.NewHandlers(wf.Aggregator(), log), m.Registry))
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("status server shutdown failed", "error", err)
			}
		}()
	}

	result, runErr := wf.Run(ctx, query)
	if result != nil {
		if err := workflow.WriteSummary(os.Stdout, result); err != nil {
			log.Warn("failed to print summary", "error", err)
		}
		if ctx.Err() != nil {
			fmt.Println("\nRun interrupted; collected results were kept.")
		}
		fmt.Printf("\nCheck the '%s' directory for generated files.\n", cfg.Output.Dir)
	}
	return runErr
}
