package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"jobtrack-agent/internal/agent"
	"jobtrack-agent/internal/classify"
	"jobtrack-agent/internal/config"
	"jobtrack-agent/internal/events"
	"jobtrack-agent/internal/ledger"
	"jobtrack-agent/internal/mailbox"
	"jobtrack-agent/internal/notify"
	"jobtrack-agent/internal/scheduler"
	"jobtrack-agent/internal/secrets"
	"jobtrack-agent/internal/store"
)

func main() {
	var (
		cfgPath   = flag.String("config", "", "config file path (default <data-dir>/config.yml)")
		dataDir   = flag.String("data-dir", "", "data directory (default $JOBTRACK_DATA_DIR or .)")
		once      = flag.Bool("once", false, "run one poll cycle and exit")
		days      = flag.Int("days", 0, "override how many days back to search")
		messageID = flag.String("message-id", "", "reprocess one message by identifier and exit")
		testMode  = flag.Bool("test", false, "check config and mailbox connectivity, then exit")
	)
	flag.Parse()

	// .env is optional; real deployments use the keychain.
	_ = godotenv.Load()

	if *dataDir == "" {
		*dataDir = os.Getenv("JOBTRACK_DATA_DIR")
	}
	if *dataDir == "" {
		*dataDir = "."
	}
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One agent per data dir; a second instance would double-process mail.
	runLock := flock.New(filepath.Join(*dataDir, "jobtrack.lock"))
	locked, err := runLock.TryLock()
	if err != nil {
		log.Fatalf("run lock: %v", err)
	}
	if !locked {
		log.Fatalf("another instance holds %s, exiting", runLock.Path())
	}
	defer func() { _ = runLock.Unlock() }()

	path := *cfgPath
	if path == "" {
		path, err = config.EnsureUserConfig(*dataDir)
		if err != nil {
			log.Fatalf("config bootstrap failed: %v", err)
		}
	}
	raw, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", path, err)
	}
	cfg, check := config.NormalizeAndValidate(raw)
	for _, w := range check.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !check.OK() {
		for _, e := range check.Errors {
			log.Printf("[config] error: %s", e)
		}
		os.Exit(2)
	}
	if *days > 0 {
		cfg.Polling.DaysBack = *days
	}

	imapPassword, err := secrets.GetIMAPPassword(cfg.Mailbox.Username, cfg.Mailbox.IMAPHost)
	if err != nil {
		log.Fatalf("imap password: %v", err)
	}
	mbox := &mailbox.IMAP{
		Addr:     fmt.Sprintf("%s:%d", cfg.Mailbox.IMAPHost, cfg.Mailbox.IMAPPort),
		Username: cfg.Mailbox.Username,
		Password: imapPassword,
		Folder:   cfg.Mailbox.Folder,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *testMode {
		if err := runConnectivityTest(ctx, cfg, mbox); err != nil {
			log.Fatalf("connectivity test failed: %v", err)
		}
		log.Printf("connectivity test passed")
		return
	}

	led, err := ledger.Open(filepath.Join(*dataDir, "processed_emails.json"))
	if err != nil {
		log.Fatalf("ledger: %v", err)
	}

	db, err := store.Open(filepath.Join(*dataDir, "jobtrack.db"))
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	apps := store.New(db.Pool)

	var strategies []classify.Strategy
	if cfg.Model.Enabled {
		key, err := secrets.GetModelAPIKey()
		if err != nil {
			log.Printf("[agent] model tier disabled: %v", err)
		} else {
			client := classify.NewOpenAIClient(key, cfg.Model.Name)
			strategies = append(strategies, classify.NewLLMStrategy(client, cfg.Model.RequestsPerSecond))
		}
	}
	strategies = append(strategies, classify.NewPatternStrategy())
	parser := classify.NewPipeline(strategies...)

	mailer := buildMailer(cfg)
	hub := events.NewHub()

	ag := &agent.Agent{
		Mailbox:  mbox,
		Store:    apps,
		Parser:   parser,
		Ledger:   led,
		Notifier: mailer,
		Hub:      hub,
		Cfg: agent.Config{
			DaysBack:         cfg.Polling.DaysBack,
			FirstRunMessages: cfg.Polling.FirstRunMessages,
			OngoingMessages:  cfg.Polling.OngoingMessages,
			RetentionDays:    cfg.Polling.RetentionDays,
			SenderAny:        cfg.Mailbox.SenderAny,
			SubjectAny:       cfg.Mailbox.SubjectAny,
		},
	}

	if *messageID != "" {
		msg, err := mbox.FetchByID(ctx, *messageID)
		if err != nil {
			log.Fatalf("fetch %s: %v", *messageID, err)
		}
		stats, err := ag.ProcessMessage(ctx, msg)
		exitWith(stats, err)
	}

	if *once {
		stats, err := ag.Run(ctx)
		exitWith(stats, err)
	}

	var lastStats atomic.Value
	lastStats.Store(agent.Stats{})
	summary := newSummarizer(mailer)

	runOnce := func(ctx context.Context) error {
		stats, err := ag.Run(ctx)
		if err != nil {
			return err
		}
		lastStats.Store(stats)
		summary.record(stats)
		return nil
	}

	interval := time.Duration(cfg.Polling.IntervalMinutes) * time.Minute
	log.Printf("[agent] polling %s every %s", cfg.Mailbox.IMAPHost, interval)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheduler.Every(ctx, interval, "agent", runOnce)
		return nil
	})
	g.Go(func() error {
		return serveStatus(ctx, cfg.App.StatusPort, hub, led, apps, &lastStats)
	})
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}

func exitWith(stats agent.Stats, err error) {
	if err != nil {
		log.Printf("run failed: %v", err)
		os.Exit(1)
	}
	if stats.Errors > 0 {
		os.Exit(1)
	}
	os.Exit(0)
}

func buildMailer(cfg config.Config) *notify.Mailer {
	m := &notify.Mailer{
		Host:       cfg.Notify.SMTPHost,
		Port:       cfg.Notify.SMTPPort,
		From:       cfg.Notify.From,
		Recipients: cfg.Notify.Recipients,
	}
	if m.From == "" || len(m.Recipients) == 0 {
		return m
	}
	pw, err := secrets.GetSMTPPassword(m.From)
	if err != nil {
		log.Printf("[notify] disabled: %v", err)
		return m
	}
	m.Password = pw
	return m
}

// runConnectivityTest validates that the mailbox is reachable with the
// resolved credentials by fetching at most one recent message.
func runConnectivityTest(ctx context.Context, cfg config.Config, mbox *mailbox.IMAP) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	filter := mailbox.SearchFilter{
		Since:      time.Now().AddDate(0, 0, -cfg.Polling.DaysBack),
		SenderAny:  cfg.Mailbox.SenderAny,
		SubjectAny: cfg.Mailbox.SubjectAny,
	}
	msgs, err := mbox.Fetch(ctx, filter, 1)
	if err != nil {
		return err
	}
	log.Printf("connected to %s, folder %q, %d matching message(s) in window", cfg.Mailbox.IMAPHost, cfg.Mailbox.Folder, len(msgs))
	return nil
}
