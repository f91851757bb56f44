package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/screen2deck/screen2deck/api"
	"github.com/screen2deck/screen2deck/carddb"
	"github.com/screen2deck/screen2deck/config"
	"github.com/screen2deck/screen2deck/corpus"
	"github.com/screen2deck/screen2deck/job"
	"github.com/screen2deck/screen2deck/observability"
	"github.com/screen2deck/screen2deck/ocr"
	"github.com/screen2deck/screen2deck/ocr/tesseract"
	"github.com/screen2deck/screen2deck/pipeline"
	"github.com/screen2deck/screen2deck/preprocess"
	"github.com/screen2deck/screen2deck/resolve"
	"github.com/screen2deck/screen2deck/strategy"
	"github.com/screen2deck/screen2deck/structure"
)

// configPathFromArgs pre-scans argv for --config before cobra's normal
// flag parsing runs, so the JWCC file can be loaded first and cobra's
// per-field flags layer on top of it as overrides rather than the other
// way around.
func configPathFromArgs(args []string) string {
	for i, a := range args {
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
	}
	return ""
}

func main() {
	var (
		addr         string
		workers      int
		carddbURL    string
		snapshotPath string
		visionURL    string
		visionKey    string
	)

	cfg, err := config.Load(configPathFromArgs(os.Args[1:]))
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("load config: %w", err))
		os.Exit(1)
	}

	cmd := &cobra.Command{
		Use:   "screen2deckd",
		Short: "Runs the screen2deck OCR and job-execution daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg, addr, workers, carddbURL, snapshotPath, visionURL, visionKey)
		},
	}

	cmd.Flags().String("config", "", "path to a JWCC configuration file")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().IntVar(&workers, "workers", 4, "number of job.Worker goroutines")
	cmd.Flags().StringVar(&carddbURL, "carddb-url", "", "base URL of the online card database; empty disables online fallback")
	cmd.Flags().StringVar(&snapshotPath, "snapshot-path", "", "path to persist the fingerprint index across restarts")
	cmd.Flags().StringVar(&visionURL, "vision-endpoint", "", "secondary vision OCR endpoint; empty disables the vision fallback engine")
	cmd.Flags().StringVar(&visionKey, "vision-api-key", "", "API key for the vision OCR endpoint")
	config.BindFlags(cmd.Flags(), &cfg)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config, addr string, workers int, carddbURL, snapshotPath, visionURL, visionKey string) error {
	log := observability.NewTextLogger(os.Stdout)

	ocr.SetMinSpanConfidence(cfg.OCRMinSpanConf)

	cardCorpus := corpus.New()
	var onlineClient *carddb.Client
	if carddbURL != "" {
		dbCfg := carddb.DefaultConfig(carddbURL)
		dbCfg.Timeout = cfg.CardDBAPITimeout()
		dbCfg.MinRequestGap = cfg.CardDBAPIRateLimit()
		client := carddb.New(dbCfg)

		if err := rebuildCorpus(context.Background(), cardCorpus, client); err != nil {
			log.Warn("corpus.initial_rebuild_failed", observability.Error("error", err))
		}
		go scheduleRebuilds(cardCorpus, client, log)

		if cfg.EnableCardDBOnlineFallback {
			onlineClient = client
		}
	}

	pre := preprocess.New(preprocess.Config{
		EnableSuperres:   cfg.EnableSuperres,
		SuperresMinWidth: cfg.SuperresMinWidth,
		MaxHeight:        1500,
	})

	primary := tesseract.NewEngine()
	var secondary ocr.Engine
	if visionURL != "" && cfg.EnableVisionFallback {
		secondary = ocr.NewVisionEngine(visionURL, visionKey)
	}

	strat := strategy.New(strategy.Config{
		EarlyStopConfidence:     cfg.OCREarlyStopConf,
		FallbackConfidenceFloor: cfg.OCRMinConf,
		FallbackMinLines:        cfg.OCRMinLines,
		VisionFallbackEnabled:   cfg.EnableVisionFallback && secondary != nil,
		SecondaryRatePerMinute:  cfg.SecondaryOCRRatePerMinute,
	}, pre, primary, secondary)

	resolver := resolve.New(resolve.Config{
		FuzzyAcceptThreshold: resolve.DefaultConfig().FuzzyAcceptThreshold,
		FuzzyTopK:            cfg.FuzzyTopK,
		OnlineFallback:       cfg.EnableCardDBOnlineFallback,
	}, cardCorpus, onlineClient)

	validator := structure.NewConstructedValidator()
	hub := pipeline.NewDefaultHub(pre, strat, resolver, validator, cfg.AlwaysVerifyCardDB)

	store := job.NewMemStore(snapshotPath, time.Minute)
	defer store.Close()
	if snapshotPath != "" {
		if data, err := os.ReadFile(snapshotPath); err == nil {
			if err := store.LoadSnapshot(data); err != nil {
				log.Warn("store.snapshot_load_failed", observability.Error("error", err))
			}
		}
	}

	jobCfg := job.Config{
		MaxImageBytes:  cfg.MaxImageBytes,
		JobTTL:         cfg.JobTTL(),
		FingerprintTTL: cfg.FingerprintTTL(),
		JobDeadline:    cfg.JobDeadline(),
		MaxQueueDepth:  256,
	}
	manager := job.NewManager(jobCfg, store, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		w := job.NewWorker(manager, hub, log.With(observability.Int("worker_id", i)))
		go w.Run(ctx)
	}

	handler := api.NewHandler(manager, cardCorpus, log)
	router := handler.Router(api.NewRateLimiter(600, 50))

	httpSrv := &http.Server{Addr: addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		log.Info("screen2deckd.listening", observability.String("addr", addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("screen2deckd.shutting_down", observability.String("reason", "signal"))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// rebuildCorpus performs a one-shot bulk fetch and decode, used both at
// startup and from scheduleRebuilds' periodic loop.
func rebuildCorpus(ctx context.Context, c *corpus.Corpus, client *carddb.Client) error {
	r, err := client.BulkFetch(ctx)
	if err != nil {
		return fmt.Errorf("bulk fetch: %w", err)
	}
	defer r.Close()
	return c.Rebuild(r)
}

// scheduleRebuilds refreshes the card corpus once a day. Card databases
// change slowly; a daily cadence keeps the catalogue current without
// hammering the upstream bulk endpoint.
func scheduleRebuilds(c *corpus.Corpus, client *carddb.Client, log observability.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		if err := rebuildCorpus(context.Background(), c, client); err != nil {
			log.Warn("corpus.rebuild_failed", observability.Error("error", err))
			continue
		}
		log.Info("corpus.rebuilt")
	}
}
