package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"propsync/config"
	"propsync/extract"
	"propsync/logging"
	"propsync/models"
	"propsync/pipeline"
	"propsync/storage"
	"propsync/syncer"
	"propsync/workers"
)

var (
	processFile = flag.String("process", "", "Process a single saved page file and exit")
	siteID      = flag.String("site", "", "Site id to attribute the page to (required with -process)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting propsync...")
	log.Printf("Loaded %d site configs", len(cfg.Sites))
	for id, site := range cfg.Sites {
		log.Printf("  - %s (%s)", site.Name, id)
	}

	ctx := context.Background()

	pgStore, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()
	log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.PostgresURL))

	graph, err := storage.NewSQLiteGraph(cfg.GraphDBPath)
	if err != nil {
		log.Fatalf("Failed to open graph store: %v", err)
	}
	defer graph.Close()
	log.Printf("Graph database: %s", cfg.GraphDBPath)

	engine := syncer.NewEngine(pgStore, graph, cfg.SyncWorkers)

	// One pipeline per site so each carries its own selector groups and
	// run counters.
	pipelines := make(map[string]*pipeline.Pipeline, len(cfg.Sites))
	for id, site := range cfg.Sites {
		pipelines[id] = pipeline.New(extract.DefaultChain(site.SelectorGroups), engine)
	}

	if *processFile != "" {
		site, ok := cfg.Sites[*siteID]
		if !ok {
			log.Fatalf("Unknown site %q (use -site with one of the configured ids)", *siteID)
		}
		content, err := os.ReadFile(*processFile)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *processFile, err)
		}
		broker := models.BrokerMeta{Name: site.Name, Website: site.Website}
		report, err := pipelines[*siteID].ProcessPage(ctx, string(content), broker)
		if err != nil {
			log.Fatalf("Process failed: %v", err)
		}
		log.Printf("Processed %s: attempted=%d succeeded=%d failed=%d",
			*processFile, report.Attempted, report.Succeeded, report.Failed)
		for _, recErr := range report.Errors {
			log.Printf("  error: %s [%s]: %s", recErr.PropertyID, recErr.Store, recErr.Message)
		}
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reconciler := workers.NewReconcileWorker(pgStore, graph)
	go reconciler.Run(ctx, cfg.ReconcileBatch, time.Hour)
	log.Println("Reconcile worker started")

	if cfg.ReconcileCron != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.ReconcileCron, reconciler.Trigger); err != nil {
			log.Fatalf("Invalid reconcile cron %q: %v", cfg.ReconcileCron, err)
		}
		c.Start()
		defer c.Stop()
		log.Printf("Reconcile schedule: %s", cfg.ReconcileCron)
	}

	go pollSpool(ctx, cfg, pipelines, pgStore)
	log.Printf("Watching spool dir %s every %s", cfg.SpoolDir, cfg.PollInterval)

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	cancel()
	log.Println("Goodbye!")
}

// pollSpool sweeps SpoolDir/<site-id>/ on an interval. The transport layer
// drops fetched pages there; processed files move to the archive dir.
func pollSpool(ctx context.Context, cfg *config.Config, pipelines map[string]*pipeline.Pipeline, store *storage.PostgresStore) {
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Spool watcher stopping")
			return
		case <-ticker.C:
			for id, pl := range pipelines {
				sweepSite(ctx, cfg, id, pl, store)
			}
		}
	}
}

func sweepSite(ctx context.Context, cfg *config.Config, id string, pl *pipeline.Pipeline, store *storage.PostgresStore) {
	dir := filepath.Join(cfg.SpoolDir, id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Spool: read %s: %v", dir, err)
		}
		return
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm") {
			files = append(files, name)
		}
	}
	if len(files) == 0 {
		return
	}
	sort.Strings(files)

	site := cfg.Sites[id]
	broker := models.BrokerMeta{Name: site.Name, Website: site.Website}

	run := &models.IngestRun{Source: id, StartedAt: time.Now(), Status: models.RunStatusRunning}
	if err := store.CreateIngestRun(ctx, run); err != nil {
		log.Printf("Spool: create run for %s: %v", id, err)
	}

	pl.ResetStats()
	archiveDir := filepath.Join(cfg.ArchiveDir, id)
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		log.Printf("Spool: create archive dir %s: %v", archiveDir, err)
		return
	}

	for _, name := range files {
		if ctx.Err() != nil {
			return
		}

		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Spool: read %s: %v", path, err)
			continue
		}

		report, err := pl.ProcessPage(ctx, string(content), broker)
		if err != nil {
			log.Printf("Spool: process %s: %v", path, err)
			continue
		}
		log.Printf("Spool: %s: attempted=%d succeeded=%d failed=%d",
			name, report.Attempted, report.Succeeded, report.Failed)

		if err := os.Rename(path, filepath.Join(archiveDir, name)); err != nil {
			log.Printf("Spool: archive %s: %v", path, err)
		}
	}

	snap := pl.Stats()
	now := time.Now()
	run.FinishedAt = &now
	run.Status = models.RunStatusCompleted
	if snap.FatalErrors > 0 {
		run.Status = models.RunStatusFailed
	}
	run.PagesProcessed = snap.PagesProcessed
	run.CandidatesFound = snap.CandidatesFound
	run.PropertiesSaved = snap.Synced
	run.ErrorsCount = snap.Failed + snap.FatalErrors
	run.Metadata = snap.ToJSON()
	if run.ID != 0 {
		if err := store.UpdateIngestRun(ctx, run); err != nil {
			log.Printf("Spool: update run %d: %v", run.ID, err)
		}
	}
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	start := strings.Index(connStr, "://")
	if start < 0 {
		return connStr
	}
	rest := connStr[start+3:]
	at := strings.IndexByte(rest, '@')
	if at < 0 {
		return connStr
	}
	colon := strings.IndexByte(rest[:at], ':')
	if colon < 0 {
		return connStr
	}
	return connStr[:start+3] + rest[:colon+1] + "****" + rest[at:]
}
