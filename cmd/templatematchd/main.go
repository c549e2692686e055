package main

import (
	"bufio"
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moolen/templatematch/internal/catalog"
	"github.com/moolen/templatematch/internal/config"
	"github.com/moolen/templatematch/internal/generator"
	"github.com/moolen/templatematch/internal/histogram"
	"github.com/moolen/templatematch/internal/ingest"
	"github.com/moolen/templatematch/internal/logging"
	"github.com/moolen/templatematch/internal/matcher"
	"github.com/moolen/templatematch/internal/pipeline"
	"github.com/moolen/templatematch/internal/sink"
	"github.com/moolen/templatematch/internal/snapshot"
	"github.com/moolen/templatematch/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file (defaults are used if omitted)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	listenAddr := flag.String("listen", ":8090", "address the ingest/metrics HTTP server listens on")
	flag.Parse()

	if err := logging.Initialize(*logLevel); err != nil {
		os.Exit(1)
	}
	logger := logging.GetLogger("main")

	cfg := config.Defaults()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.ErrorWithErr("failed to load configuration", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		logger.ErrorWithErr("invalid configuration", err)
		os.Exit(1)
	}

	cat := catalog.New(cfg.MinFragmentLength)

	persistence := catalog.NewPersistenceManager(cat, cfg.CatalogCachePath, 30*time.Second)
	if err := persistence.Load(); err != nil {
		logger.ErrorWithErr("failed to load catalog cache, starting empty", err)
	}

	snapStore := snapshot.NewStore(snapshot.Build(cat))
	m := matcher.New(snapStore, matcher.Config{FragmentMatchThreshold: cfg.FragmentMatchThreshold})

	retainer := catalog.NewRetainer(cat, catalog.RetentionConfig{
		Enabled:  cfg.RetentionEnabled,
		Window:   cfg.RetentionWindow,
		Interval: cfg.RetentionInterval,
	})

	genClient := generator.NewClient(cfg.GeneratorURL, 30*time.Second)
	storeClient := store.NewClient(cfg.StoreURL, 30*time.Second)

	metricsReg := prometheus.DefaultRegisterer
	histMetrics := histogram.NewMetrics(metricsReg, "default")
	hist := histogram.New()

	sk := sink.New(storeClient, sink.Config{
		BufferSize:    cfg.BufferSize,
		FlushInterval: cfg.FlushInterval,
		MaxRetries:    cfg.MaxRetries,
	})

	validator := pipeline.NewValidator(cat, cfg.MinFragmentLength)
	installer := pipeline.NewInstaller(cat, snapStore, validator)

	dispatcher := pipeline.NewDispatcher(genClient, pipeline.DispatcherConfig{
		MaxConcurrent:  cfg.MaxConcurrentGen,
		MaxRetries:     uint64(cfg.MaxRetries),
		InitialBackoff: time.Duration(cfg.InitialBackoffMS) * time.Millisecond,
		Instructions:   pipeline.DefaultDispatcherConfig().Instructions,
	}, installer.HandleResult)

	ctx, cancel := context.WithCancel(context.Background())

	// collectorFeed connects the unmatched queue's single consumer to the
	// size/timeout batching collector (§2 data flow: misses -> Pipeline).
	collectorFeed := make(chan pipeline.UnmatchedLine, cfg.GenBatchSize)
	collector := pipeline.NewCollector(collectorFeed, pipeline.CollectorConfig{
		BatchSize:    cfg.GenBatchSize,
		BatchTimeout: cfg.GenBatchTimeout,
	}, func(batch []pipeline.UnmatchedLine) {
		dispatcher.Dispatch(ctx, batch)
	})

	unmatchedQueue := pipeline.NewUnmatchedQueue(cfg.OptimalBatchSize, func(line pipeline.UnmatchedLine) {
		collectorFeed <- line
	})
	deduper := pipeline.NewDeduper(pipeline.DefaultDedupeCacheSize)

	go persistence.Start(ctx)
	go retainer.Start(ctx)
	go sk.Run(ctx)
	go collector.Run(ctx)
	go unmatchedQueue.Start(ctx)

	logger.Info("templatematchd started")

	// ingestLine is the end-to-end hot path wiring (§2 data flow):
	// normalize -> match -> record hit into sink+histogram, or enqueue
	// the miss for template generation.
	ingestLine := func(org, service, host, level, rawLine string) {
		normalized := ingest.Normalize(rawLine)
		id, matched := m.MatchLine([]byte(normalized))

		now := time.Now()
		rec := store.Record{
			Timestamp: now,
			Org:       org,
			Service:   service,
			Host:      host,
			Level:     level,
			Message:   rawLine,
		}
		if matched {
			rec.TemplateID = &id
			cat.RecordMatch(id, now.Unix())
			hist.Record(id)
			histMetrics.RecordMatch(id)
		} else if !deduper.Seen([]byte(normalized)) {
			unmatchedQueue.Enqueue(pipeline.UnmatchedLine{Line: []byte(normalized), EnqueuedAt: now})
		}
		sk.Append(ctx, rec)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ingest", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		org := r.URL.Query().Get("org")
		service := r.URL.Query().Get("service")
		host := r.URL.Query().Get("host")
		level := r.URL.Query().Get("level")

		// Every request gets a trace id, generated unless the caller
		// already supplied one, so its ingest can be correlated across
		// log lines (and against the upstream caller's own traces) via
		// logging's context-aware logger rather than a one-off field.
		traceID := r.Header.Get("X-Request-Id")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		reqCtx := context.WithValue(r.Context(), logging.TraceIDKey(), traceID)
		reqLogger := logger.WithContext(reqCtx)

		scanner := bufio.NewScanner(r.Body)
		lines := 0
		for scanner.Scan() {
			ingestLine(org, service, host, level, scanner.Text())
			lines++
		}
		if err := scanner.Err(); err != nil {
			reqLogger.ErrorWithErr("failed reading ingest request body", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		reqLogger.WithField("lines", lines).Info("ingested batch")
	})

	httpServer := &http.Server{Addr: *listenAddr, Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorWithErr("ingest server failed", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr("ingest server shutdown error", err)
	}

	cancel()
	unmatchedQueue.Stop()
	dispatcher.Wait()
	persistence.Stop()
	retainer.Stop()
	sk.Flush(context.Background())

	logger.Info("shutdown complete")
}
