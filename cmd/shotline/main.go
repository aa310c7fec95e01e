package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/api"
	"github.com/shotline/shotline/internal/config"
	"github.com/shotline/shotline/internal/db"
	"github.com/shotline/shotline/internal/engine"
	"github.com/shotline/shotline/internal/events"
	"github.com/shotline/shotline/internal/generation"
	"github.com/shotline/shotline/internal/jobs"
	"github.com/shotline/shotline/internal/models"
	"github.com/shotline/shotline/internal/repository"
	"github.com/shotline/shotline/internal/watcher"
)

func main() {
	log.Println("Shotline starting...")

	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database, "migrations"); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	cfg.MergeFromDB(database.DB)
	log.Printf("generator enabled=%v, gap=%d, spacing=%d",
		cfg.GeneratorEnabled(), cfg.PositionGap, cfg.BatchSpacing)

	entryRepo := repository.NewEntryRepository(database.DB)
	shotRepo := repository.NewShotRepository(database.DB)
	assetRepo := repository.NewAssetRepository(database.DB)
	genRepo := repository.NewGenerationRepository(database.DB)

	bus := events.NewBus()
	eng := engine.New(entryRepo, bus, engine.Options{
		Gap:        cfg.PositionGap,
		Spacing:    cfg.BatchSpacing,
		RetryDelay: cfg.ReadRetryWait,
		OnError: func(shotID uuid.UUID, kind models.MutationKind, err error) {
			log.Printf("mutation %s on shot %s rolled back: %v", kind, shotID, err)
		},
	})

	jobQueue := jobs.NewQueue(cfg.RedisAddr)
	srv := api.NewServer(cfg, database, eng, bus, jobQueue)

	var gen generation.Generator = generation.NoopGenerator{}
	if cfg.GeneratorEnabled() {
		gen = generation.NewHTTPGenerator(cfg.GeneratorURL, cfg.GeneratorKey)
	}
	jobs.RegisterHandlers(jobQueue, eng, shotRepo, assetRepo, genRepo, gen, srv.WSHub())

	if err := jobQueue.Start(context.Background()); err != nil {
		log.Fatalf("job queue failed to start: %v", err)
	}
	defer jobQueue.Stop()

	if cfg.IncomingDir != "" {
		fw, err := watcher.New(cfg.IncomingDir, jobQueue)
		if err != nil {
			log.Printf("watcher disabled: %v", err)
		} else if err := fw.Start(); err != nil {
			log.Printf("watcher disabled: %v", err)
		} else {
			defer fw.Stop()
		}
	}

	httpServer := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%d", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)

	// Let in-flight optimistic persistence settle before the process exits
	eng.Flush()
}
