package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shotline/shotline/internal/config"
	"github.com/shotline/shotline/internal/db"
	"github.com/shotline/shotline/internal/engine"
	"github.com/shotline/shotline/internal/events"
	"github.com/shotline/shotline/internal/httputil"
	"github.com/shotline/shotline/internal/jobs"
	"github.com/shotline/shotline/internal/repository"
)

type Server struct {
	config       *config.Config
	db           *db.DB
	shotRepo     *repository.ShotRepository
	entryRepo    *repository.EntryRepository
	assetRepo    *repository.AssetRepository
	genRepo      *repository.GenerationRepository
	settingsRepo *repository.SettingsRepository
	engine       *engine.Coordinator
	jobQueue     *jobs.Queue
	wsHub        *WSHub
	router       chi.Router
	startedAt    time.Time
}

func NewServer(cfg *config.Config, database *db.DB, eng *engine.Coordinator,
	bus *events.Bus, jobQueue *jobs.Queue) *Server {
	wsHub := NewWSHub()

	// Mutation lifecycle events flow straight out to connected clients.
	bus.Subscribe(wsHub.OnMutation)

	s := &Server{
		config:       cfg,
		db:           database,
		shotRepo:     repository.NewShotRepository(database.DB),
		entryRepo:    repository.NewEntryRepository(database.DB),
		assetRepo:    repository.NewAssetRepository(database.DB),
		genRepo:      repository.NewGenerationRepository(database.DB),
		settingsRepo: repository.NewSettingsRepository(database.DB),
		engine:       eng,
		jobQueue:     jobQueue,
		wsHub:        wsHub,
		startedAt:    time.Now(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) WSHub() *WSHub                              { return s.wsHub }
func (s *Server) ShotRepo() *repository.ShotRepository       { return s.shotRepo }
func (s *Server) AssetRepo() *repository.AssetRepository     { return s.assetRepo }
func (s *Server) GenRepo() *repository.GenerationRepository  { return s.genRepo }
func (s *Server) SettingsRepo() *repository.SettingsRepository {
	return s.settingsRepo
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/ws", s.handleWebSocket)

		r.Route("/shots", func(r chi.Router) {
			r.Get("/", s.handleListShots)
			r.Post("/", s.handleCreateShot)
			r.Get("/{id}", s.handleGetShot)
			r.Put("/{id}", s.handleUpdateShot)
			r.Delete("/{id}", s.handleDeleteShot)

			r.Get("/{id}/entries", s.handleListEntries)
			r.Post("/{id}/entries", s.handleInsertEntry)
			r.Post("/{id}/entries/batch", s.handleInsertBatch)
			r.Put("/{id}/order", s.handleReorder)

			r.Post("/{id}/generate", s.handleGenerate)
			r.Get("/{id}/generations", s.handleListGenerations)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Post("/{id}/duplicate", s.handleDuplicateEntry)
			r.Delete("/{id}", s.handleDeleteEntry)
			r.Post("/batch-delete", s.handleBatchDelete)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", s.handleListAssets)
			r.Post("/", s.handleCreateAsset)
			r.Delete("/{id}", s.handleDeleteAsset)
		})

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds":    int(time.Since(s.startedAt).Seconds()),
		"goroutines":        runtime.NumGoroutine(),
		"ws_clients":        s.wsHub.ClientCount(),
		"generator_enabled": s.config.GeneratorEnabled(),
	})
}
