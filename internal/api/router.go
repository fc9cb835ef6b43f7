package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/otoscribe/otoscribe/internal/api/handlers"
	"github.com/otoscribe/otoscribe/internal/api/middleware"
	"github.com/otoscribe/otoscribe/internal/auth"
	"github.com/otoscribe/otoscribe/internal/config"
	"github.com/otoscribe/otoscribe/internal/pipeline"
	"github.com/otoscribe/otoscribe/internal/queue"
	"github.com/otoscribe/otoscribe/internal/transcript"
)

type Router struct {
	mux           *chi.Mux
	db            *pgxpool.Pool
	redis         *redis.Client
	cfg           *config.Config
	pipe          *pipeline.Pipeline
	transcriptSvc *transcript.Service
	queueClient   *queue.Client
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, pipe *pipeline.Pipeline, svc *transcript.Service, qc *queue.Client) *Router {
	return &Router{
		mux:           chi.NewRouter(),
		db:            db,
		redis:         rdb,
		cfg:           cfg,
		pipe:          pipe,
		transcriptSvc: svc,
		queueClient:   qc,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(10, 20)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	diarizeH := handlers.NewDiarizeHandler(rt.pipe, rt.transcriptSvc, rt.queueClient)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.Auth.JWTSecret != "" {
			jwtMW := auth.NewJWTMiddleware(rt.cfg.Auth.JWTSecret)
			r.Use(jwtMW.Authenticate)
		}

		r.Post("/diarize", diarizeH.Diarize)
		r.Post("/diarize/async", diarizeH.DiarizeAsync)

		if rt.transcriptSvc != nil {
			transcriptH := handlers.NewTranscriptHandler(rt.transcriptSvc)
			r.Route("/transcripts", func(r chi.Router) {
				r.Get("/", transcriptH.List)
				r.Get("/{id}", transcriptH.Get)
				r.Delete("/{id}", transcriptH.Delete)
			})
		}
	})

	return r
}
