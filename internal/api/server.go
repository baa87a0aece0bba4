package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"blog_admin/internal/config"
	"blog_admin/internal/storage/postgres"
)

const maxBodySize = 1 << 20

// Server exposes the record store over the json-server protocol.
type Server struct {
	store      RecordStore
	dependents map[string][]postgres.Dependent
	cfg        config.ServerConfig
	logger     *slog.Logger
}

func NewServer(store RecordStore, cfg config.ServerConfig, logger *slog.Logger) *Server {
	deps := make(map[string][]postgres.Dependent, len(cfg.Dependents))
	for parent, list := range cfg.Dependents {
		for _, d := range list {
			deps[parent] = append(deps[parent], postgres.Dependent{Collection: d.Collection, Field: d.Field})
		}
	}

	return &Server{
		store:      store,
		dependents: deps,
		cfg:        cfg,
		logger:     logger.With("component", "api"),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(s.corsOptions()))
	if s.cfg.WriteTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.WriteTimeout))
	}

	r.Get("/", s.listCollections)

	r.Route("/{collection:[A-Za-z0-9_-]+}", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Delete("/", s.deleteMany)
		r.Get("/{id}", s.get)
		r.Patch("/{id}", s.patch)
		r.Delete("/{id}", s.delete)
	})

	return r
}

func (s *Server) corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{"X-Total-Count"},
		MaxAge:         300,
	}
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" {
			return opts
		}
	}
	opts.AllowCredentials = true
	return opts
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
