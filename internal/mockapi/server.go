// Package mockapi is an in-memory stand-in for the backend REST API. It
// serves the same collections, auth flow and error envelope, so the client
// can run end to end without network access.
package mockapi

import (
	"net/http"
	"time"

	"github.com/fjod/matule/internal/domain"
	"github.com/fjod/matule/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Config struct {
	JWTSecret      []byte
	TokenTTL       time.Duration
	RequestTimeout time.Duration
}

type Server struct {
	cfg   Config
	store *store
	log   logrus.FieldLogger
	now   func() time.Time
}

// New seeds the product collection from products.
func New(cfg Config, products []domain.Product, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = tokenTTL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	s := &Server{
		cfg: cfg,
		log: log.WithField("component", "mockapi"),
		now: time.Now,
	}
	s.store = newStore(products, func() time.Time { return s.now() })
	return s
}

// Handler returns the traced router. The API lives under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/files/{collection}/{record}/{name}", s.getFile)

		r.Route("/collections", func(r chi.Router) {
			r.Post("/users/records", s.register)
			r.Post("/users/auth-with-password", s.authWithPassword)
			r.Get("/products/records", s.listProducts)
			r.Get("/products/records/{id}", s.getProduct)
			r.Get("/news/records", s.listNews)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)

				r.Get("/users/records/{id}", s.getUser)
				r.Patch("/users/records/{id}", s.updateUser)
				r.Get("/_authOrigins/records", s.listAuthOrigins)
				r.Delete("/_authOrigins/records/{id}", s.deleteAuthOrigin)
				r.Post("/cart/records", s.createCart)
				r.Patch("/cart/records/{id}", s.updateCart)
				r.Post("/orders/records", s.createOrder)
				r.Get("/project/records", s.listProjects)
				r.Post("/project/records", s.createProject)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusNotFound, msgNotFound, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusMethodNotAllowed, msgBadRequest, nil)
	})

	return otelhttp.NewHandler(r, "mockapi")
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		logger.WithTrace(r.Context(), s.log).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("request handled")
	})
}
