// Package server implements the DebtFree sync backend: a per-user document
// store served over HTTP/JSON.
//
// Layout:
//
//	POST /api/v1/auth/register, /api/v1/auth/login
//	GET  /api/v1/users/{userKey}/{collection}
//	PUT  /api/v1/users/{userKey}/{collection}/{id}
//	DEL  /api/v1/users/{userKey}/{collection}/{id}
//	POST /api/v1/users/{userKey}/batch
//
// and the same collection routes under /api/v1/project/... for the bulk
// bridge variant, guarded by a static sync key instead of user auth.
package server

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/debtfree/internal/auth"
	"github.com/mmynk/debtfree/internal/config"
	"github.com/mmynk/debtfree/internal/middleware"
	"github.com/mmynk/debtfree/internal/storage"
	"github.com/mmynk/debtfree/internal/storage/sqlite"
)

// docStore is what a collection handler needs: full CRUD plus atomic batches.
// The sqlite store satisfies both.
type docStore interface {
	storage.Store
	storage.BatchWriter
}

// Server wires storage, auth and HTTP routing together.
type Server struct {
	cfg    *config.Config
	shared *sqlite.SQLiteStore // users table + flat project collections
	pool   *Pool               // one database per user key
	authn  *auth.PasswordAuthenticator
	jwt    *auth.JWTManager
}

// New opens the server's storage under cfg.DataDir.
func New(cfg *config.Config) (*Server, error) {
	shared, err := sqlite.New(filepath.Join(cfg.DataDir, "shared.db"))
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:    cfg,
		shared: shared,
		pool:   NewPool(filepath.Join(cfg.DataDir, "users"), 30*time.Minute),
		authn:  auth.NewPasswordAuthenticator(shared),
		jwt:    auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
	}, nil
}

// Close releases all storage handles.
func (s *Server) Close() error {
	s.pool.Close()
	return s.shared.Close()
}

// Handler builds the full route tree with middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.RateLimit(s.cfg.RateLimitRPS))
	r.Use(middleware.Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Route("/users/{userKey}", func(r chi.Router) {
			r.Use(middleware.RequireUser(s.jwt))
			r.Use(s.requireKeyMatch)
			s.mountCollections(r, s.userStore)
		})

		r.Route("/project", func(r chi.Router) {
			r.Use(middleware.RequireSyncKey(s.cfg.SyncAPIKey))
			s.mountCollections(r, s.projectStore)
		})
	})

	return r
}

// requireKeyMatch rejects requests whose path key is not the caller's own
// partition. Authentication already happened; this is authorization.
func (s *Server) requireKeyMatch(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.GetClaims(r.Context())
		if claims == nil || claims.UserKey != chi.URLParam(r, "userKey") {
			writeError(w, http.StatusForbidden, "user key does not match token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) userStore(r *http.Request) (docStore, error) {
	return s.pool.Get(chi.URLParam(r, "userKey"))
}

func (s *Server) projectStore(*http.Request) (docStore, error) {
	return s.shared, nil
}
