package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hsaban/saband/internal/answer"
	"github.com/hsaban/saband/internal/config"
	"github.com/hsaban/saband/internal/store"
)

// Deps bundles everything the HTTP layer serves: the chat pipeline plus the
// stores behind the admin data API.
type Deps struct {
	Answers   *answer.Service
	Products  *store.ProductStore
	Inventory *store.InventoryStore
	Drivers   *store.DriverStore
	Business  *store.BusinessStore
	Cache     *store.CacheStore
	History   *store.HistoryStore
	DB        *sqlx.DB
	Config    *config.Config
	Logger    *slog.Logger
}

type Server struct {
	deps    Deps
	mux     *http.ServeMux
	handler http.Handler
	logger  *slog.Logger
}

func NewServer(deps Deps) *Server {
	s := &Server{
		deps:   deps,
		mux:    http.NewServeMux(),
		logger: deps.Logger,
	}
	s.registerRoutes()
	s.handler = requestLogger(s.logger, securityHeaders(s.mux))
	return s
}

func (s *Server) registerRoutes() {
	// Customer-facing chat surface.
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("POST /api/ask", s.handleAsk)
	s.mux.HandleFunc("POST /api/enrich-all", s.handleEnrichAll)
	s.mux.HandleFunc("POST /api/get-image", s.handleGetImage)
	s.mux.HandleFunc("GET /api/check", s.handleCheck)

	// Admin data API.
	s.mux.HandleFunc("GET /api/admin/products", s.handleListProducts)
	s.mux.HandleFunc("POST /api/admin/products", s.handleCreateProduct)
	s.mux.HandleFunc("GET /api/admin/products/{sku}", s.handleGetProduct)
	s.mux.HandleFunc("PUT /api/admin/products/{sku}", s.handleUpdateProduct)
	s.mux.HandleFunc("DELETE /api/admin/products/{sku}", s.handleDeleteProduct)

	s.mux.HandleFunc("GET /api/admin/inventory", s.handleListInventory)
	s.mux.HandleFunc("POST /api/admin/inventory", s.handleUpsertInventory)
	s.mux.HandleFunc("GET /api/admin/inventory/{sku}", s.handleGetInventory)
	s.mux.HandleFunc("PUT /api/admin/inventory/{sku}", s.handleUpsertInventory)
	s.mux.HandleFunc("DELETE /api/admin/inventory/{sku}", s.handleDeleteInventory)

	s.mux.HandleFunc("GET /api/admin/drivers", s.handleListDrivers)
	s.mux.HandleFunc("POST /api/admin/drivers", s.handleCreateDriver)
	s.mux.HandleFunc("PUT /api/admin/drivers/{id}", s.handleUpdateDriver)

	s.mux.HandleFunc("GET /api/admin/business", s.handleListBusiness)
	s.mux.HandleFunc("POST /api/admin/business", s.handleCreateBusiness)
	s.mux.HandleFunc("PUT /api/admin/business/{id}", s.handleUpdateBusiness)
	s.mux.HandleFunc("DELETE /api/admin/business/{id}", s.handleDeleteBusiness)

	s.mux.HandleFunc("GET /api/admin/cache", s.handleListCache)
	s.mux.HandleFunc("DELETE /api/admin/cache/{key}", s.handleDeleteCache)

	s.mux.HandleFunc("GET /api/admin/history", s.handleListHistory)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}
