package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/admin"
	"github.com/tendant/simple-cms/pkg/simplecms/api"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
	"github.com/tendant/simple-cms/pkg/simplecms/plugins"
)

func main() {
	// Templates, plugin types and menu extenders are code, so they are
	// registered here. Deployment settings come from the environment and
	// are applied last.
	cfg, err := config.Load(
		config.WithTemplate("page.html", "<main>{content}</main><aside>{sidebar}</aside>", "content", "sidebar"),
		config.WithTemplate("landing.html", "<main>{content}</main>", "content"),
		config.WithPluginType("TextPlugin",
			plugins.Field{Name: "body", Required: true},
		),
		config.WithPluginType("LinkPlugin",
			plugins.Field{Name: "url", Required: true},
			plugins.Field{Name: "label"},
		),
		config.WithMenuExtender("navigation", true),
		config.WithEnv(""),
	)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Build the repository once so the CMS service and the admin service
	// read and write the same store.
	repo, err := cfg.BuildRepository()
	if err != nil {
		log.Fatalf("Failed to build repository: %v", err)
	}

	svc, err := cfg.BuildServiceWithRepository(repo)
	if err != nil {
		log.Fatalf("Failed to build service: %v", err)
	}

	server := NewHTTPServer(svc, admin.New(repo), cfg)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: server.Routes(),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting simple-cms server on port %s", cfg.Port)
		log.Printf("- Environment: %s", cfg.Environment)
		log.Printf("- Database: %s", cfg.DatabaseType)
		log.Printf("- Permissions enabled: %t", cfg.PermissionsEnabled)
		log.Printf("- Admin API enabled: %t", cfg.EnableAdminAPI)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// HTTPServer wraps the services with HTTP routing.
type HTTPServer struct {
	service simplecms.Service
	admin   admin.AdminService
	config  *config.ServerConfig
}

// NewHTTPServer creates a new HTTP server with the given services.
func NewHTTPServer(service simplecms.Service, adminSvc admin.AdminService, cfg *config.ServerConfig) *HTTPServer {
	return &HTTPServer{
		service: service,
		admin:   adminSvc,
		config:  cfg,
	}
}

// Routes sets up the HTTP routes.
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(api.ActorMiddleware)

	// CORS for development
	if s.config.Environment == "development" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, "+api.ActorHeader)

				if r.Method == "OPTIONS" {
					w.WriteHeader(http.StatusOK)
					return
				}

				next.ServeHTTP(w, r)
			})
		})
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","environment":%q,"database":%q}`, s.config.Environment, s.config.DatabaseType)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/sites", api.NewSitesHandler(s.service).Routes())
		r.Mount("/pages", api.NewPagesHandler(s.service).Routes())
		r.Mount("/plugins", api.NewPluginsHandler(s.service).Routes())
		r.Mount("/users", api.NewUsersHandler(s.service).Routes())

		// Unauthenticated deployments should leave the admin surface off.
		if s.config.EnableAdminAPI {
			r.Mount("/admin", api.NewAdminHandler(s.admin).Routes())
		}
	})

	return r
}
