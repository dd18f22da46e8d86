package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/booknav/internal/nav"
	"github.com/ziadkadry99/booknav/internal/session"
	"github.com/ziadkadry99/booknav/internal/sidebar"
)

// Config holds server configuration.
type Config struct {
	Port         int
	BookDir      string // directory containing the rendered book
	AllowAll     bool   // allow all CORS origins (dev mode)
	AliasLanding bool
	StorageKey   string // session key of the sidebar scroll offset
	ContainerID  string // id of the scrollable sidebar element
	Cookie       string // session cookie name
}

func (c Config) withDefaults() Config {
	if c.StorageKey == "" {
		c.StorageKey = sidebar.StorageKey
	}
	if c.ContainerID == "" {
		c.ContainerID = "sidebar-scrollbox"
	}
	if c.Cookie == "" {
		c.Cookie = "booknav_session"
	}
	return c
}

// Server serves a rendered book with the navigation sidebar computed for
// every page.
type Server struct {
	cfg   Config
	store session.Store
	hub   *Hub

	mu   sync.RWMutex
	tree *nav.Tree

	// loads serializes page loads against scroll reports so an offset is
	// either stored before a load takes it or dropped as stale.
	loads sync.Mutex

	router     chi.Router
	httpServer *http.Server
}

// New creates a server for tree. A nil store keeps scroll offsets in memory.
func New(cfg Config, tree *nav.Tree, store session.Store) *Server {
	if store == nil {
		store = session.NewMemoryStore()
	}
	if tree == nil {
		tree = nav.New()
	}
	s := &Server{
		cfg:   cfg.withDefaults(),
		store: store,
		hub:   NewHub(),
		tree:  tree,
	}

	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Long-lived connections stay outside the request timeout.
	r.Get("/ws/reload", s.hub.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get(ScriptPath, serveScript)

		r.Group(func(r chi.Router) {
			r.Use(s.sessionMiddleware)
			r.Get("/api/sidebar", s.handleSidebar)
			r.Post("/api/scroll", s.handleScroll)
			r.Get("/*", s.handlePage)
		})
	})

	return r
}

// ServeHTTP dispatches a request through the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Tree returns the navigation tree currently being served.
func (s *Server) Tree() *nav.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// SetTree swaps the navigation tree and tells open pages to reload.
func (s *Server) SetTree(t *nav.Tree) {
	if t == nil {
		t = nav.New()
	}
	s.mu.Lock()
	s.tree = t
	s.mu.Unlock()

	n := s.hub.Broadcast(ReloadMessage)
	log.Printf("[Server] navigation reloaded (%d entries, %d pages notified)", t.Len(), n)
}

// loadKey is the session key counting page loads.
func (s *Server) loadKey() string { return s.cfg.StorageKey + ".load" }

// pageLoad builds the sidebar for one page load of the given session and
// returns the load's sequence number. The number is handed to the page and
// must accompany its scroll report.
func (s *Server) pageLoad(ctx context.Context, sessionID, currentURL, rootPrefix string) (*sidebar.Controller, int) {
	s.loads.Lock()
	defer s.loads.Unlock()

	load, _ := s.lastLoad(ctx, sessionID)
	load++
	if err := s.store.Put(ctx, sessionID, s.loadKey(), load); err != nil {
		log.Printf("[Server] recording page load: %v", err)
	}

	c := sidebar.New(sidebar.Options{
		Tree:         s.Tree(),
		CurrentURL:   currentURL,
		RootPrefix:   rootPrefix,
		Storage:      session.Bind(ctx, s.store, sessionID, s.cfg.StorageKey),
		AliasLanding: s.cfg.AliasLanding,
	})
	return c, load
}

// reportScroll stores the sidebar offset of the page load numbered load.
// It reports false, storing nothing, when the session has loaded another
// page since: the offset would otherwise surface on an unrelated later load.
func (s *Server) reportScroll(ctx context.Context, sessionID string, load, offset int) bool {
	s.loads.Lock()
	defer s.loads.Unlock()

	if last, ok := s.lastLoad(ctx, sessionID); !ok || last != load {
		return false
	}
	c := sidebar.New(sidebar.Options{
		Tree:    s.Tree(),
		Storage: session.Bind(ctx, s.store, sessionID, s.cfg.StorageKey),
	})
	c.ActivateLink(offset)
	return true
}

// lastLoad returns the session's latest page load number. Callers hold
// s.loads.
func (s *Server) lastLoad(ctx context.Context, sessionID string) (int, bool) {
	n, ok, err := s.store.Take(ctx, sessionID, s.loadKey())
	if err != nil {
		log.Printf("[Server] reading page load: %v", err)
		return 0, false
	}
	if ok {
		if err := s.store.Put(ctx, sessionID, s.loadKey(), n); err != nil {
			log.Printf("[Server] recording page load: %v", err)
		}
	}
	return n, ok
}

// Start begins listening on the configured port.
func (s *Server) Start() error {
	log.Printf("booknav serving %s on %s", s.cfg.BookDir, s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}
