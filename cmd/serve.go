package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/booknav/internal/server"
	"github.com/ziadkadry99/booknav/internal/session"
)

// staleSessions is how long an unused scroll offset is kept by the sqlite
// backend.
const staleSessions = 24 * time.Hour

var (
	servePort int
	serveDev  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the book with the sidebar injected into every page",
	Long: `Serves the rendered book directory. Every HTML page gets the sidebar
computed for its own address, scroll positions are carried across page loads
per browser session, and open pages reload when the table of contents changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		tree, err := loadTree(cfg)
		if err != nil {
			return err
		}

		store, closer, err := session.Open(string(cfg.Session.Backend), cfg.Session.DataDir)
		if err != nil {
			return fmt.Errorf("opening session store: %w", err)
		}
		defer closer.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if sq, ok := store.(*session.SQLStore); ok {
			n, err := sq.Prune(ctx, staleSessions)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not prune sessions: %v\n", err)
			} else if verbose {
				fmt.Fprintf(os.Stderr, "Pruned %d stale scroll offsets\n", n)
			}
		}

		srv := server.New(server.Config{
			Port:         cfg.Server.Port,
			BookDir:      cfg.BookDir,
			AllowAll:     cfg.Server.AllowAllOrigins || serveDev,
			AliasLanding: cfg.Sidebar.AliasLanding,
			StorageKey:   cfg.Sidebar.StorageKey,
			ContainerID:  cfg.Sidebar.ContainerID,
			Cookie:       cfg.Session.Cookie,
		}, tree, store)

		var watcher *server.Watcher
		if cfg.Server.Watch {
			watcher, err = server.NewWatcher(cfg.TOC, func(string) error {
				next, err := loadTree(cfg)
				if err != nil {
					return err
				}
				srv.SetTree(next)
				return nil
			}, verbose)
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
		}

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			if err := srv.Start(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		if watcher != nil {
			g.Go(func() error { return watcher.Run(ctx) })
		}

		fmt.Fprintf(os.Stderr, "booknav %s serving %q on port %d\n", Version, cfg.Title, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Book: %s\n", cfg.BookDir)
		fmt.Fprintf(os.Stderr, "  Navigation: %s (%d entries)\n", cfg.TOC, tree.Len())
		fmt.Fprintf(os.Stderr, "  Sessions: %s\n", cfg.Session.Backend)

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "allow all CORS origins")
	rootCmd.AddCommand(serveCmd)
}
