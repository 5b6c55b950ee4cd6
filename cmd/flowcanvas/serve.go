package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/recera/flowcanvas/cmd/flowcanvas/internal/config"
	"github.com/recera/flowcanvas/pkg/flow"
	"github.com/recera/flowcanvas/pkg/live"
	"github.com/recera/flowcanvas/pkg/view"
	"github.com/spf13/cobra"
)

type canvasServer struct {
	configPath string
	config     *config.Config
	mu         sync.RWMutex
	liveServer *live.Server
	watcher    *fsnotify.Watcher
}

func newServeCommand() *cobra.Command {
	var configPath string
	var host string
	var port int
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the canvas to the browser",
		Long:  `Starts an HTTP server that renders the canvas and drives it over live websocket sessions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// CLI takes precedence over the config file
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			return runServe(configPath, cfg, watch)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.FileName, "Path to the config file")
	cmd.Flags().StringVarP(&host, "host", "H", "localhost", "Host to bind the server to")
	cmd.Flags().IntVarP(&port, "port", "p", 5173, "Port to run the server on")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the config file when it changes")

	return cmd
}

func newCanvasServer(configPath string, cfg *config.Config) *canvasServer {
	s := &canvasServer{
		configPath: configPath,
		config:     cfg,
	}
	s.liveServer = live.NewServer(s.seed)
	return s
}

// seed is read by every new live session
func (s *canvasServer) seed() []flow.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Seed()
}

func (s *canvasServer) currentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *canvasServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc(live.PathPrefix, s.liveServer.HandleWebSocket)
	return mux
}

// handlePage renders the canvas at its seed positions; the live session
// takes over once the script connects
func (s *canvasServer) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	cfg := s.currentConfig()
	reg, err := flow.NewRegistry(cfg.Seed()...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	page, err := view.NewCanvas(cfg.Theme()).Page(cfg.Canvas.Title, reg)
	if err != nil {
		log.Printf("[Server] Failed to render page: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	fmt.Fprint(w, page)
}

// reload re-reads the config file and tells connected pages to reload
func (s *canvasServer) reload() error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	// Server address cannot change without a restart
	cfg.Server = s.config.Server
	s.config = cfg
	s.mu.Unlock()

	s.liveServer.Broadcast(live.ControlReload)
	return nil
}

// setupWatcher watches the config file's directory; editors often replace
// the file instead of writing it in place
func (s *canvasServer) setupWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(s.configPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	s.watcher = watcher
	return nil
}

func (s *canvasServer) watchConfig() {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	target := filepath.Clean(s.configPath)
	pending := false

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = true
			debounce.Reset(100 * time.Millisecond)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Println("[Watcher] error:", err)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			if err := s.reload(); err != nil {
				log.Printf("[Watcher] Keeping previous config: %v", err)
				continue
			}
			log.Printf("[Watcher] Reloaded %s", s.configPath)
		}
	}
}

func runServe(configPath string, cfg *config.Config, watch bool) error {
	server := newCanvasServer(configPath, cfg)
	if cfg.Debug {
		flow.SetDebugLog(log.Println)
	}

	if watch {
		if err := server.setupWatcher(); err != nil {
			return err
		}
		defer server.watcher.Close()
		go server.watchConfig()
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		warn.Println("\nShutting down...")
		server.liveServer.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	fmt.Printf("%s serving %s\n", brand.Sprint("flowcanvas"), subtle.Sprintf("http://%s", cfg.Addr()))
	if watch {
		fmt.Printf("  %s\n", subtle.Sprintf("watching %s", configPath))
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
