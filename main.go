// Command mazechase starts the Maze Chase game server.
//
// It supports three commands:
//  1. "server" (default) - runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" - runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "validate" - checks every map file in the maps directory and exits non-zero on failures
//
// Flags control host/port, maps directory, logging, and optional ngrok
// tunneling for easy external access during development. Every flag can
// also be set through the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/mazechase/api"
	"github.com/wricardo/mcp-training/mazechase/game/config"
	"github.com/wricardo/mcp-training/mazechase/game/service"
	"github.com/wricardo/mcp-training/mazechase/game/session"
	"github.com/wricardo/mcp-training/mazechase/logging"
	"github.com/wricardo/mcp-training/mazechase/transport/mcp"
	"github.com/wricardo/mcp-training/mazechase/transport/websocket"
	"github.com/wricardo/mcp-training/mazechase/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Maze Chase Game Server"
)

const (
	sessionMaxAge          = 24 * time.Hour
	sessionCleanupInterval = time.Hour
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Flags declared on the root are shared by
// every command.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "mazechase",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "port",
				Value:   "8080",
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "maps-dir",
				Value:   "maps",
				Usage:   "Directory containing map files (.json, .yaml, .yml)",
				Sources: cli.EnvVars("MAPS_DIR"),
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "Also write JSON logs to this file, rotated by size",
				Sources: cli.EnvVars("LOG_FILE"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: runHTTPServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runHTTPServer,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, reusing a running API or starting an internal one",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   "http://localhost:8080",
						Usage:   "REST API to proxy when it is reachable",
						Sources: cli.EnvVars("API_URL"),
					},
				},
				Action: runStdioMCP,
			},
			{
				Name:      "validate",
				Usage:     "Validate every map file in the maps directory",
				ArgsUsage: "[dir]",
				Action:    runValidate,
			},
		},
	}
}

// newLogger honors the shared logging flags
func newLogger(cmd *cli.Command) *zap.SugaredLogger {
	return logging.New(logging.Options{
		Debug: cmd.Bool("debug"),
		File:  cmd.String("log-file"),
	})
}

func listenAddr(cmd *cli.Command) (string, error) {
	port, err := strconv.Atoi(cmd.String("port"))
	if err != nil || port <= 0 || port > 65535 {
		return "", fmt.Errorf("invalid port %q", cmd.String("port"))
	}
	return net.JoinHostPort(cmd.String("host"), strconv.Itoa(port)), nil
}

// services holds everything the transports share
type services struct {
	sessions *session.Manager
	maps     *config.Manager
	hub      *websocket.Hub
	game     service.GameService
}

// initializeServices wires session/map managers, the WebSocket hub and the game service.
func initializeServices(mapsDir string, log *zap.SugaredLogger) (*services, error) {
	mapManager, err := config.NewManager(mapsDir, log.With("component", "maps"))
	if err != nil {
		return nil, fmt.Errorf("failed to create map manager: %w", err)
	}

	sessionManager := session.NewManager(log.With("component", "sessions"))
	hub := websocket.NewHub(log.With("component", "websocket"))

	return &services{
		sessions: sessionManager,
		maps:     mapManager,
		hub:      hub,
		game:     service.NewGameService(sessionManager, mapManager, hub, log.With("component", "service")),
	}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within maxAge, until ctx is done.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration, log *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Infow("cleaned up expired sessions", "removed", removed)
			}
		}
	}
}

// mcpHandler feeds JSON-RPC request bodies to the MCP server.
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter mounts the REST API at the root and the MCP endpoint at /mcp.
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd)
	defer log.Sync()

	addr, err := listenAddr(cmd)
	if err != nil {
		return err
	}

	svc, err := initializeServices(cmd.String("maps-dir"), log)
	if err != nil {
		return err
	}
	defer svc.sessions.CloseAll()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		svc.hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, svc.sessions, sessionCleanupInterval, sessionMaxAge, log)
	}()

	apiServer := api.NewServer(svc.game, svc.hub, log.With("component", "api"))
	mcpClient := mcp.NewClient("http://" + addr)
	mainRouter := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("HTTP server listening", "addr", addr, "version", Version)
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd, mainRouter, log.With("component", "ngrok"))
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-serveErr:
		log.Errorw("HTTP server failed", "error", err)
		stop()
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Errorw("HTTP server shutdown error", "error", shutdownErr)
	}

	wg.Wait()
	log.Info("server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done.
func runNgrokTunnel(ctx context.Context, cmd *cli.Command, handler http.Handler, log *zap.SugaredLogger) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Infow("using custom ngrok domain", "domain", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Errorw("failed to start ngrok tunnel", "error", err)
		return
	}

	ngrokURL := tun.URL()
	log.Infow("ngrok tunnel established", "url", ngrokURL)
	log.Infof("REST API (ngrok): %s/api", ngrokURL)
	log.Infof("MCP endpoint (ngrok): %s/mcp", ngrokURL)

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		tunnelServer.Close()
	}()

	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorw("ngrok server error", "error", err)
	}
	log.Info("ngrok tunnel closed")
}

// apiAvailable reports whether a REST API answers its health check at baseURL.
func apiAvailable(baseURL string) bool {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/healthz")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses the API at --api-url when
// it answers; otherwise it starts an internal HTTP API bound to a random
// loopback port and targets that. Logs go to stderr, stdout carries the
// protocol.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd)
	defer log.Sync()

	baseURL := cmd.String("api-url")
	if apiAvailable(baseURL) {
		log.Infow("external API server found, using it for MCP", "url", baseURL)
	} else {
		log.Info("no external API server found, starting internal HTTP server")

		svc, err := initializeServices(cmd.String("maps-dir"), log)
		if err != nil {
			return err
		}
		defer svc.sessions.CloseAll()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go svc.hub.Run(ctx)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		httpServer := &http.Server{
			Handler: api.NewServer(svc.game, svc.hub, log.With("component", "api")),
		}
		defer httpServer.Close()

		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("internal HTTP server error", "error", err)
			}
		}()

		baseURL = "http://" + listener.Addr().String()
		log.Infow("internal HTTP server ready", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runValidate prints a report per map file and fails when any map is invalid.
func runValidate(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("maps-dir")
	if cmd.Args().Present() {
		dir = cmd.Args().First()
	}

	results, err := validate.ValidateDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read maps directory: %w", err)
	}

	return printValidation(cmd.Root().Writer, dir, results)
}

func printValidation(w io.Writer, dir string, results []validate.ValidationResult) error {
	if len(results) == 0 {
		fmt.Fprintf(w, "No map files found in %s\n", dir)
		return nil
	}

	invalid := 0
	for _, result := range results {
		status := "VALID"
		if !result.Valid {
			status = "INVALID"
			invalid++
		}
		fmt.Fprintf(w, "%s: %s\n", result.File, status)
		for _, msg := range result.Messages {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}

	fmt.Fprintf(w, "\n%d of %d maps valid\n", len(results)-invalid, len(results))
	if invalid > 0 {
		return cli.Exit(fmt.Sprintf("%d invalid maps", invalid), 1)
	}
	return nil
}
