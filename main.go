// Command ludoarena starts the Ludo session server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, the
//     websocket game protocol, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server proxying a running HTTP API
//
// Flags control host/port, debug logging, and optional ngrok tunneling for
// sharing a dev server with remote players.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"ludoarena/api"
	"ludoarena/game/registry"
	"ludoarena/game/service"
	"ludoarena/transport/mcp"
	"ludoarena/transport/websocket"
)

const (
	appName = "Ludo Arena"
	version = "1.0.0"
)

func main() {
	// Load .env if present; absence is fine.
	godotenv.Load()

	cmd := &cli.Command{
		Name:    "ludoarena",
		Usage:   "real-time multiplayer Ludo session server",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)"},
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "run an MCP stdio server against a running HTTP API",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "base URL of the HTTP API"}},
				Action: runStdioMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(debug bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func runServer(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd.Bool("debug"))
	log.Info().Str("version", version).Msg(appName + " starting")

	rooms := registry.NewManager()
	gameService := service.NewGameService(rooms, log)
	hub := websocket.NewHub(gameService, log)
	apiServer := api.NewServer(gameService, hub, log)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		data, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(data)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		log.Info().Msgf("WebSocket: ws://%s/ws", addr)
		log.Info().Msgf("REST API: %s/api", baseURL)
		log.Info().Msgf("MCP endpoint: %s/mcp", baseURL)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if cmd.Bool("ngrok") {
		go runNgrokTunnel(serverCtx, cmd, mainRouter, log)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("server stopped")
	return nil
}

// runNgrokTunnel provisions a public tunnel so remote players can reach a
// dev server without port forwarding.
func runNgrokTunnel(ctx context.Context, cmd *cli.Command, handler http.Handler, log zerolog.Logger) {
	authToken := os.Getenv("NGROK_AUTHTOKEN")
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but NGROK_AUTHTOKEN is not set")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Warn().Err(err).Msg("failed to start ngrok tunnel")
		return
	}
	defer tun.Close()

	log.Info().Str("url", tun.URL()).Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Warn().Err(err).Msg("ngrok server error")
	}
}

func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	mcpClient := mcp.NewClient(cmd.String("api-url"))
	return mcpserver.ServeStdio(mcpClient.GetMCPServer())
}
