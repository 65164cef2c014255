// Command bezorgen is a terminal client for the bezorgen expense
// tracker. It keeps the session token in a local sqlite state file and
// talks to the backend with the same contract the web client uses.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"bezorgen/internal/api"
	"bezorgen/internal/config"
	apperrors "bezorgen/internal/errors"
	"bezorgen/internal/session"
	"bezorgen/internal/statestore"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env file: %v\n", err)
	}

	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, apperrors.ErrUnauthenticated) {
			fmt.Fprintln(os.Stderr, "Your session has expired or was revoked. Run `bezorgen login` to sign in again.")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg := config.Load()
	setupLogging(cfg)

	if len(args) == 0 {
		printUsage(stdout)
		return errors.New("missing command")
	}
	command, rest := args[0], args[1:]

	if command == "help" || command == "-h" || command == "--help" {
		printUsage(stdout)
		return nil
	}

	statePath, err := cfg.StatePath()
	if err != nil {
		return fmt.Errorf("failed to resolve state path: %w", err)
	}
	state, err := statestore.Open(statePath)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer state.Close()

	store := session.NewStore(state)

	opts := []api.Option{
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
	}
	if cfg.Observability.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		opts = append(opts, api.WithMetrics(api.NewMetrics(registry)))
		go serveMetrics(cfg.Observability.MetricsAddr, registry)
	}
	client := api.NewClient(cfg.API.BaseURL, store, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout+5*time.Second)
	defer cancel()

	app := &app{cfg: cfg, client: client, session: store, stdout: stdout}

	switch command {
	case "login":
		return app.login(ctx, rest)
	case "logout":
		return app.logout()
	case "whoami":
		return app.whoami()
	case "expenses":
		return app.expenses(ctx, rest)
	case "stats":
		return app.stats(ctx, rest)
	case "add":
		return app.add(ctx, rest)
	case "update":
		return app.update(ctx, rest)
	case "delete":
		return app.deleteExpense(ctx, rest)
	case "providers":
		return app.providers(ctx)
	case "unlink":
		return app.unlink(ctx, rest)
	case "health":
		return app.health(ctx)
	default:
		printUsage(stdout)
		return fmt.Errorf("unknown command %q", command)
	}
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.Observability.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics listener stopped", "addr", addr, "error", err)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: bezorgen <command> [flags]

Commands:
  login      Exchange Telegram widget data for a session token
  logout     Discard the stored session
  whoami     Show the signed-in identity and token expiry
  expenses   List expenses with optional filters and paging
  stats      Show the monthly aggregate
  add        Create an expense
  update     Partially update an expense
  delete     Delete an expense
  providers  List linked identity providers
  unlink     Remove a linked identity provider
  health     Probe the backend

Run bezorgen <command> -h for command flags.
`)
}
