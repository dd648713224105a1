package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/voxbridge/voxbridge/internal/expert"
	"github.com/voxbridge/voxbridge/internal/httpapi"
	"github.com/voxbridge/voxbridge/internal/observability"
	"github.com/voxbridge/voxbridge/internal/store"
	"github.com/voxbridge/voxbridge/pkg/realtime"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Long: `Run the HTTP service: ephemeral token minting for browser clients,
conversation/transcript storage, the expert text endpoint, health and
metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "bind address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("no API key: set api_key in the config file or %s", "OPENAI_API_KEY")
	}

	listen := cfg.Listen
	if serveListen != "" {
		listen = serveListen
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var clientOpts []realtime.Option
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, realtime.WithBaseURL(cfg.BaseURL))
	}
	client := realtime.NewClient(cfg.APIKey, clientOpts...)

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		st = pg
		slog.Info("using postgres store")
	} else {
		st = store.NewMemoryStore()
		slog.Info("using in-memory store")
	}
	defer st.Close()

	var responder expert.Responder
	if cfg.ExpertModel != "" {
		c, err := expert.New(cfg.APIKey, cfg.ExpertModel, expert.WithTimeout(30*time.Second))
		if err != nil {
			return err
		}
		responder = c
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	api := httpapi.New(client, client, st, responder, cfg.PersonaSet(), metrics)

	srv := &http.Server{
		Addr:              listen,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http service listening", "addr", listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	slog.Info("http service stopped")
	return err
}
