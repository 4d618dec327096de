package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ChrisTheAbysswalker/nekopage/config"
	h "github.com/ChrisTheAbysswalker/nekopage/handlers"
	s "github.com/ChrisTheAbysswalker/nekopage/services"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	configPath string
	envFile    string
	port       string
}

func (o *serveOptions) bindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configPath, "config", "c", "", "path to config.toml (default "+config.DefaultConfigPath+")")
	fs.StringVar(&o.envFile, "env-file", ".env", "dotenv file loaded before the config, ignored when missing")
	fs.StringVarP(&o.port, "port", "p", "", "listen port, overrides config and PORT")
}

func newServeCmd(ctx context.Context, logger *zap.Logger, level zap.AtomicLevel) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(logger)
			if err != nil {
				return err
			}
			level.SetLevel(cfg.LogLevel)
			return serve(ctx, cfg, logger)
		},
	}
	opts.bindFlags(cmd.Flags())
	return cmd
}

func (o *serveOptions) load(logger *zap.Logger) (config.Config, error) {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			logger.Debug("env file not loaded", zap.String("path", o.envFile), zap.Error(err))
		}
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if port := strings.TrimSpace(o.port); port != "" {
		cfg.Port = port
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	gin.SetMode(cfg.GinMode)

	catService, err := s.NewCatService(s.Options{
		BaseURL:   cfg.CatAPIBaseURL,
		APIKey:    cfg.CatAPIKey,
		UserAgent: cfg.CatAPIUserAgent,
		Timeout:   cfg.CatAPITimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("create cat service: %w", err)
	}

	catHandler := h.NewCatHandler(catService, logger)
	router := h.NewRouter(catHandler, logger)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("nekopage listening", zap.String("addr", server.Addr), zap.String("base_url", cfg.BaseURL))
	for _, r := range h.Routes {
		logger.Info("endpoint",
			zap.String("method", r.Method),
			zap.String("url", cfg.BaseURL+r.Path),
			zap.String("description", r.Description),
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", shutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown completed")
	return nil
}
