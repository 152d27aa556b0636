package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matst80/slask-catalog/pkg/common"
	"github.com/matst80/slask-catalog/pkg/config"
	"github.com/matst80/slask-catalog/pkg/controller"
	"github.com/matst80/slask-catalog/pkg/index"
	"github.com/matst80/slask-catalog/pkg/messaging"
	"github.com/matst80/slask-catalog/pkg/server"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const initialLoadTimeout = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog filter api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		return serve(cmd.Context(), cfg, logger)
	},
}

func serve(parent context.Context, cfg config.Config, logger *zap.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := cfg.Source()
	idx := index.NewCatalogIndex(logger)
	loadCtx, cancel := context.WithTimeout(ctx, initialLoadTimeout)
	if _, err := idx.Reload(loadCtx, source); err != nil {
		logger.Warn("starting with an empty catalog", zap.Error(err))
	}
	cancel()

	if cfg.RabbitUrl != "" {
		conn, err := amqp.DialConfig(cfg.RabbitUrl, amqp.Config{
			Properties: amqp.NewConnectionProperties(),
		})
		if err != nil {
			return err
		}
		defer conn.Close()
		if err = messaging.ConnectCatalogChanges(conn, cfg.TopicPrefix, idx, source, logger); err != nil {
			return err
		}
		logger.Info("listening for catalog changes", zap.String("prefix", cfg.TopicPrefix))
	}

	views := server.NewViewRegistry(cfg.ViewTTL, controller.Options{
		PriceDebounce: cfg.PriceDebounce,
		Logger:        logger,
	})
	ws := server.NewWebServer(idx, views, source, rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst), logger)
	srv := common.NewServerWithTimeouts(&http.Server{
		Addr:    cfg.ListenAddress,
		Handler: ws.Handler(),
	}, cfg.Timeouts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return common.ServeWithShutdown(gctx, srv, logger, cfg.Timeouts, views.CloseAll)
	})
	g.Go(func() error {
		return views.RunSweeper(gctx, max(cfg.ViewTTL/4, time.Second))
	})
	err := g.Wait()
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("bye", zap.Int("pid", os.Getpid()))
	return nil
}
