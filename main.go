package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"stockflow/api"
	"stockflow/internal/cashflow"
	"stockflow/internal/config"
	"stockflow/internal/dashboard"
	"stockflow/internal/items"
	"stockflow/internal/sales"
	"stockflow/internal/seed"
	"stockflow/internal/store"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("error loading config: %v", err))
	}

	logger := newLogger(cfg)
	os.Exit(exitCode(logger, run(cfg, logger)))
}

// exitCode logs err and flushes logger before the process exits, since
// os.Exit skips deferred calls.
func exitCode(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func newLogger(cfg config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Development() {
		logger, err = zap.NewDevelopment()
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(fmt.Errorf("error building logger: %v", err))
	}
	return logger
}

// storages groups the three ledger storages of one backend.
type storages struct {
	items     items.Storage
	sales     sales.Storage
	cashflows cashflow.Storage
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		st     storages
		pinger api.Pinger
	)
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		st = storages{
			items:     items.NewLocalStorage(),
			sales:     sales.NewLocalStorage(),
			cashflows: cashflow.NewLocalStorage(),
		}
	default:
		client, err := store.Connect(ctx, cfg.MongoURI, cfg.DatabaseName, cfg.MongoTimeout, logger)
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				logger.Error("failed to disconnect store", zap.Error(err))
			}
		}()

		err = client.EnsureIndexes(ctx, map[string][]mongo.IndexModel{
			items.CollectionName:    items.Indexes(),
			sales.CollectionName:    sales.Indexes(),
			cashflow.CollectionName: cashflow.Indexes(),
		})
		if err != nil {
			return err
		}

		db := client.Database()
		st = storages{
			items:     items.NewMongoStorage(db),
			sales:     sales.NewMongoStorage(db),
			cashflows: cashflow.NewMongoStorage(db),
		}
		pinger = client
	}

	if cfg.SeedSampleData {
		if _, err := seed.New(st.items, st.sales, st.cashflows, nil, logger).Run(ctx); err != nil {
			return err
		}
	}

	ledger := items.NewService(st.items, logger)
	services := api.Services{
		Items:     ledger,
		Sales:     sales.NewService(st.sales, ledger, logger),
		CashFlows: cashflow.NewService(st.cashflows, logger),
		Dashboard: dashboard.NewService(st.items, st.sales, st.cashflows, logger),
		Store:     pinger,
		Collections: map[string]api.Counter{
			items.CollectionName:    st.items,
			sales.CollectionName:    st.sales,
			cashflow.CollectionName: st.cashflows,
		},
	}

	r := api.NewEngine(logger, cfg.CORSAllowOrigins)
	api.InitRoutes(r, services, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("error trying to start server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
