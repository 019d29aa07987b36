package main

import (
	"context"
	"flag"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/todos/api/handler"
	"github.com/fastygo/todos/internal/app"
	"github.com/fastygo/todos/internal/config"
	"github.com/fastygo/todos/internal/infrastructure/kv"
	"github.com/fastygo/todos/internal/middleware"
	"github.com/fastygo/todos/internal/router"
	"github.com/fastygo/todos/internal/services/lifecycle"
	"github.com/fastygo/todos/pkg/httpcontext"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout.Duration, zapLogger)
	appCtx, stop := manager.Listen(context.Background())
	defer stop()

	application, err := app.New(cfg, zapLogger, app.WithAlerter(kv.AlertFunc(func(msg string) {
		zapLogger.Warn("storage alert", zap.String("alert", msg))
	})))
	if err != nil {
		zapLogger.Fatal("bootstrap failed", zap.Error(err))
	}
	manager.RegisterCloser("store", application)

	if _, err := application.Migrate(appCtx); err != nil {
		// Reads degrade to empty collections and /health reports the store as degraded.
		zapLogger.Warn("starting without migrated storage", zap.Error(err))
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout.Duration)

	handlers := router.Handlers{
		Todo:     apiHandler.NewTodoHandler(application.Todos, ctxAdapter, zapLogger),
		Category: apiHandler.NewCategoryHandler(application.Categories, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(application.Monitor, ctxAdapter, zapLogger),
	}

	r := router.New(handlers, middleware.Recover(zapLogger))

	server := &fasthttp.Server{
		Handler:      router.Handler(r, middleware.AccessLog(zapLogger)),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration,
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration,
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("driver", application.Adapter.Driver()),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
