package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"
	otelapi "go.opentelemetry.io/otel"
	"go.uber.org/zap"

	cfg "HRCore/config"
	"HRCore/internal/middleware"
	"HRCore/internal/router"
	"HRCore/pkg/logger"
	"HRCore/pkg/otel"
	"HRCore/pkg/snowflake"
	"HRCore/pkg/token"
	"HRCore/storage"
)

func main() {
	cfg.MustValidate()

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	var serverOpts []config.Option
	if cfg.Cfg.OTelEnabled {
		shutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
			ServiceName:    cfg.Cfg.ServiceName,
			ServiceVersion: cfg.Cfg.ServiceVersion,
			Environment:    cfg.Cfg.Environment,
			OTLPEndpoint:   cfg.Cfg.OTelEndpoint,
			SampleRatio:    cfg.Cfg.OTelSampleRatio,
		})
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry, tracing disabled", zap.Error(err))
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
				}
			}()
			if err := middleware.InitMetrics(otelapi.Meter(cfg.Cfg.ServiceName)); err != nil {
				logger.Logger.Warn("Failed to register HTTP metrics", zap.Error(err))
			}
		}
	}

	// 初始化存储层，记得关闭外部连接
	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(cfg.Cfg.SnowflakeMachineID, cfg.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := token.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize token package", zap.Error(err))
	} // token 在中间件前初始化，middleware 依赖 token

	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	logger.Logger.Info("Server starting",
		zap.String("service", cfg.Cfg.ServiceName),
		zap.String("port", cfg.Cfg.ServerPort),
		zap.String("environment", cfg.Cfg.Environment),
	)

	addr := net.JoinHostPort(cfg.Cfg.ServerHost, cfg.Cfg.ServerPort)
	serverOpts = append(serverOpts, server.WithHostPorts(addr))

	var tracingMW app.HandlerFunc
	if cfg.Cfg.OTelEnabled {
		var tracer config.Option
		tracer, tracingMW = middleware.NewServerTracerConfig()
		serverOpts = append(serverOpts, tracer)
	}

	h := server.Default(serverOpts...)
	if tracingMW != nil {
		h.Use(tracingMW)
	}

	router.Register(h)

	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
