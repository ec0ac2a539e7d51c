package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwomack/temporal-ecommerce-agent/internal/config"
	"github.com/stwomack/temporal-ecommerce-agent/internal/handler"
	"github.com/stwomack/temporal-ecommerce-agent/internal/infrastructure"
	"github.com/stwomack/temporal-ecommerce-agent/pkg/logging"
	"github.com/stwomack/temporal-ecommerce-agent/pkg/shutdown"
	"github.com/stwomack/temporal-ecommerce-agent/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New()

	stopTracing := tracing.InitTracer(
		tracing.TraceConfig{ExporterURL: cfg.OTELExporterURL, SampleRate: cfg.TraceSampleRate},
		tracing.AppInfo{Environment: cfg.Env, ServiceName: cfg.ServiceName + "-api", ServiceVersion: cfg.ServiceVersion},
	)
	defer stopTracing()

	producer, err := infrastructure.NewOrderProducer(logger, cfg.KafkaBrokers, cfg.OrdersTopic)
	if err != nil {
		log.Fatalf("failed to create order producer: %v", err)
	}
	defer producer.Close()

	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/orders", handler.NewOrderHandler(producer).CreateOrder)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: tracing.WrapHTTPHandler(router),
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	go func() {
		logger.Info("api listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}
