package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-disaster-alerts/internal/api"
	"github.com/mr1hm/go-disaster-alerts/internal/config"
	internalgrpc "github.com/mr1hm/go-disaster-alerts/internal/grpc"
	"github.com/mr1hm/go-disaster-alerts/internal/ingestion"
	"github.com/mr1hm/go-disaster-alerts/internal/logging"
	"github.com/mr1hm/go-disaster-alerts/internal/notify"
	"github.com/mr1hm/go-disaster-alerts/internal/observability"
	"github.com/mr1hm/go-disaster-alerts/internal/proximity"
	"github.com/mr1hm/go-disaster-alerts/internal/reports"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "source", cfg.Source.Kind)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	src, closeSource, err := buildSource(ctx, cfg, metrics)
	if err != nil {
		logging.Fatalf("Failed to initialize source: %v", err)
	}
	defer closeSource()

	// Warnings fan out to gRPC streams and the notification dispatcher
	broadcaster := proximity.NewBroadcaster()
	monitor := proximity.NewMonitor(broadcaster, cfg.Monitor.HazardRadiusKm, nil)

	mgr := ingestion.NewManager(src, monitor, ingestion.ManagerConfig{
		Name:     string(cfg.Source.Kind),
		Interval: cfg.Monitor.RefreshInterval,
		Metrics:  metrics,
	})
	mgr.Start(ctx)

	notifiers := buildNotifiers(cfg)
	dispatcher := notify.NewDispatcher(notify.DispatcherConfig{
		Cooldown:   cfg.Notifications.Cooldown,
		Workers:    cfg.Worker.Count,
		BufferSize: cfg.Worker.BufferSize,
		Metrics:    metrics,
	}, broadcaster, notifiers...)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()

	reportService := reports.NewService(buildReportPublisher(cfg), nil, metrics)
	defer reportService.Close()

	grpcServer := internalgrpc.NewServer(src, broadcaster, cfg.Monitor.AlertRadiusKm)
	go func() {
		grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
		if err := grpcServer.Start(grpcAddr); err != nil {
			logging.Fatalf("gRPC server error: %v", err)
		}
	}()

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // must stay false with wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimit))

	handler := api.NewHandler(api.HandlerConfig{
		Source:          src,
		Monitor:         monitor,
		Reports:         reportService,
		Metrics:         metrics,
		AlertRadiusKm:   cfg.Monitor.AlertRadiusKm,
		ShelterRadiusKm: cfg.Monitor.ShelterRadiusKm,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mgr.Stop()
	wg.Wait()
	broadcaster.Close() // ends open warning streams
	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

func buildNotifiers(cfg *config.Config) []notify.Notifier {
	notifiers := []notify.Notifier{notify.NewLogNotifier(nil)}

	n := cfg.Notifications
	if n.MQTTBroker != "" {
		client, err := notify.ConnectMQTT(n.MQTTBroker, n.MQTTClientID)
		if err != nil {
			slog.Error("mqtt notifications disabled", "broker", n.MQTTBroker, "error", err)
		} else {
			notifiers = append(notifiers, notify.NewMQTTNotifier(client, n.MQTTTopicPrefix, 0))
		}
	}
	if n.TwilioSID != "" {
		notifiers = append(notifiers, notify.NewTwilioNotifier(n.TwilioSID, n.TwilioToken, n.TwilioFrom, n.SMSTo))
	}
	return notifiers
}

func buildReportPublisher(cfg *config.Config) reports.Publisher {
	if len(cfg.Reports.KafkaBrokers) == 0 {
		slog.Info("no kafka brokers configured, reports will only be logged")
		return reports.LogPublisher{}
	}
	return reports.NewKafkaPublisher(cfg.Reports.KafkaBrokers, cfg.Reports.KafkaTopic)
}
