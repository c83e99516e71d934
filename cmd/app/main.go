// Photo enhancement service entry point
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"photo-enhancer/internal/backend"
	"photo-enhancer/internal/config"
	"photo-enhancer/internal/enhance"
	"photo-enhancer/internal/segment"
	"photo-enhancer/internal/server"
	"photo-enhancer/internal/transport"
)

const (
	AppName    = "Photo Enhancer"
	AppVersion = "1.0.0"
)

func main() {
	// Parse command line flags
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	flag.Parse()

	// Initialize logger
	logger := initLogger(*debugMode)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
	}).Info("Starting Photo Enhancer")

	v, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	cfg, err := config.ParseConfig(v)
	if err != nil {
		logger.WithError(err).Fatal("failed to parse configuration")
	}

	// Model backends load lazily on the first request
	registry := backend.NewRegistry(backendOptions(cfg), logger)
	defer registry.Close()

	remover := segment.NewU2Net(segmentOptions(cfg), logger)
	defer remover.Close()

	service := enhance.NewEnhancer(registry, remover, logger)
	handler := transport.NewEnhanceHandler(service, logger, cfg.MaxUploadBytes(), AppVersion)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(server.Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(handler, logger)); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("error occured while running http server")
		}
	}()

	logger.WithField("address", cfg.Address()).Info("server listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("error occured on server shutting down")
	}

	logger.Info("Application shutting down gracefully")
}

func backendOptions(cfg *config.Config) backend.Options {
	return backend.Options{
		ModelDir:      cfg.Models.Dir,
		FaceModel:     cfg.Models.FaceModel,
		SuperResModel: cfg.Models.SuperResModel,
		CascadeFile:   cfg.Models.CascadeFile,
		Device:        cfg.Models.Device,
		Threads:       cfg.Models.Threads,
		LibraryPath:   cfg.Models.LibraryPath,
	}
}

func segmentOptions(cfg *config.Config) segment.Options {
	return segment.Options{
		ModelDir:    cfg.Models.Dir,
		ModelFile:   cfg.Models.MattingModel,
		Device:      cfg.Models.Device,
		Threads:     cfg.Models.Threads,
		LibraryPath: cfg.Models.LibraryPath,
	}
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
