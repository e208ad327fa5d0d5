package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/nickjlamb/biomarkerfinder/internal/api"
	"github.com/nickjlamb/biomarkerfinder/internal/config"
	"github.com/nickjlamb/biomarkerfinder/internal/service"
	"github.com/nickjlamb/biomarkerfinder/pkg/ontology"
	"github.com/nickjlamb/biomarkerfinder/pkg/opentargets"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format)

	olsClient := ontology.NewClient(ontology.Config{
		BaseURL:   cfg.ExternalAPI.OLS.BaseURL,
		Ontology:  cfg.ExternalAPI.OLS.Ontology,
		IRIPrefix: cfg.ExternalAPI.OLS.IRIPrefix,
		Timeout:   cfg.ExternalAPI.OLS.Timeout,
		RateLimit: cfg.ExternalAPI.OLS.RateLimit,
		PageSize:  cfg.ExternalAPI.OLS.PageSize,
	})

	otClient := opentargets.NewClient(opentargets.Config{
		Endpoint:          cfg.ExternalAPI.OpenTargets.Endpoint,
		Timeout:           cfg.ExternalAPI.OpenTargets.Timeout,
		RateLimit:         cfg.ExternalAPI.OpenTargets.RateLimit,
		DrugPageSize:      cfg.ExternalAPI.OpenTargets.DrugPageSize,
		CandidatePageSize: cfg.ExternalAPI.OpenTargets.CandidatePageSize,
	}, logger)

	resolver := service.NewRelationshipResolver(logger, olsClient, cfg.Cache.Size, cfg.Cache.TTL)
	crossref := service.NewCrossReferencer(logger, resolver, otClient)
	biomarkers := service.NewBiomarkerService(logger, otClient)

	server := api.NewServer(logger, cfg.Server, biomarkers, resolver, crossref, otClient)

	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting biomarker finder server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithField("error", err.Error()).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// newLogger builds the process logger from config.
func newLogger(level, format string) *logrus.Logger {
	logger := logrus.New()

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
