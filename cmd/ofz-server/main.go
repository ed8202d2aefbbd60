package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/ofzlab/ofz-planner/internal/api/handlers"
	"github.com/ofzlab/ofz-planner/internal/api/middleware"
	"github.com/ofzlab/ofz-planner/internal/cache"
	"github.com/ofzlab/ofz-planner/internal/config"
	"github.com/ofzlab/ofz-planner/internal/moex"
	"github.com/ofzlab/ofz-planner/pkg/constants"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func buildLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	zapConfig := zap.NewProductionConfig()
	if loggingConfig.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	var conf *config.Configuration
	if _, statErr := os.Stat(*configLocation); os.IsNotExist(statErr) && *configLocation == constants.DefaultConfigFile {
		conf = config.DefaultConfiguration()
	} else {
		var err error
		conf, err = config.LoadConfiguration(*configLocation)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load configuration at %s: %v\n", *configLocation, err)
			os.Exit(1)
		}
	}

	logger, err := buildLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if conf.Logging.Level != "debug" && *logLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	client := moex.NewClient(logger, conf.Moex.BaseURL, conf.Moex.Timeout())
	store := cache.NewStore(logger, conf.Cache.Path)
	provider := cache.NewProvider(logger, store, client, conf.Cache.Enabled)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	handlers.NewHandler(logger, provider, conf.Simulation.AllowCarryOver).Register(router)

	corsOptions := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}
	if len(conf.Server.AllowedOrigins) > 0 {
		corsOptions.AllowedOrigins = conf.Server.AllowedOrigins
	}

	address := conf.Server.Address
	if address == "" {
		address = constants.DefaultServerAddress
	}

	logger.Info("starting api server",
		zap.String("op", "main"),
		zap.String("address", address),
	)
	if err := http.ListenAndServe(address, cors.New(corsOptions).Handler(router)); err != nil {
		logger.Fatal("server stopped",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
