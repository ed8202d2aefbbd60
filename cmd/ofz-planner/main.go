package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ofzlab/ofz-planner/internal/bond"
	"github.com/ofzlab/ofz-planner/internal/cache"
	"github.com/ofzlab/ofz-planner/internal/config"
	"github.com/ofzlab/ofz-planner/internal/moex"
	"github.com/ofzlab/ofz-planner/internal/planner"
	"github.com/ofzlab/ofz-planner/internal/simulate"
	"github.com/ofzlab/ofz-planner/internal/target"
	"github.com/ofzlab/ofz-planner/pkg/constants"
	"github.com/ofzlab/ofz-planner/pkg/datetime"
	"github.com/ofzlab/ofz-planner/pkg/output"
	"github.com/ofzlab/ofz-planner/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
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

	format := loggingConfig.Format
	if format == "" {
		format = "console"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}
		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	mode := flag.String("mode", "simulate", "operation: simulate, target, plan, refresh-cache")
	secid := flag.String("secid", "", "bond SECID, e.g. SU26235RMFS0")
	dateFlag := flag.String("date", "", "purchase date YYYY-MM-DD (default: today)")
	qty := flag.Int("qty", 1, "initial quantity for simulate mode")
	targetAmount := flag.Float64("target", 0, "target amount at maturity for target mode")
	income := flag.Float64("income", 0, "desired annual coupon income for plan mode")
	years := flag.Float64("years", 0, "income horizon in years for plan mode")
	carryOverFlag := flag.String("carry-over", "", "carry-over override: true, false")
	noCache := flag.Bool("no-cache", false, "bypass the local bond cache")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	printConfig := flag.Bool("print-config", false, "print the default configuration as YAML and exit")
	flag.Parse()

	if *printConfig {
		data, err := yaml.Marshal(config.DefaultConfiguration())
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to render default configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(string(data))
		return
	}

	// A missing default config file is not an error; the built-in defaults
	// cover the common case of running against the public ISS.
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

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	allowCarryOver := conf.Simulation.AllowCarryOver
	switch *carryOverFlag {
	case "":
	case "true":
		allowCarryOver = true
	case "false":
		allowCarryOver = false
	default:
		logger.Fatal("invalid -carry-over value, expected true or false",
			zap.String("op", "main"),
			zap.String("value", *carryOverFlag),
		)
	}

	purchaseDate := time.Now().Truncate(24 * time.Hour)
	if *dateFlag != "" {
		purchaseDate, err = datetime.ParseDate(*dateFlag)
		if err != nil {
			logger.Fatal("invalid -date value",
				zap.String("op", "main"),
				zap.String("value", *dateFlag),
				zap.Error(err),
			)
		}
	}

	client := moex.NewClient(logger, conf.Moex.BaseURL, conf.Moex.Timeout())
	store := cache.NewStore(logger, conf.Cache.Path)
	provider := cache.NewProvider(logger, store, client, conf.Cache.Enabled && !*noCache)
	ctx := context.Background()

	switch *mode {
	case "simulate":
		b := mustGetBond(ctx, logger, provider, *secid)
		res, err := simulate.Simulate(logger, b, purchaseDate, *qty, b.FaceValue, allowCarryOver)
		if err != nil {
			logger.Fatal("simulation failed", zap.String("op", "main"), zap.Error(err))
		}
		if outputFormat == constants.OutputFormatCSV {
			output.SimulationCsv(os.Stdout, b, purchaseDate, res)
		} else {
			output.SimulationPretty(os.Stdout, b, purchaseDate, res)
		}

	case "target":
		b := mustGetBond(ctx, logger, provider, *secid)
		sol, err := target.SolveMinQty(logger, b, purchaseDate, *targetAmount, allowCarryOver)
		if err != nil {
			logger.Fatal("target search failed", zap.String("op", "main"), zap.Error(err))
		}
		if outputFormat == constants.OutputFormatCSV {
			output.TargetCsv(os.Stdout, b, sol)
		} else {
			output.TargetPretty(os.Stdout, b, sol)
		}

	case "plan":
		listings, err := provider.Listings(ctx)
		if err != nil {
			logger.Fatal("failed to load the OFZ listing", zap.String("op", "main"), zap.Error(err))
		}
		res, err := planner.ChooseBestIssue(logger, listings, *income, *years, time.Now())
		if err != nil {
			logger.Fatal("income planning failed", zap.String("op", "main"), zap.Error(err))
		}
		if outputFormat == constants.OutputFormatCSV {
			output.PlanCsv(os.Stdout, res)
		} else {
			output.PlanPretty(os.Stdout, res, *income)
		}

	case "refresh-cache":
		count, err := provider.Refresh(ctx)
		if err != nil {
			logger.Fatal("cache refresh failed", zap.String("op", "main"), zap.Error(err))
		}
		logger.Info("cache refreshed",
			zap.String("op", "main"),
			zap.String("path", conf.Cache.Path),
			zap.Int("bonds", count),
		)

	default:
		logger.Fatal("unknown mode, expected simulate, target, plan, or refresh-cache",
			zap.String("op", "main"),
			zap.String("mode", *mode),
		)
	}
}

func mustGetBond(ctx context.Context, logger *zap.Logger, provider *cache.Provider, secid string) *bond.Bond {
	if secid == "" {
		logger.Fatal("-secid is required", zap.String("op", "main"))
	}
	b, err := provider.GetBond(ctx, secid)
	if err != nil {
		logger.Fatal("failed to resolve bond",
			zap.String("op", "main"),
			zap.String("secid", secid),
			zap.Error(err),
		)
	}
	return b
}
