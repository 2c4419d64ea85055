package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iwvelando/hotel-forecast/internal/budgetstore"
	"github.com/iwvelando/hotel-forecast/internal/config"
	"github.com/iwvelando/hotel-forecast/internal/ingest"
	"github.com/iwvelando/hotel-forecast/internal/report"
	"github.com/iwvelando/hotel-forecast/internal/server"
	"github.com/iwvelando/hotel-forecast/pkg/constants"
	"github.com/iwvelando/hotel-forecast/pkg/output"
	"github.com/iwvelando/hotel-forecast/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
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

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	asOfFlag := flag.String("as-of", "", "report as-of date override (YYYY-MM-DD)")
	serve := flag.Bool("serve", false, "serve the HTTP API instead of printing a report")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *asOfFlag != "" {
		conf.Report.AsOf = *asOfFlag
	}

	if *serve {
		runServer(conf, *serverConfigLocation, *logLevel)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
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
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	resolver, err := conf.Resolver()
	if err != nil {
		logger.Fatal("invalid capacity configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	opts, err := report.OptionsFromConfig(conf)
	if err != nil {
		logger.Fatal("invalid report configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	opts.Budgets = budgetstore.New(logger, resolvePath(*configLocation, conf.Budget.Directory))

	// Load every data file.
	loader := ingest.NewLoader(logger, ingest.Options{HeaderRow: conf.Data.HeaderRow, Sheet: conf.Data.Sheet})
	ds, err := loader.LoadDataset(context.Background(),
		resolvePaths(*configLocation, conf.Data.RoomSales),
		resolvePaths(*configLocation, conf.Data.Financials),
	)
	if err != nil {
		logger.Fatal("failed to load data",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	rep, err := report.GetReport(logger, ds, resolver, opts)
	if err != nil {
		logger.Fatal("failed to compute report",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, rep)
	case constants.OutputFormatCSV:
		if err := output.CsvFormat(os.Stdout, rep); err != nil {
			logger.Fatal("failed to write csv",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	case constants.OutputFormatJSON:
		if err := output.JSONFormat(os.Stdout, rep); err != nil {
			logger.Fatal("failed to write json",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}

// runServer serves the HTTP API until SIGINT or SIGTERM.
func runServer(conf *config.Configuration, serverConfigLocation, logLevel string) {
	serverConf, err := server.LoadConfig(serverConfigLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", serverConfigLocation, err)
		os.Exit(1)
	}

	loggingConf := serverConf.Logging
	if loggingConf.Level == "" && loggingConf.Format == "" && loggingConf.OutputFile == "" {
		loggingConf = conf.Logging
	}
	logger, err := initializeLogger(loggingConf, logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.runServer"),
		)
	}

	resolver, err := conf.Resolver()
	if err != nil {
		logger.Fatal("invalid capacity configuration",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}

	srv := &http.Server{
		Addr:         serverConf.Address,
		Handler:      server.NewHandler(logger, conf, resolver, serverConf, version),
		ReadTimeout:  serverConf.ReadTimeoutDuration(),
		WriteTimeout: serverConf.WriteTimeoutDuration(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed",
				zap.String("op", "main.runServer"),
				zap.Error(err),
			)
		}
	}()

	logger.Info("serving",
		zap.String("op", "main.runServer"),
		zap.String("address", serverConf.Address),
		zap.Int64("maxUploadSize", serverConf.UploadSizeBytes()),
		zap.String("version", version),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}
}

// resolvePath makes a relative path relative to the configuration file.
func resolvePath(configLocation, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(configLocation), path)
}

func resolvePaths(configLocation string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, resolvePath(configLocation, p))
	}
	return out
}
