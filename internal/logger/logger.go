// Package logger configure the application's logging,
// monitoring, and observability.
//
// It uses *ZeroLog* for logging and optionally integrates with
// *New Relic* to forward logs and attach trace ids to records.
//
// One process-wide logger is built at startup. It fans every record
// out to stdout and to two append-only files:
//   - error.log    only error level and above
//   - combined.log everything
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/logcontext-v2/zerologWriter"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/deppfellow/enhanced-calculator/internal/config"
)

const (
	ErrorLogFile    = "error.log"
	CombinedLogFile = "combined.log"
)

// LoggerService owns the optional New Relic application.
//
// When no license key is configured the service still exists but
// GetApplication returns nil, and every New Relic hook becomes a no-op.
type LoggerService struct {
	nrApp *newrelic.Application
}

// NewLoggerService starts the New Relic agent if a license key is configured.
//
// Agent start-up failures are not fatal: the service keeps running
// without APM and the failure is reported on stderr.
func NewLoggerService(cfg *config.ObservabilityConfig) *LoggerService {
	service := &LoggerService{}

	if !cfg.NewRelicEnabled() {
		return service
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.ServiceName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(cfg.NewRelic.AppLogForwardingEnabled),
		newrelic.ConfigDistributedTracerEnabled(cfg.NewRelic.DistributedTracingEnabled),
		func(c *newrelic.Config) {
			c.Labels = map[string]string{"environment": cfg.Environment}
			if cfg.NewRelic.DebugLogging {
				c.Logger = newrelic.NewDebugLogger(os.Stdout)
			}
		},
	)
	if err != nil {
		bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrap.Error().Err(err).Msg("failed to start New Relic, continuing without APM")
		return service
	}

	service.nrApp = app

	return service
}

// GetApplication returns the New Relic application, or nil when APM is disabled.
func (ls *LoggerService) GetApplication() *newrelic.Application {
	if ls == nil {
		return nil
	}
	return ls.nrApp
}

// Shutdown flushes pending New Relic data.
func (ls *LoggerService) Shutdown() {
	if ls.GetApplication() != nil {
		ls.nrApp.Shutdown(10 * time.Second)
	}
}

// NewLoggerWithService builds the process-wide logger.
//
// stdout receives JSON records (or console formatted records when
// logging.format=console). If logging.directory is set, error.log and
// combined.log are opened in append mode inside it. The returned close
// function releases the files.
func NewLoggerWithService(cfg *config.ObservabilityConfig, stdout io.Writer, loggerService *LoggerService) (zerolog.Logger, func() error, error) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("parse log level: %w", err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var console io.Writer = stdout
	if cfg.Logging.Format == "console" {
		console = zerolog.ConsoleWriter{Out: stdout, TimeFormat: "15:04:05"}
	} else if app := loggerService.GetApplication(); app != nil && cfg.NewRelic.AppLogForwardingEnabled {
		console = zerologWriter.New(stdout, app)
	}

	writers := []io.Writer{console}
	var files []*os.File

	if cfg.Logging.Directory != "" {
		if err := os.MkdirAll(cfg.Logging.Directory, 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", err)
		}

		errorFile, err := openAppend(filepath.Join(cfg.Logging.Directory, ErrorLogFile))
		if err != nil {
			return zerolog.Nop(), nil, err
		}

		combinedFile, err := openAppend(filepath.Join(cfg.Logging.Directory, CombinedLogFile))
		if err != nil {
			_ = errorFile.Close()
			return zerolog.Nop(), nil, err
		}

		files = append(files, errorFile, combinedFile)
		writers = append(writers,
			&zerolog.FilteredLevelWriter{
				Writer: zerolog.LevelWriterAdapter{Writer: errorFile},
				Level:  zerolog.ErrorLevel,
			},
			combinedFile,
		)
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger()

	closeFn := func() error {
		var errs []error
		for _, f := range files {
			errs = append(errs, f.Close())
		}
		return errors.Join(errs...)
	}

	return logger, closeFn, nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

// WithTraceContext adds New Relic trace.id and span.id to a logger.
func WithTraceContext(logger zerolog.Logger, txn *newrelic.Transaction) zerolog.Logger {
	if txn == nil {
		return logger
	}

	metadata := txn.GetTraceMetadata()

	return logger.With().
		Str("trace.id", metadata.TraceID).
		Str("span.id", metadata.SpanID).
		Logger()
}
