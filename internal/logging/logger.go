package logging

import (
	"io"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/2beens/workouttracker/internal/config"
	"github.com/2beens/workouttracker/pkg"
)

const (
	logFileMaxSizeMB  = 50
	logFileMaxBackups = 30
	sentryServerName  = "workout-tracker"
)

// Setup points the global logrus logger at the configured outputs. Sentry only
// gets error, fatal and panic entries, and only when enabled with a DSN.
func Setup(cfg *config.Config, sentryDSN string) {
	if cfg.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(GetLevel(cfg.LogLevel))
	logrus.SetOutput(output(cfg.LogsPath, cfg.LogToStdout))

	if cfg.SentryEnabled {
		setupSentry(cfg.Environment, sentryDSN)
	}
}

// output is stdout when there is no log file, otherwise the rotated file,
// teed to stdout if asked for.
func output(logsPath string, toStdout bool) io.Writer {
	if logsPath == "" {
		return os.Stdout
	}

	logFile := &lumberjack.Logger{
		Filename:   logsPath,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		Compress:   true,
	}
	if toStdout {
		return pkg.NewCombinedWriter(os.Stdout, logFile)
	}
	return logFile
}

func setupSentry(environment, dsn string) {
	if dsn == "" {
		logrus.Warnln("sentry enabled but SENTRY_DSN is empty, skipping")
		return
	}

	err := sentry.Init(sentry.ClientOptions{
		Environment: environment,
		Dsn:         dsn,
		ServerName:  sentryServerName,
	})
	if err != nil {
		logrus.Errorf("sentry init: %s", err)
		return
	}

	logrus.AddHook(NewSentryHook(sentry.CurrentHub(), []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Debugln("sentry hook added")
}

// GetLevel parses a logrus level name, unknown names fall back to info.
func GetLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
