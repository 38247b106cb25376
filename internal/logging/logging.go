package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"lejio/tracking/internal/config"
)

func ParseLevel(s string) log.Level {
	switch s {
	case "DEBUG":
		return log.DebugLevel
	case "INFO":
		return log.InfoLevel
	case "WARN":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Configure sets up the global logrus logger: text to stdout, plus a rotated
// file through lfshook when LogFilePath is set.
func Configure(cfg *config.Config) error {
	return configure(log.StandardLogger(), cfg, os.Stdout)
}

func configure(logger *log.Logger, cfg *config.Config, out io.Writer) error {
	logger.SetLevel(ParseLevel(cfg.LogLevel))
	logger.SetFormatter(&log.TextFormatter{ForceColors: cfg.LogForceColors, FullTimestamp: true})
	logger.SetOutput(out)

	if cfg.LogFilePath == "" {
		return nil
	}

	logDir := filepath.Dir(cfg.LogFilePath)
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return fmt.Errorf("create log dir %s: %w", logDir, err)
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    100,
		MaxBackups: 30,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	}

	fileFmt := &log.TextFormatter{DisableColors: true, FullTimestamp: true}
	logger.AddHook(lfshook.NewHook(lfshook.WriterMap{
		log.PanicLevel: rotator,
		log.FatalLevel: rotator,
		log.ErrorLevel: rotator,
		log.WarnLevel:  rotator,
		log.InfoLevel:  rotator,
		log.DebugLevel: rotator,
		log.TraceLevel: rotator,
	}, fileFmt))

	return nil
}
