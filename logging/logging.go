package logging

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"

	"microtwit/config"
)

// New builds the application logger. When a logstash address is configured
// every entry is also shipped there over TCP.
func New(cfg config.Config) (*logrus.Logger, error) {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg config.Config, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger.SetLevel(level)

	if cfg.LogstashAddr != "" {
		conn, err := net.DialTimeout("tcp", cfg.LogstashAddr, 5*time.Second)
		if err != nil {
			return nil, fmt.Errorf("failed to reach logstash at %s: %w", cfg.LogstashAddr, err)
		}
		hook := logrustash.New(conn, logrustash.DefaultFormatter(logrus.Fields{"type": "microtwit"}))
		logger.Hooks.Add(hook)
	}

	return logger, nil
}

// GormLogger routes gorm's query log through logrus.
func GormLogger(logger *logrus.Logger) gormlogger.Interface {
	return gormlogger.New(logger, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
