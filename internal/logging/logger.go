package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger. It writes text to stderr until Init
// is called.
var Logger = logrus.New()

var once sync.Once

type Options struct {
	Level string
	// File, when set, receives a copy of every entry through a rotating
	// writer.
	File string
}

// Init configures Logger. Only the first call has any effect.
func Init(opts Options) error {
	var initErr error

	once.Do(func() {
		initErr = configure(Logger, opts)
	})

	return initErr
}

func configure(logger *logrus.Logger, opts Options) error {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return err
		}
		level = parsed
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if opts.File == "" {
		logger.SetOutput(os.Stderr)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
		return err
	}

	logFile := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	logger.SetOutput(io.MultiWriter(os.Stderr, logFile))
	logger.Infof("Logging to %s", logFile.Filename)

	return nil
}
