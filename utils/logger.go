// Package utils provides utility functions for the application.
package utils

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewRotatingLogger builds a logger writing to both stdout and a rotating
// log file. maxSize is in megabytes, maxAge in days. An empty filePath
// yields a stdout-only logger.
func NewRotatingLogger(prefix, filePath string, maxSize, maxBackups, maxAge int, compress bool) *log.Logger {
	flags := log.LstdFlags | log.Lmicroseconds | log.LUTC

	if filePath == "" {
		return log.New(os.Stdout, prefix, flags)
	}

	rotator := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   compress,
	}

	mw := io.MultiWriter(os.Stdout, rotator)
	return log.New(mw, prefix, flags)
}
