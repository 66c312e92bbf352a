package main

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logger struct {
	logger *zap.SugaredLogger
}

var log logger

// If the live status line is on screen, wipe it first so log lines don't
// land in the middle of it.
func (l *logger) clearStatus() {
	if statusLog.isRealtime() {
		statusLog.clearStatusLine()
	}
}

func (l *logger) Print(a ...interface{}) {
	l.clearStatus()
	l.logger.Info(a...)
}

func (l *logger) Printf(format string, a ...interface{}) {
	l.clearStatus()
	l.logger.Infof(format, a...)
}

func (l *logger) Debug(a ...interface{}) {
	l.clearStatus()
	l.logger.Debug(a...)
}

func (l *logger) Error(a ...interface{}) {
	l.clearStatus()
	l.logger.Error(a...)
}

func (l *logger) Errorf(format string, a ...interface{}) {
	l.clearStatus()
	l.logger.Errorf(format, a...)
}

// PrintStatusLog writes the status line through the logger when stdout is
// not a terminal.
func (l *logger) PrintStatusLog(a ...interface{}) {
	l.logger.Info(a...)
}

func (l *logger) Sync() {
	_ = l.logger.Sync()
}

func logTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02T15:04:05.000Z0700"))
}

func (l *logger) Init() {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = logTimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(cfg)

	level := zapcore.InfoLevel
	if quietLog {
		level = zapcore.ErrorLevel
	} else if verboseLog {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level)
	l.logger = zap.New(core).Sugar()
}
