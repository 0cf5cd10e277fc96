// Package logging builds the process logger and the queue-published
// variant the worker fabric uses, so the master can relay every worker's
// records from one place.
package logging

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogQueue is the Redis list carrying worker log records.
const LogQueue = "logging"

// New builds the process logger. Verbose switches to the development
// configuration with debug enabled.
func New(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

// Record is one queue-published log entry.
type Record struct {
	UID     string `json:"uid"`
	Level   string `json:"lvl"`
	Message string `json:"msg"`
}

// QueueLogger logs locally and mirrors every record onto the shared Redis
// logging queue under the worker's uid.
type QueueLogger struct {
	uid   string
	local *zap.Logger
	rdb   *redis.Client
}

// NewQueueLogger wraps a local logger with queue publication.
func NewQueueLogger(uid string, local *zap.Logger, rdb *redis.Client) *QueueLogger {
	return &QueueLogger{uid: uid, local: local, rdb: rdb}
}

func (l *QueueLogger) publish(ctx context.Context, level zapcore.Level, message string) {
	payload, err := json.Marshal(Record{UID: l.uid, Level: level.String(), Message: message})
	if err != nil {
		return
	}
	// Queue publication is best effort; the local record already exists.
	l.rdb.RPush(ctx, LogQueue, payload)
}

// Debug logs and publishes at debug level.
func (l *QueueLogger) Debug(ctx context.Context, message string, fields ...zap.Field) {
	l.local.Debug("["+l.uid+"] "+message, fields...)
	l.publish(ctx, zapcore.DebugLevel, message)
}

// Info logs and publishes at info level.
func (l *QueueLogger) Info(ctx context.Context, message string, fields ...zap.Field) {
	l.local.Info("["+l.uid+"] "+message, fields...)
	l.publish(ctx, zapcore.InfoLevel, message)
}

// Warn logs and publishes at warn level.
func (l *QueueLogger) Warn(ctx context.Context, message string, fields ...zap.Field) {
	l.local.Warn("["+l.uid+"] "+message, fields...)
	l.publish(ctx, zapcore.WarnLevel, message)
}

// Error logs and publishes at error level.
func (l *QueueLogger) Error(ctx context.Context, message string, fields ...zap.Field) {
	l.local.Error("["+l.uid+"] "+message, fields...)
	l.publish(ctx, zapcore.ErrorLevel, message)
}
