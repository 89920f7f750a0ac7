package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFunc(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		message string
		want    zapcore.Level
	}{
		{"query at info", gormlogger.Info, time.Now(), nil, "SQL", zapcore.DebugLevel},
		{"slow query", gormlogger.Warn, time.Now().Add(-time.Second), nil, "Slow SQL", zapcore.WarnLevel},
		{"failure", gormlogger.Error, time.Now(), errors.New("deadlock detected"), "SQL error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			l := NewGormLogger(zap.New(core), tt.level, 200*time.Millisecond)

			l.Trace(context.Background(), tt.begin, sqlFunc(`SELECT * FROM "batches"`, 3), tt.err)

			require.Equal(t, 1, recorded.Len())
			entry := recorded.All()[0]
			assert.Equal(t, tt.message, entry.Message)
			assert.Equal(t, tt.want, entry.Level)
			assert.Equal(t, "gorm", entry.LoggerName)
			assert.Equal(t, int64(3), entry.ContextMap()["rows"])
		})
	}
}

func TestGormLogger_QuietCases(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	NewGormLogger(log, gormlogger.Silent, 0).Trace(context.Background(), time.Now(), sqlFunc("SELECT 1", 1), errors.New("boom"))
	NewGormLogger(log, gormlogger.Error, 0).Trace(context.Background(), time.Now(), sqlFunc("SELECT 1", 0), gormlogger.ErrRecordNotFound)
	NewGormLogger(log, gormlogger.Warn, 0).Trace(context.Background(), time.Now().Add(-time.Hour), sqlFunc("SELECT 1", 1), nil)

	assert.Zero(t, recorded.Len())
}

func TestGormLogger_CarriesRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	base := zap.New(core)
	ctx, _ := WithRequestID(context.Background(), base, "req-7")

	NewGormLogger(base, gormlogger.Info, 0).Trace(ctx, time.Now(), sqlFunc("SELECT 1", 1), nil)
	assert.Equal(t, "req-7", recorded.All()[0].ContextMap()["request_id"])
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Silent, 0)

	loud := l.LogMode(gormlogger.Info)
	loud.Info(context.Background(), "migrated %d tables", 17)
	l.Info(context.Background(), "not logged")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "migrated 17 tables", recorded.All()[0].Message)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
