// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package log

import (
	"context"
	"log/slog"

	"github.com/luxfi/log"
	"github.com/luxfi/zap"
)

// ZapLog adapts a github.com/luxfi/zap logger to the github.com/luxfi/log.Logger
// interface used throughout the engine. It is the logger a hosted daemon
// configures at startup; embedded/test builds use NoLog instead.
type ZapLog struct {
	z     *zap.Logger
	level slog.Level
}

// NewZapLogger builds a ZapLog at the given level ("debug", "info", "warn", "error").
func NewZapLogger(levelName string) log.Logger {
	lvl := parseLevel(levelName)

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(lvl))

	z, err := cfg.Build()
	if err != nil {
		return NewNoOpLogger()
	}

	return &ZapLog{z: z, level: lvl}
}

func parseLevel(name string) slog.Level {
	switch name {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func zapLevel(l slog.Level) zap.AtomicLevel {
	switch {
	case l <= slog.LevelDebug:
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case l <= slog.LevelInfo:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	case l <= slog.LevelWarn:
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	default:
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
}

func (l *ZapLog) With(ctx ...interface{}) log.Logger {
	return &ZapLog{z: l.z.Sugar().With(ctx...).Desugar(), level: l.level}
}

func (l *ZapLog) New(ctx ...interface{}) log.Logger { return l.With(ctx...) }

func (l *ZapLog) Log(level slog.Level, msg string, ctx ...interface{}) {
	l.logAt(level, msg, ctx...)
}

func (l *ZapLog) Trace(msg string, ctx ...interface{}) { l.z.Sugar().Debugw(msg, ctx...) }
func (l *ZapLog) Debug(msg string, ctx ...interface{}) { l.z.Sugar().Debugw(msg, ctx...) }
func (l *ZapLog) Info(msg string, ctx ...interface{})  { l.z.Sugar().Infow(msg, ctx...) }
func (l *ZapLog) Warn(msg string, ctx ...interface{})  { l.z.Sugar().Warnw(msg, ctx...) }
func (l *ZapLog) Error(msg string, ctx ...interface{}) { l.z.Sugar().Errorw(msg, ctx...) }
func (l *ZapLog) Crit(msg string, ctx ...interface{})  { l.z.Sugar().Errorw(msg, ctx...) }

func (l *ZapLog) WriteLog(level slog.Level, msg string, attrs ...any) {
	l.logAt(level, msg, attrs...)
}

func (l *ZapLog) logAt(level slog.Level, msg string, ctx ...interface{}) {
	s := l.z.Sugar()
	switch {
	case level <= slog.LevelDebug:
		s.Debugw(msg, ctx...)
	case level <= slog.LevelInfo:
		s.Infow(msg, ctx...)
	case level <= slog.LevelWarn:
		s.Warnw(msg, ctx...)
	default:
		s.Errorw(msg, ctx...)
	}
}

func (l *ZapLog) Enabled(_ context.Context, level slog.Level) bool {
	return level >= l.level
}

func (l *ZapLog) Handler() slog.Handler { return nil }

func (l *ZapLog) Fatal(msg string, fields ...zap.Field) { l.z.Fatal(msg, fields...) }
func (l *ZapLog) Verbo(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }

func (l *ZapLog) WithFields(fields ...zap.Field) log.Logger {
	return &ZapLog{z: l.z.With(fields...), level: l.level}
}

func (l *ZapLog) WithOptions(opts ...zap.Option) log.Logger {
	return &ZapLog{z: l.z.WithOptions(opts...), level: l.level}
}

func (l *ZapLog) SetLevel(level slog.Level) { l.level = level }
func (l *ZapLog) GetLevel() slog.Level      { return l.level }

func (l *ZapLog) EnabledLevel(lvl slog.Level) bool { return lvl >= l.level }

func (l *ZapLog) StopOnPanic() {}

func (l *ZapLog) RecoverAndPanic(f func()) { f() }

func (l *ZapLog) RecoverAndExit(f, exit func()) { f() }

func (l *ZapLog) Stop() { _ = l.z.Sync() }

func (l *ZapLog) Write(p []byte) (int, error) {
	l.z.Sugar().Info(string(p))
	return len(p), nil
}
