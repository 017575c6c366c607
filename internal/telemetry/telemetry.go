// Copyright 2025 The IDP Authors
// This file is part of IDP.
//
// IDP is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// IDP is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with IDP. If not, see <http://www.gnu.org/licenses/>.

// Package telemetry builds the *zap.Logger every long-lived component in
// this repository takes as an explicit constructor parameter
// (replication.NewServer, replication.Dial, datacache.New).
// It is the one place log rotation is wired up, so callers elsewhere never
// import lumberjack directly.
package telemetry

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls how NewLogger builds its logger. The zero value produces
// an info-level, JSON-encoded logger writing to stderr.
type Config struct {
	// Level is the minimum enabled level. Defaults to zap.InfoLevel.
	Level zapcore.Level

	// FilePath, when non-empty, routes output through a rotating
	// lumberjack writer instead of stderr.
	FilePath string
	// MaxSizeMB is the per-file rotation threshold; defaults to 100 if
	// zero and FilePath is set.
	MaxSizeMB int
	// MaxBackups is how many rotated files to retain; defaults to 5 if
	// zero and FilePath is set.
	MaxBackups int
	// MaxAgeDays is how long to retain rotated files; defaults to 28 if
	// zero and FilePath is set.
	MaxAgeDays int
	// Compress gzip-compresses rotated files.
	Compress bool

	// Development enables human-readable console encoding and
	// caller/stacktrace annotations on warn+; otherwise JSON encoding is
	// used, suited to log aggregation.
	Development bool
}

// NewLogger builds a *zap.Logger per cfg. Every long-lived constructor in
// this repository accepts a nil *zap.Logger and falls back to
// zap.NewNop(); NewLogger is how a caller (chiefly cmd/idpctl) builds the
// non-nil one it hands them.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level := cfg.Level
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)
	if cfg.Development {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	writer := zapcore.AddSync(newWriteSyncerTarget(cfg))
	core := zapcore.NewCore(encoder, writer, level)

	opts := []zap.Option{zap.ErrorOutput(writer)}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddCaller(), zap.AddStacktrace(zapcore.WarnLevel))
	}
	return zap.New(core, opts...), nil
}

func newWriteSyncerTarget(cfg Config) zapcore.WriteSyncer {
	if cfg.FilePath == "" {
		return zapcore.Lock(zapcore.AddSync(os.Stderr))
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    orDefault(cfg.MaxSizeMB, 100),
		MaxBackups: orDefault(cfg.MaxBackups, 5),
		MaxAge:     orDefault(cfg.MaxAgeDays, 28),
		Compress:   cfg.Compress,
	})
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
