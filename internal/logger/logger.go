// Package logger はアプリケーション全体で使うzapロガーを提供する
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	// エラー以上は標準エラー出力、それ以外は標準出力に出す
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return level.Enabled(lvl) && lvl >= zapcore.ErrorLevel
	})
	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return level.Enabled(lvl) && lvl < zapcore.ErrorLevel
	})

	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(consoleEncoderConfig)

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), highPriority),
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), lowPriority),
	)

	logger = zap.New(core)
}

// Named は名前付きのロガーを返す
func Named(name string) *zap.SugaredLogger {
	return logger.Named(name).Sugar()
}

// SetLevel はログレベルを変更する ("debug", "info", "warn", "error")
func SetLevel(name string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	level.SetLevel(lvl)
	return nil
}

// Sync はバッファされたログを書き出す。終了前に呼び出すこと
func Sync() {
	err := logger.Sync()
	if err != nil && !strings.Contains(err.Error(), "invalid argument") {
		fmt.Fprintf(os.Stderr, "ログの書き出しに失敗しました: %v\n", err)
	}
}
