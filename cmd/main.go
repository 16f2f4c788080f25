package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/char5742/gamehaven/internal/config"
	"github.com/char5742/gamehaven/internal/engine"
	"github.com/char5742/gamehaven/internal/features"
	"github.com/char5742/gamehaven/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// コマンドライン引数の解析
	configPath := flag.String("config", "", "設定ファイルのパス (指定しない場合はデフォルトパスを使用)")
	jsPath := flag.String("js", "", "ジョイスティックデバイス (設定ファイルより優先)")
	fbPath := flag.String("fb", "", "フレームバッファデバイス (設定ファイルより優先)")
	imagePath := flag.String("image", "", "起動時に表示するPNG画像")
	logLevel := flag.String("log-level", "", "ログレベル (debug, info, warn, error)")
	flag.Parse()

	defer logger.Sync()
	log := logger.Named("main")

	// デフォルト設定ファイルパスの設定
	defaultConfigPath := ""
	configDir, err := config.GetDefaultConfigDir()
	if err == nil {
		defaultConfigPath = filepath.Join(configDir, "config.toml")
	}

	// 設定ファイルパスの決定
	cfgPath := defaultConfigPath
	if *configPath != "" {
		cfgPath = *configPath
	}

	// 設定ファイルの読み込み
	var cfg *config.Config
	if cfgPath != "" {
		cfg, err = config.LoadConfig(cfgPath)
		if err != nil {
			log.Warnw("設定ファイルの読み込みに失敗しました。デフォルト設定を使用します", "path", cfgPath, "error", err)
			cfg = config.DefaultConfig()
		} else {
			log.Infow("設定ファイルを読み込みました", "path", cfgPath)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	// コマンドライン引数で上書き
	if *jsPath != "" {
		cfg.Joystick.Device = *jsPath
	}
	if *fbPath != "" {
		cfg.Display.Device = *fbPath
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Warnw("ログレベルを設定できませんでした", "error", err)
	}

	// シグナルが来たらコンテキストを終了する
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := engine.New(cfg)
	eng.Subscribe(features.Callbacks{
		Button: func(ev features.ButtonEvent) {
			log.Infow("ボタン", "button", ev.Button.String(), "type", ev.Type.String(), "elapsed", ev.Elapsed)
		},
		Axis: func(ev features.AxisEvent) {
			log.Debugw("軸", "axis", ev.Axis.String(), "value", ev.Value)
		},
		Connection: func(ev features.ConnectionEvent) {
			if ev.Connected {
				log.Infow("ゲームパッドが接続されました", "name", ev.Identifier, "path", ev.Path)
			} else {
				log.Infow("ゲームパッドが切断されました", "name", ev.Identifier, "path", ev.Path)
			}
		},
	})

	if err := eng.Start(ctx); err != nil {
		log.Errorw("エンジンの起動に失敗しました", "error", err)
		return 1
	}

	if err := showStartupFrame(eng.Display(), *imagePath); err != nil {
		log.Warnw("起動画面を表示できませんでした", "error", err)
	}

	<-ctx.Done()
	log.Info("シャットダウンします...")
	if err := eng.Stop(); err != nil && !errors.Is(err, engine.ErrNotRunning) {
		log.Errorw("停止に失敗しました", "error", err)
		return 1
	}
	<-eng.Done()
	return 0
}

// showStartupFrame は画像があれば表示し、なければ画面を消去する
func showStartupFrame(display *features.Display, path string) error {
	if path == "" {
		return display.Clear()
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("PNGの読み込みに失敗しました: %s: %w", path, err)
	}
	return display.SubmitImage(img)
}
