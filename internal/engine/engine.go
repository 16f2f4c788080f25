package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/char5742/gamehaven/internal/config"
	"github.com/char5742/gamehaven/internal/consts"
	"github.com/char5742/gamehaven/internal/features"
	"github.com/char5742/gamehaven/internal/logger"
)

// ErrNotRunning は開始していないエンジンへの操作
var ErrNotRunning = errors.New("engine is not running")

// Engine はゲームパッドとディスプレイをまとめて管理する
type Engine struct {
	cfg         *config.Config
	running     bool
	statusMutex sync.RWMutex
	gamepad     *features.Gamepad
	display     *features.Display
	log         *zap.SugaredLogger
	stopCtx     context.CancelFunc
	done        chan struct{}
	callbacks   features.Callbacks
}

// New は新しいエンジンを作成する
func New(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Engine{
		cfg: cfg,
		log: logger.Named("engine"),
	}
}

// Start はゲームパッドの読み取りとディスプレイのレンダーループを開始する
// ctxが終了すると自動的に停止する
func (e *Engine) Start(ctx context.Context) error {
	e.statusMutex.Lock()
	defer e.statusMutex.Unlock()

	if e.running {
		return fmt.Errorf("エンジンは既に実行中です")
	}

	subscribe, err := e.cfg.SubscribedEvents()
	if err != nil {
		return fmt.Errorf("購読するイベントの設定が不正です: %w", err)
	}
	overrides, err := e.cfg.ButtonOverrides()
	if err != nil {
		return err
	}

	fbPath := e.cfg.Display.Device
	if fbPath == "" {
		if fbPath, err = features.FindFramebuffer(); err != nil {
			e.log.Warnw("フレームバッファが見つかりません", "device", consts.DefaultFramebufferDevice, "error", err)
			fbPath = consts.DefaultFramebufferDevice
		}
	}

	e.gamepad = features.OpenGamepad(e.cfg.Joystick.Device, features.GamepadOptions{
		Subscribe:             subscribe,
		TreatAxisAsButtons:    e.cfg.Joystick.TreatAxisAsButtons,
		DefaultButtonSettings: e.cfg.Buttons.Default,
		Callbacks:             e.callbacks,
		Joystick: features.JoystickOptions{
			RetryInterval:      e.cfg.Joystick.RetryInterval,
			SuppressDuplicates: e.cfg.Joystick.SuppressDuplicates,
		},
	})
	e.gamepad.ReplaceButtonSettings(e.cfg.Buttons.Default, overrides)

	e.display = features.NewDisplay(fbPath, features.DisplayOptions{
		Fallback:      e.cfg.Geometry(),
		FrameInterval: e.cfg.Display.FrameInterval,
	})

	runCtx, cancel := context.WithCancel(ctx)
	e.stopCtx = cancel
	e.done = make(chan struct{})
	e.running = true

	e.log.Infow("エンジンを開始しました", "joystick", e.cfg.Joystick.Device, "framebuffer", fbPath)

	go e.waitStop(runCtx)
	return nil
}

// waitStop はコンテキストが終了したらデバイスを閉じる
func (e *Engine) waitStop(ctx context.Context) {
	defer close(e.done)
	<-ctx.Done()

	e.statusMutex.Lock()
	gamepad, display := e.gamepad, e.display
	e.running = false
	e.statusMutex.Unlock()

	// ゲームパッドとディスプレイを並行して閉じる
	var g errgroup.Group
	g.Go(gamepad.Close)
	g.Go(display.Close)
	if err := g.Wait(); err != nil {
		e.log.Errorw("デバイスのクローズに失敗しました", "error", err)
	}
	e.log.Info("エンジンを停止しました")
}

// Stop はエンジンを停止し、デバイスが閉じられるまで待つ
func (e *Engine) Stop() error {
	e.statusMutex.RLock()
	running, cancel, done := e.running, e.stopCtx, e.done
	e.statusMutex.RUnlock()

	if !running || cancel == nil {
		return ErrNotRunning
	}
	cancel()
	<-done
	return nil
}

// Done はエンジンが停止したときに閉じられるチャネル
func (e *Engine) Done() <-chan struct{} {
	e.statusMutex.RLock()
	defer e.statusMutex.RUnlock()
	return e.done
}

// IsRunning はエンジンが実行中かどうかを返す
func (e *Engine) IsRunning() bool {
	e.statusMutex.RLock()
	defer e.statusMutex.RUnlock()
	return e.running
}

// UpdateConfig はボタン設定を実行中のゲームパッドに反映する
// デバイスのパスや解像度の変更は次のStartから有効になる
func (e *Engine) UpdateConfig(cfg *config.Config) error {
	overrides, err := cfg.ButtonOverrides()
	if err != nil {
		return err
	}

	e.statusMutex.Lock()
	defer e.statusMutex.Unlock()
	e.cfg = cfg

	if !e.running {
		return nil
	}
	e.gamepad.ReplaceButtonSettings(cfg.Buttons.Default, overrides)
	e.log.Info("設定を更新しました")
	return nil
}

// Subscribe はゲームパッドのイベントの通知先を設定する
// Startの前に呼べば接続直後のイベントも受け取れる
func (e *Engine) Subscribe(callbacks features.Callbacks) {
	e.statusMutex.Lock()
	defer e.statusMutex.Unlock()
	e.callbacks = callbacks
	if e.gamepad != nil {
		e.gamepad.Subscribe(callbacks)
	}
}

// Gamepad は実行中のゲームパッド。開始前はnil
func (e *Engine) Gamepad() *features.Gamepad {
	e.statusMutex.RLock()
	defer e.statusMutex.RUnlock()
	return e.gamepad
}

// Display は実行中のディスプレイ。開始前はnil
func (e *Engine) Display() *features.Display {
	e.statusMutex.RLock()
	defer e.statusMutex.RUnlock()
	return e.display
}
