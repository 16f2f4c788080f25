package features

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/char5742/gamehaven/internal/consts"
	"github.com/char5742/gamehaven/internal/event"
	"github.com/char5742/gamehaven/internal/logger"
)

// AxisEvent はボタンとして扱わない軸の値の変化
type AxisEvent struct {
	Axis  Axis
	Value int16
}

func (e AxisEvent) String() string {
	return fmt.Sprintf("%v=%d", e.Axis, e.Value)
}

// ConnectionEvent はデバイスの接続状態の変化
type ConnectionEvent struct {
	Connected  bool
	Identifier string
	Path       string
}

// Callbacks はゲームパッドのイベントを受け取る関数群。nilのものは呼ばれない
// すべてリーダーのゴルーチンから呼ばれる
type Callbacks struct {
	Button     func(ButtonEvent)
	Axis       func(AxisEvent)
	Connection func(ConnectionEvent)
}

// GamepadOptions はゲームパッドの動作設定
type GamepadOptions struct {
	// 購読するボタンイベントの種類。EventNoneならEventAll
	Subscribe EventType
	// trueならトリガーと方向パッドの軸をボタンとして扱う
	TreatAxisAsButtons bool
	// デバイス全体のデフォルトのボタン設定
	DefaultButtonSettings ButtonSettings
	// 最初から登録しておく通知先。読み取り開始直後のイベントも受け取れる
	Callbacks Callbacks
	// 基底のジョイスティックの設定（OnConnectionは上書きされる）
	Joystick JoystickOptions
	// 省略時は logger.Named("gamepad")
	Logger *zap.SugaredLogger
}

// Gamepad はジョイスティックのレコードを解釈し、クリック判定したイベントを通知する
// Joystick → Decoder → AxisMapper → Classifier → Callbacks の順に処理する
type Gamepad struct {
	path               string
	joystick           *Joystick
	settings           *SettingsStore
	classifier         *Classifier
	mapper             AxisMapper
	treatAxisAsButtons bool
	log                *zap.SugaredLogger

	mutex     sync.RWMutex
	callbacks Callbacks
}

// OpenGamepad はゲームパッドを開いて読み取りを開始する
func OpenGamepad(path string, opts GamepadOptions) *Gamepad {
	if path == "" {
		path = consts.DefaultJoystickDevice
	}
	g := newGamepad(opts)
	g.path = path
	jsOpts := opts.Joystick
	jsOpts.OnConnection = g.onConnection
	if jsOpts.Logger == nil {
		jsOpts.Logger = g.log
	}
	g.joystick = OpenJoystick(path, jsOpts, g.handler())
	return g
}

func newGamepad(opts GamepadOptions) *Gamepad {
	if opts.Subscribe == EventNone {
		opts.Subscribe = EventAll
	}
	if opts.Logger == nil {
		opts.Logger = logger.Named("gamepad")
	}
	g := &Gamepad{
		settings:           NewSettingsStore(opts.DefaultButtonSettings),
		treatAxisAsButtons: opts.TreatAxisAsButtons,
		log:                opts.Logger,
		callbacks:          opts.Callbacks,
	}
	g.classifier = NewClassifier(opts.Subscribe, g.settings, g.emitButton)
	return g
}

func (g *Gamepad) handler() Handler {
	return Handler{
		Configure: g.onConfigure,
		Button:    g.onButton,
		Axis:      g.onAxis,
	}
}

// Subscribe はイベントの通知先を設定する
func (g *Gamepad) Subscribe(callbacks Callbacks) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.callbacks = callbacks
}

// SetButtonSettings はボタンの設定を置き換える。次の判定から反映される
func (g *Gamepad) SetButtonSettings(button Button, settings ButtonSettings) {
	g.settings.Set(button, settings)
}

// ClearButtonSettings はボタンの設定を削除する
func (g *Gamepad) ClearButtonSettings(button Button) {
	g.settings.Clear(button)
}

// ClearAllButtonSettings はすべてのボタンの設定を削除する
func (g *Gamepad) ClearAllButtonSettings() {
	g.settings.ClearAll()
}

// SetDefaultButtonSettings はデバイス全体のデフォルト設定を置き換える
func (g *Gamepad) SetDefaultButtonSettings(settings ButtonSettings) {
	g.settings.SetDefaults(settings)
}

// ReplaceButtonSettings はデフォルト設定とボタンごとの設定をまとめて置き換える
func (g *Gamepad) ReplaceButtonSettings(defaults ButtonSettings, overrides map[Button]ButtonSettings) {
	g.settings.Replace(defaults, overrides)
}

// Thresholds はボタンの現在のしきい値を返す
func (g *Gamepad) Thresholds(button Button) Thresholds {
	return g.settings.Resolve(button)
}

// Joystick は基底のジョイスティック
func (g *Gamepad) Joystick() *Joystick {
	return g.joystick
}

// Close は読み取りを停止する
func (g *Gamepad) Close() error {
	if g.joystick == nil {
		return nil
	}
	return g.joystick.Close()
}

func (g *Gamepad) snapshot() Callbacks {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return g.callbacks
}

func (g *Gamepad) onConfigure(kind event.Kind, index uint8) {
	switch kind {
	case event.KindButton:
		g.classifier.Reset(Button(index))
	case event.KindAxis:
		if !g.treatAxisAsButtons {
			return
		}
		for _, b := range g.mapper.Buttons(Axis(index)) {
			g.classifier.Reset(b)
		}
	}
}

func (g *Gamepad) onButton(index uint8, pressed bool) {
	g.classifier.Transition(Button(index), pressed)
}

func (g *Gamepad) onAxis(index uint8, value int16) {
	axis := Axis(index)
	if g.treatAxisAsButtons {
		if transitions, ok := g.mapper.Map(axis, value); ok {
			for _, t := range transitions {
				g.classifier.Transition(t.Button, t.Pressed)
			}
			return
		}
	}
	if cb := g.snapshot().Axis; cb != nil {
		cb(AxisEvent{Axis: axis, Value: value})
	}
}

func (g *Gamepad) emitButton(ev ButtonEvent) {
	if cb := g.snapshot().Button; cb != nil {
		cb(ev)
	}
}

func (g *Gamepad) onConnection(connected bool, identifier string) {
	g.log.Infow("接続状態が変わりました", "connected", connected, "identifier", identifier)
	if cb := g.snapshot().Connection; cb != nil {
		cb(ConnectionEvent{Connected: connected, Identifier: identifier, Path: g.path})
	}
}
