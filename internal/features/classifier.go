package features

import (
	"fmt"
	"time"
)

// ButtonEvent はクリック判定後のボタンイベント
type ButtonEvent struct {
	Button Button
	Type   EventType
	// 直前の状態変化からの経過時間
	Elapsed time.Duration
}

func (e ButtonEvent) String() string {
	return fmt.Sprintf("%v %v (%v)", e.Button, e.Type, e.Elapsed)
}

type buttonState struct {
	pressed        bool
	lastTransition time.Time
}

// Classifier はボタンの押下・解放からプレス、リリース、ショートクリック、ロングクリックを判定する
// リーダーのゴルーチンだけが呼び出す前提でロックしない（設定の参照はSettingsStore側で保護される）
type Classifier struct {
	subscribed EventType
	settings   *SettingsStore
	emit       func(ButtonEvent)
	states     map[Button]*buttonState
	now        func() time.Time
}

// NewClassifier は新しい判定器を作成する
// subscribedに含まれない種類のイベントは発生させない
func NewClassifier(subscribed EventType, settings *SettingsStore, emit func(ButtonEvent)) *Classifier {
	return &Classifier{
		subscribed: subscribed,
		settings:   settings,
		emit:       emit,
		states:     make(map[Button]*buttonState),
		now:        time.Now,
	}
}

// Reset はボタンを解放状態として登録し直す。イベントは発生しない
func (c *Classifier) Reset(button Button) {
	c.states[button] = &buttonState{lastTransition: c.now()}
}

// Transition はボタンの押下状態を与えて判定する
func (c *Classifier) Transition(button Button, pressed bool) {
	state, ok := c.states[button]
	if !ok {
		// 設定レコードを経由しない合成ボタンは最初の変化で登録する
		state = &buttonState{lastTransition: c.now()}
		c.states[button] = state
	}

	// 同じ状態の再通知は新しい情報ではないので、時刻も更新しない
	if state.pressed == pressed {
		return
	}

	now := c.now()
	elapsed := now.Sub(state.lastTransition)
	state.lastTransition = now
	state.pressed = pressed

	if pressed {
		c.fire(button, EventPress, elapsed)
		return
	}

	c.fire(button, EventRelease, elapsed)

	t := c.settings.Resolve(button)
	switch {
	case elapsed >= t.LongClickMin:
		c.fire(button, EventLongClick, elapsed)
	case elapsed >= t.ShortClickMin:
		c.fire(button, EventShortClick, elapsed)
	}
}

// Pressed はボタンが押されているかを返す
func (c *Classifier) Pressed(button Button) bool {
	state, ok := c.states[button]
	return ok && state.pressed
}

func (c *Classifier) fire(button Button, t EventType, elapsed time.Duration) {
	if !c.subscribed.Has(t) || c.emit == nil {
		return
	}
	c.emit(ButtonEvent{Button: button, Type: t, Elapsed: elapsed})
}
