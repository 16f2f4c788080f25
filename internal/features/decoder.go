package features

import (
	"errors"
	"fmt"

	"github.com/char5742/gamehaven/internal/consts"
	"github.com/char5742/gamehaven/internal/event"
)

// デコード時のエラー
var (
	// ErrUnconfigured は設定レコードを受け取っていない番号への値レコード
	ErrUnconfigured = errors.New("value record for unconfigured index")
	// ErrAxisRange は範囲外の軸の値
	ErrAxisRange = errors.New("axis value out of range")
	// ErrUnknownRecord はボタンでも軸でもないレコード
	ErrUnknownRecord = errors.New("unknown record type")
)

// Handler はデコードしたイベントを受け取る関数群。nilのものは呼ばれない
type Handler struct {
	// 設定レコードでボタンまたは軸が登録（リセット）されたとき
	Configure func(kind event.Kind, index uint8)
	// ボタンの値レコード
	Button func(index uint8, pressed bool)
	// 軸の値レコード
	Axis func(index uint8, value int16)
}

// Decoder はレコードを解釈して番号ごとの状態を保持する
// 状態はリーダーのゴルーチンだけが触るのでロックしない
type Decoder struct {
	// trueなら値が変わらないレコードを捨てる
	SuppressDuplicates bool

	handler Handler
	buttons map[uint8]bool
	axes    map[uint8]int16
}

// NewDecoder は新しいデコーダを作成する
func NewDecoder(handler Handler) *Decoder {
	return &Decoder{
		handler: handler,
		buttons: make(map[uint8]bool),
		axes:    make(map[uint8]int16),
	}
}

// Decode はレコードを1つ処理する
func (d *Decoder) Decode(rec event.Record) error {
	kind := rec.Kind()
	if kind == event.KindUnknown {
		return fmt.Errorf("%w: type=%#x", ErrUnknownRecord, rec.Type)
	}
	// 設定レコードの値は使わないので範囲も確認しない
	if rec.IsConfiguration() {
		d.configure(kind, rec.Index())
		return nil
	}

	if kind == event.KindAxis && (rec.Value < consts.AxisNegativeMax || rec.Value > consts.AxisPositiveMax) {
		return fmt.Errorf("%w: axis %d value %d", ErrAxisRange, rec.Index(), rec.Value)
	}

	index := rec.Index()
	switch kind {
	case event.KindButton:
		old, ok := d.buttons[index]
		if !ok {
			return fmt.Errorf("%w: button %d", ErrUnconfigured, index)
		}
		pressed := rec.Pressed()
		if d.SuppressDuplicates && old == pressed {
			return nil
		}
		// 状態の更新はコールバックの後。コールバックから以前の状態を参照できるようにする
		if d.handler.Button != nil {
			d.handler.Button(index, pressed)
		}
		d.buttons[index] = pressed

	case event.KindAxis:
		old, ok := d.axes[index]
		if !ok {
			return fmt.Errorf("%w: axis %d", ErrUnconfigured, index)
		}
		if d.SuppressDuplicates && old == rec.Value {
			return nil
		}
		if d.handler.Axis != nil {
			d.handler.Axis(index, rec.Value)
		}
		d.axes[index] = rec.Value
	}
	return nil
}

func (d *Decoder) configure(kind event.Kind, index uint8) {
	switch kind {
	case event.KindButton:
		d.buttons[index] = false
	case event.KindAxis:
		d.axes[index] = 0
	}
	if d.handler.Configure != nil {
		d.handler.Configure(kind, index)
	}
}

// IsPressed はボタンの現在の状態を返す。未登録ならokはfalse
// デコーダを所有するゴルーチン（コールバック内）からのみ呼び出すこと
func (d *Decoder) IsPressed(index uint8) (pressed, ok bool) {
	pressed, ok = d.buttons[index]
	return pressed, ok
}

// AxisValue は軸の現在の値を返す。未登録ならokはfalse
func (d *Decoder) AxisValue(index uint8) (value int16, ok bool) {
	value, ok = d.axes[index]
	return value, ok
}
