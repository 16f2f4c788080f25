package event

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/char5742/gamehaven/internal/consts"
	"github.com/char5742/gamehaven/internal/types"
)

// js_event内の各フィールドのオフセット
const (
	timeOffset   = 0
	valueOffset  = 4
	typeOffset   = 6
	numberOffset = 7
)

// ErrShortRecord はレコードが8バイトに満たない場合に返される
var ErrShortRecord = errors.New("short joystick record")

// Kind はレコードが対象とする入力の種類
type Kind int

const (
	KindUnknown Kind = iota
	KindButton
	KindAxis
)

func (k Kind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindAxis:
		return "axis"
	default:
		return "unknown"
	}
}

// Record はデバイスから読み取った1レコード
type Record struct {
	types.JsEvent
}

// Parse は8バイトのバッファをレコードに変換する
func Parse(buf []byte) (Record, error) {
	if len(buf) < consts.JsEventSize {
		return Record{}, fmt.Errorf("%w: %d bytes", ErrShortRecord, len(buf))
	}
	return Record{types.JsEvent{
		Time:   binary.LittleEndian.Uint32(buf[timeOffset:]),
		Value:  int16(binary.LittleEndian.Uint16(buf[valueOffset:])),
		Type:   buf[typeOffset],
		Number: buf[numberOffset],
	}}, nil
}

// Bytes はレコードをデバイスと同じ8バイト表現に変換する
func (r Record) Bytes() []byte {
	buf := make([]byte, consts.JsEventSize)
	binary.LittleEndian.PutUint32(buf[timeOffset:], r.Time)
	binary.LittleEndian.PutUint16(buf[valueOffset:], uint16(r.Value))
	buf[typeOffset] = r.Type
	buf[numberOffset] = r.Number
	return buf
}

// IsConfiguration は設定レコード（初期状態の通知）かどうかを返す
func (r Record) IsConfiguration() bool {
	return r.Type&consts.JsEventInit != 0
}

// Kind はボタンか軸かを返す
func (r Record) Kind() Kind {
	switch r.Type &^ consts.JsEventInit {
	case consts.JsEventButton:
		return KindButton
	case consts.JsEventAxis:
		return KindAxis
	default:
		return KindUnknown
	}
}

// Index はボタンまたは軸の番号
func (r Record) Index() uint8 {
	return r.Number
}

// Pressed はボタンレコードの押下状態
func (r Record) Pressed() bool {
	return r.Value&0xff == 0x01
}

func (r Record) String() string {
	cfg := ""
	if r.IsConfiguration() {
		cfg = " (config)"
	}
	return fmt.Sprintf("%v(%d)=%d%s", r.Kind(), r.Number, r.Value, cfg)
}
