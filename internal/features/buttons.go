package features

import (
	"fmt"
	"strings"
)

// Button はゲームパッドのボタンを表す
// 物理ボタンはデバイスの番号そのまま、軸から合成したボタンはsyntheticButtonBase以降の番号を使う
type Button uint8

const (
	ButtonA     Button = 0x00
	ButtonB     Button = 0x01
	ButtonX     Button = 0x02
	ButtonY     Button = 0x03
	ButtonLB    Button = 0x04
	ButtonRB    Button = 0x05
	ButtonView  Button = 0x06
	ButtonMenu  Button = 0x07
	ButtonGuide Button = 0x08
	ButtonL     Button = 0x09 // 左スティック押し込み
	ButtonR     Button = 0x0a // 右スティック押し込み

	syntheticButtonBase Button = 0xa0

	// 以下は軸をボタンとして扱う場合のみ発生する
	ButtonLT        Button = syntheticButtonBase + 3
	ButtonRT        Button = syntheticButtonBase + 4
	ButtonDPadLeft  Button = syntheticButtonBase + 5
	ButtonDPadRight Button = syntheticButtonBase + 6
	ButtonDPadUp    Button = syntheticButtonBase + 7
	ButtonDPadDown  Button = syntheticButtonBase + 8
)

var buttonNames = map[Button]string{
	ButtonA:         "A",
	ButtonB:         "B",
	ButtonX:         "X",
	ButtonY:         "Y",
	ButtonLB:        "LB",
	ButtonRB:        "RB",
	ButtonView:      "View",
	ButtonMenu:      "Menu",
	ButtonGuide:     "Guide",
	ButtonL:         "L",
	ButtonR:         "R",
	ButtonLT:        "LT",
	ButtonRT:        "RT",
	ButtonDPadLeft:  "DPadLeft",
	ButtonDPadRight: "DPadRight",
	ButtonDPadUp:    "DPadUp",
	ButtonDPadDown:  "DPadDown",
}

func (b Button) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// Known は名前のあるボタンかどうかを返す
func (b Button) Known() bool {
	_, ok := buttonNames[b]
	return ok
}

// Synthetic は軸から合成されたボタンかどうかを返す
func (b Button) Synthetic() bool {
	return b >= syntheticButtonBase
}

// ParseButton はボタン名（大文字小文字を区別しない）からボタンを求める
func ParseButton(name string) (Button, error) {
	for b, n := range buttonNames {
		if strings.EqualFold(n, name) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown button name %q", name)
}

// Axis はゲームパッドの軸を表す
type Axis uint8

const (
	AxisLeftX         Axis = 0x00
	AxisLeftY         Axis = 0x01
	AxisLT            Axis = 0x02
	AxisRightX        Axis = 0x03
	AxisRightY        Axis = 0x04
	AxisRT            Axis = 0x05
	AxisDPadLeftRight Axis = 0x06 // 負 = 左, 正 = 右
	AxisDPadUpDown    Axis = 0x07 // 負 = 上, 正 = 下
)

var axisNames = map[Axis]string{
	AxisLeftX:         "LeftX",
	AxisLeftY:         "LeftY",
	AxisLT:            "LT",
	AxisRightX:        "RightX",
	AxisRightY:        "RightY",
	AxisRT:            "RT",
	AxisDPadLeftRight: "DPadLeftRight",
	AxisDPadUpDown:    "DPadUpDown",
}

func (a Axis) String() string {
	if name, ok := axisNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// EventType はボタンイベントの種類。購読する種類の指定にも使うビットフラグ
type EventType uint8

const (
	EventNone       EventType = 0x00
	EventPress      EventType = 0x01
	EventRelease    EventType = 0x02
	EventHold       EventType = 0x04 // 予約済み。現在は発生しない
	EventLongClick  EventType = 0x10
	EventShortClick EventType = 0x80
	EventAll        EventType = 0xff
)

var eventTypeNames = []struct {
	t    EventType
	name string
}{
	{EventPress, "press"},
	{EventRelease, "release"},
	{EventHold, "hold"},
	{EventLongClick, "long_click"},
	{EventShortClick, "short_click"},
}

func (t EventType) String() string {
	switch t {
	case EventNone:
		return "none"
	case EventAll:
		return "all"
	}
	var names []string
	for _, e := range eventTypeNames {
		if t&e.t != 0 {
			names = append(names, e.name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("EventType(%#x)", uint8(t))
	}
	return strings.Join(names, "|")
}

// Has はtにeのいずれかのビットが含まれるかを返す
func (t EventType) Has(e EventType) bool {
	return t&e != EventNone
}

// ParseEventTypes はイベント名の一覧をビットフラグにまとめる
func ParseEventTypes(names []string) (EventType, error) {
	var t EventType
	for _, name := range names {
		switch strings.ToLower(name) {
		case "all":
			t |= EventAll
			continue
		case "none":
			continue
		}
		found := false
		for _, e := range eventTypeNames {
			if e.name == strings.ToLower(name) {
				t |= e.t
				found = true
				break
			}
		}
		if !found {
			return EventNone, fmt.Errorf("unknown event type %q", name)
		}
	}
	return t, nil
}
