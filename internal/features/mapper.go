package features

import "github.com/char5742/gamehaven/internal/consts"

// Transition はボタンの押下状態の変化
type Transition struct {
	Button  Button
	Pressed bool
}

// AxisMapper は特定の軸の端の値を合成ボタンの押下・解放に変換する
// デジタルな方向パッドとトリガーは端の値（と中央）しか報告しないため、それ以外の値は無視する
type AxisMapper struct{}

// Buttons は軸から合成されるボタンの一覧を返す
func (AxisMapper) Buttons(axis Axis) []Button {
	switch axis {
	case AxisLT:
		return []Button{ButtonLT}
	case AxisRT:
		return []Button{ButtonRT}
	case AxisDPadLeftRight:
		return []Button{ButtonDPadLeft, ButtonDPadRight}
	case AxisDPadUpDown:
		return []Button{ButtonDPadUp, ButtonDPadDown}
	}
	return nil
}

// Map は軸の値をボタンの変化に変換する
// 変換対象でない軸ならokはfalse
func (m AxisMapper) Map(axis Axis, value int16) (transitions []Transition, ok bool) {
	switch axis {
	case AxisLT, AxisRT:
		button := m.Buttons(axis)[0]
		switch value {
		case consts.AxisNegativeMax:
			return []Transition{{button, false}}, true
		case consts.AxisPositiveMax:
			return []Transition{{button, true}}, true
		}
		return nil, true

	case AxisDPadLeftRight, AxisDPadUpDown:
		buttons := m.Buttons(axis)
		negative, positive := buttons[0], buttons[1]
		switch value {
		case 0:
			// 中央に戻ったら両方を解放する
			return []Transition{{negative, false}, {positive, false}}, true
		case consts.AxisNegativeMax:
			return []Transition{{negative, true}}, true
		case consts.AxisPositiveMax:
			return []Transition{{positive, true}}, true
		}
		return nil, true
	}
	return nil, false
}
