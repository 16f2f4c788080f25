package features

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAxisMapperMap(t *testing.T) {
	tests := []struct {
		name   string
		axis   Axis
		value  int16
		want   []Transition
		mapped bool
	}{
		{"LT pressed", AxisLT, 32767, []Transition{{ButtonLT, true}}, true},
		{"LT released", AxisLT, -32767, []Transition{{ButtonLT, false}}, true},
		{"RT intermediate", AxisRT, 1200, nil, true},
		{"dpad left", AxisDPadLeftRight, -32767, []Transition{{ButtonDPadLeft, true}}, true},
		{"dpad right", AxisDPadLeftRight, 32767, []Transition{{ButtonDPadRight, true}}, true},
		{"dpad horizontal center", AxisDPadLeftRight, 0,
			[]Transition{{ButtonDPadLeft, false}, {ButtonDPadRight, false}}, true},
		{"dpad up", AxisDPadUpDown, -32767, []Transition{{ButtonDPadUp, true}}, true},
		{"dpad down", AxisDPadUpDown, 32767, []Transition{{ButtonDPadDown, true}}, true},
		{"dpad vertical center", AxisDPadUpDown, 0,
			[]Transition{{ButtonDPadUp, false}, {ButtonDPadDown, false}}, true},
		{"dpad intermediate", AxisDPadUpDown, 100, nil, true},
		{"stick not mapped", AxisLeftX, 32767, nil, false},
		{"unknown axis", Axis(12), 0, nil, false},
	}

	var m AxisMapper
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.Map(tt.axis, tt.value)
			if ok != tt.mapped {
				t.Fatalf("ok = %v, want %v", ok, tt.mapped)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("transitions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAxisMapperButtons(t *testing.T) {
	var m AxisMapper
	if diff := cmp.Diff([]Button{ButtonDPadLeft, ButtonDPadRight}, m.Buttons(AxisDPadLeftRight)); diff != "" {
		t.Errorf("Buttons mismatch (-want +got):\n%s", diff)
	}
	if got := m.Buttons(AxisRightY); got != nil {
		t.Errorf("Buttons(RightY) = %v, want nil", got)
	}
}
