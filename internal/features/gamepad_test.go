package features

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap/zaptest"

	"github.com/char5742/gamehaven/internal/event"
)

type gamepadRecorder struct {
	buttons []ButtonEvent
	axes    []AxisEvent
}

func newTestGamepad(t *testing.T, treatAxisAsButtons bool) (*Gamepad, *Decoder, *gamepadRecorder) {
	g := newGamepad(GamepadOptions{
		Subscribe:          EventPress | EventRelease,
		TreatAxisAsButtons: treatAxisAsButtons,
		Logger:             zaptest.NewLogger(t).Sugar(),
	})
	rec := &gamepadRecorder{}
	g.Subscribe(Callbacks{
		Button: func(ev ButtonEvent) { rec.buttons = append(rec.buttons, ev) },
		Axis:   func(ev AxisEvent) { rec.axes = append(rec.axes, ev) },
	})
	return g, NewDecoder(g.handler()), rec
}

func decodeAll(t *testing.T, d *Decoder, records ...event.Record) {
	t.Helper()
	for _, r := range records {
		if err := d.Decode(r); err != nil {
			t.Fatalf("Decode(%v): %v", r, err)
		}
	}
}

var ignoreElapsed = cmpopts.IgnoreFields(ButtonEvent{}, "Elapsed")

func TestGamepadButtons(t *testing.T) {
	g, d, rec := newTestGamepad(t, true)
	defer g.Close()

	decodeAll(t, d,
		record(0x81, uint8(ButtonA), 0),
		record(0x01, uint8(ButtonA), 1),
		record(0x01, uint8(ButtonA), 0),
	)

	want := []ButtonEvent{
		{Button: ButtonA, Type: EventPress},
		{Button: ButtonA, Type: EventRelease},
	}
	if diff := cmp.Diff(want, rec.buttons, ignoreElapsed); diff != "" {
		t.Errorf("button events mismatch (-want +got):\n%s", diff)
	}
}

func TestGamepadAxisAsButtons(t *testing.T) {
	_, d, rec := newTestGamepad(t, true)

	decodeAll(t, d,
		record(0x82, uint8(AxisDPadLeftRight), 0),
		record(0x82, uint8(AxisLeftX), 0),
		record(0x02, uint8(AxisDPadLeftRight), -32767),
		record(0x02, uint8(AxisDPadLeftRight), 0),
		record(0x02, uint8(AxisLeftX), 1200),
	)

	want := []ButtonEvent{
		{Button: ButtonDPadLeft, Type: EventPress},
		{Button: ButtonDPadLeft, Type: EventRelease},
	}
	if diff := cmp.Diff(want, rec.buttons, ignoreElapsed); diff != "" {
		t.Errorf("button events mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]AxisEvent{{Axis: AxisLeftX, Value: 1200}}, rec.axes); diff != "" {
		t.Errorf("axis events mismatch (-want +got):\n%s", diff)
	}
}

func TestGamepadAxisForwardedWhenNotTreatedAsButtons(t *testing.T) {
	_, d, rec := newTestGamepad(t, false)

	decodeAll(t, d,
		record(0x82, uint8(AxisRT), 0),
		record(0x02, uint8(AxisRT), 32767),
	)

	if len(rec.buttons) != 0 {
		t.Errorf("unexpected button events: %v", rec.buttons)
	}
	if diff := cmp.Diff([]AxisEvent{{Axis: AxisRT, Value: 32767}}, rec.axes); diff != "" {
		t.Errorf("axis events mismatch (-want +got):\n%s", diff)
	}
}

func TestGamepadSettingsAPI(t *testing.T) {
	g, _, _ := newTestGamepad(t, true)

	g.SetDefaultButtonSettings(ButtonSettings{LongClickMinMs: Ms(600)})
	g.SetButtonSettings(ButtonLT, ButtonSettings{LongClickMinMs: Ms(300)})

	if got := g.Thresholds(ButtonLT).LongClickMin; got != 300*time.Millisecond {
		t.Errorf("LT LongClickMin = %v", got)
	}
	if got := g.Thresholds(ButtonA).LongClickMin; got != 600*time.Millisecond {
		t.Errorf("A LongClickMin = %v", got)
	}

	g.ClearButtonSettings(ButtonLT)
	if got := g.Thresholds(ButtonLT).LongClickMin; got != 600*time.Millisecond {
		t.Errorf("LT LongClickMin after clear = %v", got)
	}

	g.SetButtonSettings(ButtonB, ButtonSettings{ShortClickMinMs: Ms(20)})
	g.ClearAllButtonSettings()
	if got := g.Thresholds(ButtonB).ShortClickMin; got != 0 {
		t.Errorf("B ShortClickMin after ClearAll = %v", got)
	}
}

func TestGamepadConnectionCallback(t *testing.T) {
	g, _, _ := newTestGamepad(t, true)
	g.path = "/dev/input/js9"

	var got []ConnectionEvent
	g.Subscribe(Callbacks{Connection: func(ev ConnectionEvent) { got = append(got, ev) }})
	g.onConnection(true, "Test Pad")
	g.onConnection(false, "Test Pad")

	want := []ConnectionEvent{
		{Connected: true, Identifier: "Test Pad", Path: "/dev/input/js9"},
		{Connected: false, Identifier: "Test Pad", Path: "/dev/input/js9"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("connection events mismatch (-want +got):\n%s", diff)
	}
}

func TestGamepadCallbacksFromOptions(t *testing.T) {
	var got []ConnectionEvent
	g := newGamepad(GamepadOptions{
		Callbacks: Callbacks{Connection: func(ev ConnectionEvent) { got = append(got, ev) }},
		Logger:    zaptest.NewLogger(t).Sugar(),
	})
	g.path = "/dev/input/js0"

	// Subscribeを呼ぶ前の最初の接続も通知される
	g.onConnection(true, "Pad")

	want := []ConnectionEvent{{Connected: true, Identifier: "Pad", Path: "/dev/input/js0"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("connection events mismatch (-want +got):\n%s", diff)
	}
}

func TestGamepadReplaceButtonSettings(t *testing.T) {
	g, _, _ := newTestGamepad(t, true)
	g.SetButtonSettings(ButtonX, ButtonSettings{LongClickMinMs: Ms(50)})

	g.ReplaceButtonSettings(ButtonSettings{LongClickMinMs: Ms(900)}, map[Button]ButtonSettings{
		ButtonY: {LongClickMinMs: Ms(250)},
	})

	if got := g.Thresholds(ButtonX).LongClickMin; got != 900*time.Millisecond {
		t.Errorf("X LongClickMin = %v, want the new default", got)
	}
	if got := g.Thresholds(ButtonY).LongClickMin; got != 250*time.Millisecond {
		t.Errorf("Y LongClickMin = %v", got)
	}
}
