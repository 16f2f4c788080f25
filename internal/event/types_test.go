package event

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/char5742/gamehaven/internal/types"
)

func TestParse(t *testing.T) {
	// time=0x01020304, value=-1, type=axis, number=3
	buf := []byte{0x04, 0x03, 0x02, 0x01, 0xff, 0xff, 0x02, 0x03}

	rec, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Record{types.JsEvent{Time: 0x01020304, Value: -1, Type: 0x02, Number: 3}}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(buf, rec.Bytes()); diff != "" {
		t.Errorf("Bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseShortRecord(t *testing.T) {
	_, err := Parse(make([]byte, 7))
	if !errors.Is(err, ErrShortRecord) {
		t.Fatalf("expected ErrShortRecord, got %v", err)
	}
}

func TestRecordKind(t *testing.T) {
	tests := []struct {
		typ    uint8
		kind   Kind
		config bool
	}{
		{0x01, KindButton, false},
		{0x02, KindAxis, false},
		{0x81, KindButton, true},
		{0x82, KindAxis, true},
		{0x80, KindUnknown, true},
		{0x04, KindUnknown, false},
	}
	for _, tt := range tests {
		rec := Record{types.JsEvent{Type: tt.typ}}
		if got := rec.Kind(); got != tt.kind {
			t.Errorf("type %#x: Kind() = %v, want %v", tt.typ, got, tt.kind)
		}
		if got := rec.IsConfiguration(); got != tt.config {
			t.Errorf("type %#x: IsConfiguration() = %v, want %v", tt.typ, got, tt.config)
		}
	}
}

func TestRecordPressed(t *testing.T) {
	tests := []struct {
		value   int16
		pressed bool
	}{
		{0, false},
		{1, true},
		// 下位バイトだけを見る
		{0x0101, true},
		{0x0100, false},
		{2, false},
	}
	for _, tt := range tests {
		rec := Record{types.JsEvent{Type: 0x01, Value: tt.value}}
		if got := rec.Pressed(); got != tt.pressed {
			t.Errorf("value %#x: Pressed() = %v, want %v", tt.value, got, tt.pressed)
		}
	}
}

func TestRecordString(t *testing.T) {
	rec := Record{types.JsEvent{Type: 0x82, Number: 6, Value: 0}}
	if got, want := rec.String(), "axis(6)=0 (config)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
