package features

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestButtonSettingsMerge(t *testing.T) {
	s := ButtonSettings{ShortClickMinMs: Ms(0), LongClickMinMs: Ms(1000)}
	s.Merge(&ButtonSettings{LongClickMinMs: Ms(500)})

	want := ButtonSettings{ShortClickMinMs: Ms(0), LongClickMinMs: Ms(500)}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}

	s.Merge(nil)
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("Merge(nil) changed settings (-want +got):\n%s", diff)
	}
}

func TestButtonSettingsCloneDoesNotShare(t *testing.T) {
	orig := ButtonSettings{LongClickMinMs: Ms(700)}
	clone := orig.Clone()
	*clone.LongClickMinMs = 1

	if *orig.LongClickMinMs != 700 {
		t.Errorf("clone shares pointer with its source")
	}
}

func TestSettingsStoreResolve(t *testing.T) {
	store := NewSettingsStore(ButtonSettings{LongClickMinMs: Ms(800)})
	store.Set(ButtonA, ButtonSettings{ShortClickMinMs: Ms(30)})

	tests := []struct {
		name   string
		button Button
		want   Thresholds
	}{
		{
			name:   "per-button then defaults then constants",
			button: ButtonA,
			want: Thresholds{
				HoldInterval:  DefaultHoldInterval,
				LongClickMin:  800 * time.Millisecond,
				ShortClickMin: 30 * time.Millisecond,
			},
		},
		{
			name:   "defaults only",
			button: ButtonB,
			want: Thresholds{
				HoldInterval:  DefaultHoldInterval,
				LongClickMin:  800 * time.Millisecond,
				ShortClickMin: DefaultShortClickMin,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, store.Resolve(tt.button)); diff != "" {
				t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSettingsStoreClear(t *testing.T) {
	store := NewSettingsStore(ButtonSettings{})
	store.Set(ButtonA, ButtonSettings{LongClickMinMs: Ms(10)})
	store.Set(ButtonB, ButtonSettings{LongClickMinMs: Ms(20)})

	store.Clear(ButtonA)
	if _, ok := store.Get(ButtonA); ok {
		t.Errorf("ButtonA should be cleared")
	}
	if got := store.Resolve(ButtonA).LongClickMin; got != DefaultLongClickMin {
		t.Errorf("cleared button LongClickMin = %v, want %v", got, DefaultLongClickMin)
	}
	if _, ok := store.Get(ButtonB); !ok {
		t.Errorf("ButtonB should remain")
	}

	store.ClearAll()
	if _, ok := store.Get(ButtonB); ok {
		t.Errorf("ButtonB should be cleared by ClearAll")
	}
}

func TestSettingsStoreSetDefaults(t *testing.T) {
	store := NewSettingsStore(ButtonSettings{})
	store.SetDefaults(ButtonSettings{HoldIntervalMs: Ms(250), ShortClickMaxMs: Ms(400)})

	got := store.Resolve(ButtonGuide)
	if got.HoldInterval != 250*time.Millisecond || got.ShortClickMax != 400*time.Millisecond {
		t.Errorf("Resolve after SetDefaults = %+v", got)
	}
}

func TestSettingsStoreReplace(t *testing.T) {
	store := NewSettingsStore(ButtonSettings{LongClickMinMs: Ms(1000)})
	store.Set(ButtonA, ButtonSettings{LongClickMinMs: Ms(10)})

	overrides := map[Button]ButtonSettings{ButtonB: {ShortClickMinMs: Ms(40)}}
	store.Replace(ButtonSettings{LongClickMinMs: Ms(600)}, overrides)

	if _, ok := store.Get(ButtonA); ok {
		t.Errorf("ButtonA should be removed by Replace")
	}
	want := Thresholds{
		HoldInterval:  DefaultHoldInterval,
		LongClickMin:  600 * time.Millisecond,
		ShortClickMin: 40 * time.Millisecond,
	}
	if diff := cmp.Diff(want, store.Resolve(ButtonB)); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}

	// 渡したマップを後から変更しても影響しない
	*overrides[ButtonB].ShortClickMinMs = 1
	delete(overrides, ButtonB)
	if got := store.Resolve(ButtonB).ShortClickMin; got != 40*time.Millisecond {
		t.Errorf("ShortClickMin = %v after mutating the caller's map", got)
	}
}
