package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/char5742/gamehaven/internal/config"
	"github.com/char5742/gamehaven/internal/features"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Joystick.Device = filepath.Join(dir, "js0")
	cfg.Joystick.RetryInterval = 10 * time.Millisecond
	cfg.Display.Device = filepath.Join(dir, "fb0")
	return cfg
}

func TestEngineStartStop(t *testing.T) {
	e := New(testConfig(t))
	if err := e.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Stop before Start = %v, want ErrNotRunning", err)
	}

	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !e.IsRunning() {
		t.Fatal("engine should be running")
	}
	if err := e.Start(context.Background()); err == nil {
		t.Error("second Start should fail")
	}
	if e.Gamepad() == nil || e.Display() == nil {
		t.Fatal("gamepad and display should be available")
	}
	if err := e.Display().Clear(); err != nil {
		t.Errorf("Clear: %v", err)
	}

	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if e.IsRunning() {
		t.Error("engine should be stopped")
	}
	if err := e.Display().Clear(); !errors.Is(err, features.ErrClosed) {
		t.Errorf("Clear after Stop = %v, want ErrClosed", err)
	}
}

func TestEngineStopsWithContext(t *testing.T) {
	e := New(testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	if err := e.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case <-e.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after context cancel")
	}
	if e.IsRunning() {
		t.Error("engine should not be running")
	}
}

func TestEngineUpdateConfig(t *testing.T) {
	cfg := testConfig(t)
	e := New(cfg)
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer e.Stop()

	updated := *cfg
	updated.Buttons = config.ButtonsConfig{
		Default: features.ButtonSettings{LongClickMinMs: features.Ms(400)},
		Overrides: map[string]features.ButtonSettings{
			"A": {LongClickMinMs: features.Ms(150)},
		},
	}
	if err := e.UpdateConfig(&updated); err != nil {
		t.Fatal(err)
	}

	g := e.Gamepad()
	if got := g.Thresholds(features.ButtonA).LongClickMin; got != 150*time.Millisecond {
		t.Errorf("A LongClickMin = %v", got)
	}
	if got := g.Thresholds(features.ButtonB).LongClickMin; got != 400*time.Millisecond {
		t.Errorf("B LongClickMin = %v", got)
	}

	updated.Buttons.Overrides = map[string]features.ButtonSettings{"Start": {}}
	if err := e.UpdateConfig(&updated); err == nil {
		t.Error("expected error for unknown button name")
	}
}
