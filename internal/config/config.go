package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/char5742/gamehaven/internal/consts"
	"github.com/char5742/gamehaven/internal/features"
)

// Config はアプリケーション全体の設定を表す構造体
type Config struct {
	Joystick JoystickConfig `toml:"joystick"`
	Buttons  ButtonsConfig  `toml:"buttons"`
	Display  DisplayConfig  `toml:"display"`
	Log      LogConfig      `toml:"log"`
}

// JoystickConfig はジョイスティックの設定
type JoystickConfig struct {
	Device             string        `toml:"device"`
	RetryInterval      time.Duration `toml:"retry_interval"`
	SuppressDuplicates bool          `toml:"suppress_duplicates"`
	TreatAxisAsButtons bool          `toml:"treat_axis_as_buttons"`
	// 購読するイベントの種類 ("press", "release", "short_click", "long_click", "all")
	Subscribe []string `toml:"subscribe"`
}

// ButtonsConfig はボタンのクリック判定の設定
type ButtonsConfig struct {
	Default features.ButtonSettings `toml:"default"`
	// ボタン名（"A", "DPadLeft" など）ごとの上書き設定
	Overrides map[string]features.ButtonSettings `toml:"overrides"`
}

// DisplayConfig はフレームバッファの設定
type DisplayConfig struct {
	// 空なら番号が最も大きい /dev/fb? を使う
	Device        string        `toml:"device"`
	Width         int           `toml:"width"`
	Height        int           `toml:"height"`
	BitsPerPixel  int           `toml:"bits_per_pixel"`
	FrameInterval time.Duration `toml:"frame_interval"`
}

// LogConfig はログの設定
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *Config {
	return &Config{
		Joystick: JoystickConfig{
			Device:             consts.DefaultJoystickDevice,
			RetryInterval:      features.DefaultRetryInterval,
			SuppressDuplicates: false,
			TreatAxisAsButtons: true,
			Subscribe:          []string{"all"},
		},
		Buttons: ButtonsConfig{
			Default: features.ButtonSettings{
				HoldIntervalMs:  features.Ms(100),
				LongClickMinMs:  features.Ms(1000),
				ShortClickMinMs: features.Ms(0),
			},
			Overrides: map[string]features.ButtonSettings{},
		},
		Display: DisplayConfig{
			Device:        "",
			Width:         features.DefaultGeometry.Width,
			Height:        features.DefaultGeometry.Height,
			BitsPerPixel:  features.DefaultGeometry.BitsPerPixel,
			FrameInterval: features.DefaultFrameInterval,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// GetDefaultConfigDir はデフォルトの設定ディレクトリを返す
func GetDefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gamehaven"), nil
}

// LoadConfig は設定ファイルから設定を読み込む
func LoadConfig(configPath string) (*Config, error) {
	// デフォルト設定を用意
	config := DefaultConfig()

	// ファイルが存在しない場合はデフォルト設定を保存して返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveConfig(configPath, config); err != nil {
			return config, err
		}
		return config, nil
	}

	// 設定ファイルの読み込み
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return config, err
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// SaveConfig は設定をTOMLファイルに保存する
func SaveConfig(configPath string, config *Config) error {
	// 設定ディレクトリの作成
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// ファイルを開く（なければ作成）
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// TOML形式でエンコードして書き込み
	encoder := toml.NewEncoder(f)
	return encoder.Encode(config)
}

// Validate はボタン名やイベント名が解釈できるかを確認する
func (c *Config) Validate() error {
	if _, err := c.SubscribedEvents(); err != nil {
		return err
	}
	if _, err := c.ButtonOverrides(); err != nil {
		return err
	}
	if c.Display.BitsPerPixel < 0 || c.Display.BitsPerPixel > 32 {
		return fmt.Errorf("bits_per_pixel out of range: %d", c.Display.BitsPerPixel)
	}
	return nil
}

// SubscribedEvents は購読するイベントの種類を返す
func (c *Config) SubscribedEvents() (features.EventType, error) {
	return features.ParseEventTypes(c.Joystick.Subscribe)
}

// ButtonOverrides はボタンごとの上書き設定をボタン型のキーで返す
func (c *Config) ButtonOverrides() (map[features.Button]features.ButtonSettings, error) {
	overrides := make(map[features.Button]features.ButtonSettings, len(c.Buttons.Overrides))
	for name, settings := range c.Buttons.Overrides {
		button, err := features.ParseButton(name)
		if err != nil {
			return nil, fmt.Errorf("buttons.overrides: %w", err)
		}
		overrides[button] = settings
	}
	return overrides, nil
}

// Geometry は問い合わせ失敗時に使うディスプレイの解像度
func (c *Config) Geometry() features.Geometry {
	g := features.DefaultGeometry
	if c.Display.Width > 0 && c.Display.Height > 0 && c.Display.BitsPerPixel > 0 {
		g.Width = c.Display.Width
		g.Height = c.Display.Height
		g.BitsPerPixel = c.Display.BitsPerPixel
	}
	return g
}
