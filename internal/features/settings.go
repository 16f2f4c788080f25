package features

import (
	"sync"
	"time"
)

// 設定が一切ない場合に使う値
const (
	DefaultHoldInterval  = 100 * time.Millisecond
	DefaultLongClickMin  = 1000 * time.Millisecond
	DefaultShortClickMin = 0
)

// ButtonSettings はボタンごとのクリック判定設定
// nilのフィールドは未設定を表し、デバイス全体のデフォルト、定数の順に解決される
type ButtonSettings struct {
	// 押し続けている間にホールドイベントを発生させる間隔（予約済み）
	HoldIntervalMs *int `toml:"hold_interval_ms,omitempty" json:"hold_interval_ms,omitempty"`
	// 離したときにロングクリックとなる最小の押下時間
	LongClickMinMs  *int `toml:"long_click_min_ms,omitempty" json:"long_click_min_ms,omitempty"`
	ShortClickMinMs *int `toml:"short_click_min_ms,omitempty" json:"short_click_min_ms,omitempty"`
	// ショートクリックの最大押下時間（予約済み）
	ShortClickMaxMs *int `toml:"short_click_max_ms,omitempty" json:"short_click_max_ms,omitempty"`
}

// Ms はミリ秒の設定値を作る
func Ms(v int) *int {
	return &v
}

// Merge はrhsで設定されているフィールドだけをsにコピーする
func (s *ButtonSettings) Merge(rhs *ButtonSettings) {
	if rhs == nil {
		return
	}
	if rhs.HoldIntervalMs != nil {
		s.HoldIntervalMs = Ms(*rhs.HoldIntervalMs)
	}
	if rhs.LongClickMinMs != nil {
		s.LongClickMinMs = Ms(*rhs.LongClickMinMs)
	}
	if rhs.ShortClickMinMs != nil {
		s.ShortClickMinMs = Ms(*rhs.ShortClickMinMs)
	}
	if rhs.ShortClickMaxMs != nil {
		s.ShortClickMaxMs = Ms(*rhs.ShortClickMaxMs)
	}
}

// Clone はポインタを共有しないコピーを返す
func (s ButtonSettings) Clone() ButtonSettings {
	var c ButtonSettings
	c.Merge(&s)
	return c
}

// Thresholds は解決済みの判定しきい値
type Thresholds struct {
	HoldInterval  time.Duration
	LongClickMin  time.Duration
	ShortClickMin time.Duration
	// ShortClickMaxは未設定なら0
	ShortClickMax time.Duration
}

func resolve(override, fallback *int, def time.Duration) time.Duration {
	switch {
	case override != nil:
		return time.Duration(*override) * time.Millisecond
	case fallback != nil:
		return time.Duration(*fallback) * time.Millisecond
	default:
		return def
	}
}

// SettingsStore はボタンごとの設定を保持する
// リーダーのゴルーチン以外からも更新されるため、すべてのアクセスをmutexで保護する
type SettingsStore struct {
	mutex     sync.Mutex
	defaults  ButtonSettings
	overrides map[Button]ButtonSettings
}

// NewSettingsStore はデバイス全体のデフォルト設定を持つストアを作成する
func NewSettingsStore(defaults ButtonSettings) *SettingsStore {
	return &SettingsStore{
		defaults:  defaults.Clone(),
		overrides: make(map[Button]ButtonSettings),
	}
}

// SetDefaults はデバイス全体のデフォルト設定を置き換える
func (s *SettingsStore) SetDefaults(defaults ButtonSettings) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.defaults = defaults.Clone()
}

// Set はボタンの設定を置き換える
func (s *SettingsStore) Set(button Button, settings ButtonSettings) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.overrides[button] = settings.Clone()
}

// Clear はボタンの設定を削除する
func (s *SettingsStore) Clear(button Button) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.overrides, button)
}

// ClearAll はすべてのボタンの設定を削除する
func (s *SettingsStore) ClearAll() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.overrides = make(map[Button]ButtonSettings)
}

// Replace はデフォルト設定とすべてのボタンの設定をまとめて置き換える
// 置き換えの途中の状態が判定から見えることはない
func (s *SettingsStore) Replace(defaults ButtonSettings, overrides map[Button]ButtonSettings) {
	next := make(map[Button]ButtonSettings, len(overrides))
	for button, settings := range overrides {
		next[button] = settings.Clone()
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.defaults = defaults.Clone()
	s.overrides = next
}

// Get はボタンの設定を返す
func (s *SettingsStore) Get(button Button) (ButtonSettings, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	settings, ok := s.overrides[button]
	return settings.Clone(), ok
}

// Resolve はボタン設定 → デフォルト設定 → 定数の順にしきい値を解決する
func (s *SettingsStore) Resolve(button Button) Thresholds {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	o := s.overrides[button]
	d := s.defaults
	return Thresholds{
		HoldInterval:  resolve(o.HoldIntervalMs, d.HoldIntervalMs, DefaultHoldInterval),
		LongClickMin:  resolve(o.LongClickMinMs, d.LongClickMinMs, DefaultLongClickMin),
		ShortClickMin: resolve(o.ShortClickMinMs, d.ShortClickMinMs, DefaultShortClickMin),
		ShortClickMax: resolve(o.ShortClickMaxMs, d.ShortClickMaxMs, 0),
	}
}
