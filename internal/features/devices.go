package features

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Device は検出したデバイス
type Device struct {
	Name string
	Path string
	Type DeviceType
}

// デバイスタイプを表す列挙型
type DeviceType int

const (
	DeviceTypeJoystick DeviceType = iota
	DeviceTypeFramebuffer
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeJoystick:
		return "joystick"
	case DeviceTypeFramebuffer:
		return "framebuffer"
	default:
		return "unknown"
	}
}

// 検出に使うディレクトリ（テストで差し替える）
var (
	inputDir = "/dev/input"
	devDir   = "/dev"
)

// ScanDevices は現在接続されているジョイスティックとフレームバッファを返す
// 名前はsysfsから取れた場合のみ設定し、取れなければパスを使う
func ScanDevices() ([]Device, error) {
	var devices []Device

	joysticks, err := filepath.Glob(filepath.Join(inputDir, "js*"))
	if err != nil {
		return nil, err
	}
	sortByNumber(joysticks)
	for _, path := range joysticks {
		devices = append(devices, Device{Name: sysfsName("input", path), Path: path, Type: DeviceTypeJoystick})
	}

	framebuffers, err := filepath.Glob(filepath.Join(devDir, "fb[0-9]*"))
	if err != nil {
		return nil, err
	}
	sortByNumber(framebuffers)
	for _, path := range framebuffers {
		devices = append(devices, Device{Name: sysfsName("graphics", path), Path: path, Type: DeviceTypeFramebuffer})
	}

	return devices, nil
}

// FindFramebuffer は番号が最も大きいフレームバッファを返す
func FindFramebuffer() (string, error) {
	devices, err := ScanDevices()
	if err != nil {
		return "", err
	}
	found := ""
	for _, d := range devices {
		if d.Type == DeviceTypeFramebuffer {
			found = d.Path
		}
	}
	if found == "" {
		return "", fmt.Errorf("フレームバッファデバイスが見つかりません: %s/fb?", devDir)
	}
	return found, nil
}

// sysfsName は /sys/class/<class>/<base>/device/name または name を読む
func sysfsName(class, path string) string {
	base := filepath.Base(path)
	for _, p := range []string{
		filepath.Join("/sys/class", class, base, "device", "name"),
		filepath.Join("/sys/class", class, base, "name"),
	} {
		if b, err := os.ReadFile(p); err == nil {
			if name := strings.TrimSpace(string(b)); name != "" {
				return name
			}
		}
	}
	return path
}

// sortByNumber は末尾の番号順に並べる（fb10がfb9より後になるように）
func sortByNumber(paths []string) {
	num := func(p string) int {
		base := filepath.Base(p)
		i := len(base)
		for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
			i--
		}
		n, err := strconv.Atoi(base[i:])
		if err != nil {
			return -1
		}
		return n
	}
	sort.SliceStable(paths, func(i, j int) bool { return num(paths[i]) < num(paths[j]) })
}

// DeviceWatcher はデバイスファイルの作成を監視する
// 親ディレクトリをfsnotifyで監視し、対象のパスが作成されたらAppearedに通知する
type DeviceWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	appeared chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	log      *zap.SugaredLogger
}

// NewDeviceWatcher はpathの作成を監視するウォッチャーを作成する
func NewDeviceWatcher(path string, log *zap.SugaredLogger) (*DeviceWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("ディレクトリの監視に失敗しました: %s: %w", dir, err)
	}

	dw := &DeviceWatcher{
		path:     filepath.Clean(path),
		watcher:  watcher,
		appeared: make(chan struct{}, 1),
		stopChan: make(chan struct{}),
		log:      log,
	}
	dw.wg.Add(1)
	go dw.watchEvents()
	return dw, nil
}

// Appeared はデバイスファイルが作成されたときに通知されるチャネル
// 通知は1つまでしか溜まらない
func (dw *DeviceWatcher) Appeared() <-chan struct{} {
	return dw.appeared
}

// Close は監視を停止する
func (dw *DeviceWatcher) Close() error {
	close(dw.stopChan)
	err := dw.watcher.Close()
	dw.wg.Wait()
	return err
}

func (dw *DeviceWatcher) watchEvents() {
	defer dw.wg.Done()

	for {
		select {
		case <-dw.stopChan:
			return

		case ev, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != dw.path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Chmod) == 0 {
				continue
			}
			dw.log.Debugw("デバイスファイルイベント", "op", ev.Op.String(), "path", ev.Name)
			select {
			case dw.appeared <- struct{}{}:
			default:
			}

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.log.Warnw("ファイルシステム監視エラー", "error", err)
		}
	}
}
