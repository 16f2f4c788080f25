package features

import (
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/char5742/gamehaven/internal/consts"
	"github.com/char5742/gamehaven/internal/event"
	"github.com/char5742/gamehaven/internal/logger"
)

// DefaultRetryInterval はデバイスが存在しないときの再確認間隔
const DefaultRetryInterval = time.Second

// JoystickOptions はジョイスティックの動作設定
type JoystickOptions struct {
	// デバイスが存在しない、または切断されたときに再確認するまでの間隔
	RetryInterval time.Duration
	// trueなら値が変わらないレコードでコールバックを呼ばない
	SuppressDuplicates bool
	// 接続状態が変わったときに呼ばれる。identifierはデバイス名、取得できなければパス
	OnConnection func(connected bool, identifier string)
	// 省略時は logger.Named("joystick")
	Logger *zap.SugaredLogger
}

// Joystick はジョイスティックデバイスを読み続け、レコードをデコーダに渡す
// 読み取りは専用のゴルーチンで行い、デバイスの抜き差しは正常な状態として扱う
type Joystick struct {
	path    string
	opts    JoystickOptions
	decoder *Decoder
	log     *zap.SugaredLogger
	watcher *DeviceWatcher

	connected  atomic.Bool
	identifier atomic.Value // string

	mutex    sync.Mutex
	file     *os.File
	closed   bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// OpenJoystick はジョイスティックの読み取りを開始する
// デバイスが存在しなくてもエラーにはならず、現れるまで待つ
func OpenJoystick(path string, opts JoystickOptions, handler Handler) *Joystick {
	if path == "" {
		path = consts.DefaultJoystickDevice
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultRetryInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.Named("joystick")
	}
	log := opts.Logger.With("device", path)

	j := &Joystick{
		path:     path,
		opts:     opts,
		decoder:  NewDecoder(handler),
		log:      log,
		stopChan: make(chan struct{}),
	}
	j.decoder.SuppressDuplicates = opts.SuppressDuplicates
	j.identifier.Store(path)

	watcher, err := NewDeviceWatcher(path, log)
	if err != nil {
		// 監視できなくても一定間隔の再確認で動作する
		log.Debugw("デバイスファイルを監視できません", "error", err)
	} else {
		j.watcher = watcher
	}

	j.wg.Add(1)
	go j.runLoop()
	return j
}

// Path はデバイスファイルのパス
func (j *Joystick) Path() string {
	return j.path
}

// Identifier はデバイス名。取得できていなければパス
func (j *Joystick) Identifier() string {
	return j.identifier.Load().(string)
}

// Connected はデバイスを読み取り中かどうかを返す
func (j *Joystick) Connected() bool {
	return j.connected.Load()
}

// Available はデバイスファイルが存在するかを返す
func (j *Joystick) Available() bool {
	_, err := os.Stat(j.path)
	return err == nil
}

// Decoder はこのジョイスティックのデコーダ
// 状態の参照はコールバック内からのみ行うこと
func (j *Joystick) Decoder() *Decoder {
	return j.decoder
}

// Close は読み取りを停止し、ゴルーチンの終了を待つ
func (j *Joystick) Close() error {
	j.mutex.Lock()
	if j.closed {
		j.mutex.Unlock()
		return nil
	}
	j.closed = true
	close(j.stopChan)
	// ブロック中の読み取りはファイルを閉じることで解除する
	if j.file != nil {
		j.file.Close()
	}
	j.mutex.Unlock()

	j.wg.Wait()

	if j.watcher != nil {
		return j.watcher.Close()
	}
	return nil
}

func (j *Joystick) stopped() bool {
	select {
	case <-j.stopChan:
		return true
	default:
		return false
	}
}

// wait は再確認の間隔だけ待つ。停止したらfalseを返す
func (j *Joystick) wait() bool {
	timer := time.NewTimer(j.opts.RetryInterval)
	defer timer.Stop()

	var appeared <-chan struct{}
	if j.watcher != nil {
		appeared = j.watcher.Appeared()
	}

	select {
	case <-j.stopChan:
		return false
	case <-timer.C:
	case <-appeared:
	}
	return true
}

func (j *Joystick) runLoop() {
	defer j.wg.Done()

	for !j.stopped() {
		if !j.Available() {
			if !j.wait() {
				return
			}
			continue
		}

		f, err := j.open()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, errStopped) {
				j.log.Warnw("デバイスを開けませんでした", "error", err)
			}
			if !j.wait() {
				return
			}
			continue
		}

		j.probe(f)
		j.setConnected(true)

		err = j.readRecords(f)

		j.mutex.Lock()
		j.file = nil
		j.mutex.Unlock()
		f.Close()

		if j.stopped() {
			return
		}
		j.log.Warnw("デバイスの読み取りに失敗しました。切断された可能性があります", "error", err)
		j.setConnected(false)
		if !j.wait() {
			return
		}
	}
}

var errStopped = errors.New("joystick stopped")

func (j *Joystick) open() (*os.File, error) {
	f, err := os.OpenFile(j.path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	j.mutex.Lock()
	defer j.mutex.Unlock()
	if j.closed {
		f.Close()
		return nil, errStopped
	}
	j.file = f
	return f, nil
}

// probe はデバイス名を問い合わせて識別子を更新する。失敗したらパスのまま
func (j *Joystick) probe(f *os.File) {
	name, err := ProbeJoystickName(f)
	if err != nil || name == "" {
		j.log.Errorw("デバイス名の取得に失敗しました", "error", err)
		j.identifier.Store(j.path)
		return
	}
	j.log.Infow("ジョイスティックを検出しました", "name", name)
	j.identifier.Store(name)
}

func (j *Joystick) setConnected(connected bool) {
	if j.connected.Swap(connected) == connected {
		return
	}
	if j.opts.OnConnection != nil {
		j.opts.OnConnection(connected, j.Identifier())
	}
}

// readRecords はエラーになるか停止するまでレコードを読み続ける
func (j *Joystick) readRecords(r io.Reader) error {
	buf := make([]byte, consts.JsEventSize)
	for !j.stopped() {
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.ErrUnexpectedEOF || err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		rec, err := event.Parse(buf)
		if err != nil {
			return err
		}
		if err := j.decoder.Decode(rec); err != nil {
			j.log.Debugw("レコードを破棄しました", "record", rec.String(), "error", err)
		}
	}
	return nil
}
