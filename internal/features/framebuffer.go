package features

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/char5742/gamehaven/internal/logger"
	"github.com/char5742/gamehaven/internal/utils"
)

// DefaultFrameInterval はレンダーループの1周ごとの待ち時間
const DefaultFrameInterval = 10 * time.Millisecond

// フレームバッファのエラー
var (
	// ErrFrameSize はフレームの大きさがディスプレイと一致しない
	ErrFrameSize = errors.New("frame size does not match display geometry")
	// ErrClosed は閉じたディスプレイへの操作
	ErrClosed = errors.New("display closed")
)

// frameSink はフレームの書き込み先
type frameSink interface {
	io.WriterAt
	Sync() error
	Close() error
}

// DisplayOptions はディスプレイの動作設定
type DisplayOptions struct {
	// 問い合わせに失敗したときに使う解像度と色深度
	Fallback Geometry
	// レンダーループの1周ごとの待ち時間
	FrameInterval time.Duration
	// 省略時は logger.Named("display")
	Logger *zap.SugaredLogger
}

// DisplayStats はレンダーループの統計
type DisplayStats struct {
	Written    uint64 // 書き込んだフレーム数
	Superseded uint64 // 書き込まれる前に上書きされたフレーム数
	Failed     uint64 // 書き込みに失敗したフレーム数
}

// Display はメモリマップしたフレームバッファに専用のゴルーチンからフレームを書き込む
// Submitは最後に渡されたフレームだけを保持し、ブロックしない
type Display struct {
	path          string
	geometry      Geometry
	frameInterval time.Duration
	log           *zap.SugaredLogger
	open          func(path string, size int) (frameSink, error)

	mutex  sync.Mutex
	next   []byte
	closed bool

	// sinkはレンダーループだけが触り、Closeはループの終了後に解放する
	sink frameSink

	lastFrameTime atomic.Int64
	written       atomic.Uint64
	superseded    atomic.Uint64
	failed        atomic.Uint64

	stopChan chan struct{}
	done     chan struct{}
}

// NewDisplay はフレームバッファを問い合わせ、レンダーループを開始する
// 問い合わせに失敗してもopts.Fallbackの解像度で動作を続ける
func NewDisplay(path string, opts DisplayOptions) *Display {
	d := newDisplay(path, opts)
	geometry, err := ProbeFramebuffer(path, d.geometry, d.log)
	if err != nil {
		d.log.Warnw("フレームバッファの問い合わせに失敗しました。デフォルトの解像度を使います",
			"geometry", geometry.String(), "error", err)
	}
	d.geometry = geometry
	d.log.Infow("フレームバッファ", "geometry", d.geometry.String())

	go d.renderLoop()
	return d
}

func newDisplay(path string, opts DisplayOptions) *Display {
	if opts.Fallback.FrameSize() <= 0 {
		opts.Fallback = DefaultGeometry
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.Named("display")
	}
	return &Display{
		path:          path,
		geometry:      opts.Fallback,
		frameInterval: opts.FrameInterval,
		log:           opts.Logger.With("device", path),
		open:          openMappedDevice,
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Geometry はディスプレイの解像度と色深度
func (d *Display) Geometry() Geometry {
	return d.geometry
}

// Submit は次に書き込むフレームを設定する
// まだ書き込まれていないフレームがあれば捨てる。ブロックしない
// pixelsはコピーして保持するので、呼び出し側は戻った後に再利用してよい
func (d *Display) Submit(pixels []byte) error {
	if len(pixels) != d.geometry.FrameSize() {
		return fmt.Errorf("%w: got %d bytes, want %d (%v)", ErrFrameSize, len(pixels), d.geometry.FrameSize(), d.geometry)
	}
	frame := make([]byte, len(pixels))
	copy(frame, pixels)

	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.next != nil {
		d.superseded.Add(1)
	}
	d.next = frame
	return nil
}

// SubmitImage は画像をRGB565に変換して次のフレームとして設定する
// 画像の大きさはディスプレイと一致している必要がある（拡大縮小はしない）
func (d *Display) SubmitImage(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != d.geometry.Width || b.Dy() != d.geometry.Height {
		return fmt.Errorf("%w: image %dx%d, display %v", ErrFrameSize, b.Dx(), b.Dy(), d.geometry)
	}
	if d.geometry.BitsPerPixel != 16 {
		return fmt.Errorf("%w: only 16bpp displays accept images (%v)", ErrFrameSize, d.geometry)
	}
	return d.Submit(EncodeRGB565(img))
}

// Clear は画面をほぼ黒の単色で塗りつぶす
func (d *Display) Clear() error {
	frame := make([]byte, d.geometry.FrameSize())
	if d.geometry.BitsPerPixel == 16 {
		// RGB565の (1,1,1)
		px := rgb565(8, 4, 8)
		for i := 0; i+1 < len(frame); i += 2 {
			frame[i] = byte(px)
			frame[i+1] = byte(px >> 8)
		}
	}
	return d.Submit(frame)
}

// LastFrameTime は直近のフレームの書き込みにかかった時間
func (d *Display) LastFrameTime() time.Duration {
	return time.Duration(d.lastFrameTime.Load())
}

// Stats はレンダーループの統計を返す
func (d *Display) Stats() DisplayStats {
	return DisplayStats{
		Written:    d.written.Load(),
		Superseded: d.superseded.Load(),
		Failed:     d.failed.Load(),
	}
}

// Close はレンダーループを停止し、終了を待ってからメモリマップを解放する
func (d *Display) Close() error {
	d.mutex.Lock()
	if d.closed {
		d.mutex.Unlock()
		return nil
	}
	d.closed = true
	d.mutex.Unlock()

	close(d.stopChan)
	<-d.done

	// ループが止まってから解放しないと、解放済みのメモリに書き込む恐れがある
	if d.sink != nil {
		err := d.sink.Close()
		d.sink = nil
		return err
	}
	return nil
}

func (d *Display) renderLoop() {
	defer close(d.done)

	timer := time.NewTimer(d.frameInterval)
	defer timer.Stop()

	for {
		d.renderOnce()

		timer.Reset(d.frameInterval)
		select {
		case <-d.stopChan:
			return
		case <-timer.C:
		}
	}
}

// take はメールボックスからフレームを取り出して空にする
func (d *Display) take() []byte {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	frame := d.next
	d.next = nil
	return frame
}

// renderOnce は保留中のフレームがあれば1つ書き込む
func (d *Display) renderOnce() {
	frame := d.take()
	if len(frame) == 0 {
		return
	}

	start := time.Now()
	if err := d.write(frame); err != nil {
		d.failed.Add(1)
		d.log.Errorw("フレームの書き込みに失敗しました", "error", err)
		return
	}
	d.lastFrameTime.Store(int64(time.Since(start)))
	d.written.Add(1)
}

func (d *Display) write(frame []byte) error {
	if d.sink == nil {
		sink, err := d.open(d.path, d.geometry.FrameSize())
		if err != nil {
			return fmt.Errorf("フレームバッファを開けませんでした: %w", err)
		}
		d.sink = sink
	}

	if _, err := d.sink.WriteAt(frame, 0); err != nil {
		// 次の周期で開き直す
		d.sink.Close()
		d.sink = nil
		return err
	}
	return d.sink.Sync()
}

// mappedDevice はメモリマップしたフレームバッファ
type mappedDevice struct {
	file *os.File
	mem  []byte
}

func openMappedDevice(path string, size int) (frameSink, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	mem, err := utils.Mmap(f, size)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s (%d bytes): %w", path, size, err)
	}
	return &mappedDevice{file: f, mem: mem}, nil
}

func (m *mappedDevice) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.mem)) {
		return 0, fmt.Errorf("write of %d bytes at %d exceeds mapped size %d", len(p), off, len(m.mem))
	}
	return copy(m.mem[off:], p), nil
}

func (m *mappedDevice) Sync() error {
	return utils.Msync(m.mem)
}

func (m *mappedDevice) Close() error {
	var result *multierror.Error
	if m.mem != nil {
		if err := utils.Munmap(m.mem); err != nil {
			result = multierror.Append(result, fmt.Errorf("munmap: %w", err))
		}
		m.mem = nil
	}
	if err := m.file.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
