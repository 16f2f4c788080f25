package features

import (
	"fmt"
	"os"
	"strings"
	"unsafe"

	"go.uber.org/zap"

	"github.com/char5742/gamehaven/internal/consts"
	"github.com/char5742/gamehaven/internal/types"
	"github.com/char5742/gamehaven/internal/utils"
)

// Geometry はフレームバッファの解像度と色深度
type Geometry struct {
	Width        int
	Height       int
	BitsPerPixel int
	Name         string
	MemStart     uint64
	MemLen       uint32
}

// DefaultGeometry は問い合わせに失敗した場合に使う 800x480 RGB565
var DefaultGeometry = Geometry{
	Width:        800,
	Height:       480,
	BitsPerPixel: 16,
	Name:         "<unknown>",
}

// BytesPerPixel は1ピクセルあたりのバイト数。15bppなどは切り上げる
func (g Geometry) BytesPerPixel() int {
	return (g.BitsPerPixel + 7) / 8
}

// FrameSize は1フレームのバイト数
func (g Geometry) FrameSize() int {
	return g.Width * g.Height * g.BytesPerPixel()
}

func (g Geometry) String() string {
	return fmt.Sprintf("%s %dx%d@%dbpp", g.Name, g.Width, g.Height, g.BitsPerPixel)
}

// trimName はioctlで得た名前の末尾の空白とNULを取り除く
func trimName(buf []byte) string {
	return strings.TrimRight(string(buf), "\r\n \x00")
}

// ProbeJoystickName は開いているジョイスティックデバイスの名前を問い合わせる
func ProbeJoystickName(file *os.File) (string, error) {
	var name [consts.JsNameSize]byte
	if err := utils.IOCtlPtr(file, consts.JSIOCGNAME128, unsafe.Pointer(&name[0])); err != nil {
		return "", fmt.Errorf("JSIOCGNAME ioctl failed on %s: %w", file.Name(), err)
	}
	return trimName(name[:]), nil
}

// ProbeFramebuffer はフレームバッファの固定情報と可変情報を問い合わせる
// 失敗した項目はfallbackの値のままにする。エラーはログ用で、戻り値のGeometryは常に使える
func ProbeFramebuffer(path string, fallback Geometry, log *zap.SugaredLogger) (Geometry, error) {
	g := fallback

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return g, fmt.Errorf("failed to open framebuffer %s: %w", path, err)
	}
	defer f.Close()

	var probeErr error

	var fixed types.FbFixScreeninfo
	if err := utils.IOCtlPtr(f, consts.FBIOGET_FSCREENINFO, unsafe.Pointer(&fixed)); err != nil {
		probeErr = fmt.Errorf("FBIOGET_FSCREENINFO ioctl failed on %s: %w", path, err)
		log.Errorw("固定スクリーン情報の取得に失敗しました", "device", path, "error", err)
	} else {
		g.Name = trimName(fixed.ID[:])
		g.MemStart = uint64(fixed.SmemStart)
		g.MemLen = fixed.SmemLen
		log.Debugw("ディスプレイメモリ", "name", g.Name, "start", g.MemStart, "length", g.MemLen)
	}

	var variable types.FbVarScreeninfo
	if err := utils.IOCtlPtr(f, consts.FBIOGET_VSCREENINFO, unsafe.Pointer(&variable)); err != nil {
		if probeErr == nil {
			probeErr = fmt.Errorf("FBIOGET_VSCREENINFO ioctl failed on %s: %w", path, err)
		}
		log.Errorw("可変スクリーン情報の取得に失敗しました", "device", path, "error", err)
	} else if variable.XRes == 0 || variable.YRes == 0 || variable.BitsPerPixel < 8 {
		log.Warnw("不正なスクリーン情報のためデフォルトを使います", "device", path,
			"width", variable.XRes, "height", variable.YRes, "bpp", variable.BitsPerPixel)
	} else {
		g.Width = int(variable.XRes)
		g.Height = int(variable.YRes)
		g.BitsPerPixel = int(variable.BitsPerPixel)
		log.Debugw("実際の解像度", "width", g.Width, "height", g.Height, "bpp", g.BitsPerPixel)
	}

	return g, probeErr
}
