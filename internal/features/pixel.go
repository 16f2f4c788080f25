package features

import (
	"encoding/binary"
	"image"
)

// rgb565 は8ビットのRGBを16ビットの5/6/5に詰める
func rgb565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// EncodeRGB565 は画像をリトルエンディアンのRGB565のバイト列に変換する
func EncodeRGB565(img image.Image) []byte {
	bounds := img.Bounds()
	out := make([]byte, bounds.Dx()*bounds.Dy()*2)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			binary.LittleEndian.PutUint16(out[i:], rgb565(uint8(r>>8), uint8(g>>8), uint8(b>>8)))
			i += 2
		}
	}
	return out
}
