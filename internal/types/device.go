package types

import "github.com/char5742/gamehaven/internal/consts"

// FbFixScreeninfo はフレームバッファの固定情報を表す構造体
type FbFixScreeninfo struct {
	ID           [consts.FbIDSize]byte // 識別文字列
	SmemStart    uintptr               // フレームバッファメモリの開始位置（物理アドレス）
	SmemLen      uint32                // フレームバッファメモリの長さ
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	LineLength   uint32 // 1ラインのバイト数
	MmioStart    uintptr
	MmioLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

// FbBitfield は1色分のビット配置
type FbBitfield struct {
	Offset   uint32
	Length   uint32
	MsbRight uint32
}

// FbVarScreeninfo はフレームバッファの可変情報を表す構造体
type FbVarScreeninfo struct {
	XRes         uint32 // 表示解像度
	YRes         uint32
	XResVirtual  uint32 // 仮想解像度
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	Red          FbBitfield
	Green        FbBitfield
	Blue         FbBitfield
	Transp       FbBitfield
	NonStd       uint32
	Activate     uint32
	Height       uint32 // 画面の高さ (mm)
	Width        uint32 // 画面の幅 (mm)
	AccelFlags   uint32
	PixClock     uint32
	LeftMargin   uint32
	RightMargin  uint32
	UpperMargin  uint32
	LowerMargin  uint32
	HSyncLen     uint32
	VSyncLen     uint32
	Sync         uint32
	VMode        uint32
	Rotate       uint32
	Colorspace   uint32
	Reserved     [4]uint32
}
