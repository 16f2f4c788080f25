package consts

// ジョイスティックデバイスの定数（linux/joystick.hから）
const (
	JsEventSize   = 8          // js_event構造体のサイズ
	JsEventButton = 0x01       // ボタンイベント
	JsEventAxis   = 0x02       // 軸イベント
	JsEventInit   = 0x80       // 初期状態（設定）イベント
	JSIOCGNAME128 = 0x80806a13 // デバイス名取得用のIOCTL (len = 128)
	JsNameSize    = 128        // デバイス名バッファのサイズ
)

// 軸の値の範囲
const (
	AxisNegativeMax = -32767
	AxisPositiveMax = 32767
)

// フレームバッファデバイスの定数（linux/fb.hから）
const (
	FBIOGET_VSCREENINFO = 0x4600 // 可変スクリーン情報取得用のIOCTL
	FBIOGET_FSCREENINFO = 0x4602 // 固定スクリーン情報取得用のIOCTL
	FbIDSize            = 16     // fb_fix_screeninfo.idのサイズ
)

// デフォルトのデバイスパス
const (
	DefaultJoystickDevice    = "/dev/input/js0"
	DefaultFramebufferDevice = "/dev/fb0"
)
