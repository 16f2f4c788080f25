package types

// JsEvent はジョイスティックデバイスから読み取る1レコードを表す構造体
type JsEvent struct {
	Time   uint32 // イベント発生時刻（ミリ秒、未使用）
	Value  int16  // 軸の値、またはボタンの押下状態
	Type   uint8  // イベントタイプ
	Number uint8  // ボタンまたは軸の番号
}
