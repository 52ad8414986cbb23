package domain

import "encoding/base64"

// ImageSlot はアップロード枠1つ分の画像です。
// Base64 が空の場合は、まだファイルが選択されていない空の枠を表します。
type ImageSlot struct {
	Base64   string
	MimeType string
}

// IsEmpty は枠に画像が入っていないかを返します。
func (s ImageSlot) IsEmpty() bool {
	return s.Base64 == ""
}

// DataURL はプレビュー表示用の data URL を返します。空の枠では空文字を返します。
func (s ImageSlot) DataURL() string {
	if s.IsEmpty() {
		return ""
	}
	return "data:" + s.MimeType + ";base64," + s.Base64
}

// Bytes は Base64 をデコードした生のバイト列を返します。
func (s ImageSlot) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(s.Base64)
}

// ImageResponse は生成された画像データとそのメタデータです。
// 1回のリクエスト／レスポンスの間だけ存在し、出力として描画されるか破棄されます。
type ImageResponse struct {
	Data     []byte
	MimeType string
}

// DataURL は出力画像の src に設定する data URL を返します。
func (r *ImageResponse) DataURL() string {
	if r == nil || len(r.Data) == 0 {
		return ""
	}
	return "data:" + r.MimeType + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}
