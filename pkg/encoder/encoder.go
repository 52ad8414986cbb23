package encoder

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// Encode は読み込んだファイルを Base64 と MIME タイプの組に変換します。
// サイズや形式の検証は行わず、ブラウザから渡されたバイト列をそのまま扱います。
// contentType が空の場合のみ内容から MIME タイプを推定します。
func Encode(r io.Reader, contentType string) (domain.ImageSlot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.ImageSlot{}, fmt.Errorf("ファイルの読み込みに失敗しました: %w", err)
	}
	return EncodeBytes(data, contentType), nil
}

// EncodeBytes は読み込み済みのバイト列を ImageSlot に変換します。
func EncodeBytes(data []byte, contentType string) domain.ImageSlot {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return domain.ImageSlot{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MimeType: contentType,
	}
}
