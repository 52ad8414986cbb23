package domain

import "fmt"

// ErrorKind はリモート呼び出し失敗の分類です。
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindNotFound
	KindInvalidCredential
	KindEmpty
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindEmpty:
		return "empty"
	default:
		return "other"
	}
}

// GenerationError はアダプター境界で分類済みのエラーです。
// 呼び出し側はメッセージ文字列ではなく Kind で分岐します。
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Detail はラベルを除いた元のエラーメッセージを返します。
func (e *GenerationError) Detail() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewEmptyResultError は画像を含まない成功レスポンス用のエラーを作ります。
func NewEmptyResultError(msg string) *GenerationError {
	return &GenerationError{Kind: KindEmpty, Message: msg}
}
