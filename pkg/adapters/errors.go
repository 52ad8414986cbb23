package adapters

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"google.golang.org/genai"
)

// 既知のエラーフレーズです。サービス側の文言変更に弱いため、
// genai.APIError のステータスで判定できなかった場合の補助としてだけ使います。
const (
	phraseEntityNotFound = "Requested entity was not found"
	phraseInvalidKey     = "API key not valid"
	phrasePermission     = "permission denied"
)

// classifyError はリモート呼び出しのエラーを domain.GenerationError に変換します。
func classifyError(err error, label string) *domain.GenerationError {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	kind := kindFromAPIError(err)
	if kind == domain.KindOther {
		kind = kindFromMessage(err.Error())
	}

	return &domain.GenerationError{Kind: kind, Message: label, Err: err}
}

func kindFromAPIError(err error) domain.ErrorKind {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return kindFromStatus(apiErr.Code, apiErr.Status, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return kindFromStatus(apiErrPtr.Code, apiErrPtr.Status, apiErrPtr.Message)
	}
	return domain.KindOther
}

func kindFromStatus(code int, status, message string) domain.ErrorKind {
	switch {
	case code == http.StatusNotFound || status == "NOT_FOUND":
		return domain.KindNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden,
		status == "UNAUTHENTICATED" || status == "PERMISSION_DENIED":
		return domain.KindInvalidCredential
	}
	// 不正なキーは 400 INVALID_ARGUMENT で返るため、メッセージで補う
	return kindFromMessage(message)
}

func kindFromMessage(msg string) domain.ErrorKind {
	switch {
	case strings.Contains(msg, phraseEntityNotFound):
		return domain.KindNotFound
	case strings.Contains(msg, phraseInvalidKey),
		strings.Contains(strings.ToLower(msg), phrasePermission):
		return domain.KindInvalidCredential
	}
	return domain.KindOther
}
