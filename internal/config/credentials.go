package config

import (
	"os"
	"strings"
)

// EnvCredentialSource は環境変数から認証情報を読み出します。
// 値はキャッシュせず、呼び出しのたびに読み直します。
type EnvCredentialSource struct {
	Keys []string
}

// DefaultCredentialSource は GEMINI_API_KEY、次いで API_KEY を参照します。
func DefaultCredentialSource() EnvCredentialSource {
	return EnvCredentialSource{Keys: []string{"GEMINI_API_KEY", "API_KEY"}}
}

// Credential は最初に見つかった空でない値を返します。
func (s EnvCredentialSource) Credential() (string, bool) {
	for _, key := range s.Keys {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}
