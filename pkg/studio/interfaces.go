package studio

import (
	"context"
	"time"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// RemoteClient は生成・合成の2操作を提供するリモートサービスの窓口です。
// adapters.Client がこのインターフェースを満たします。
type RemoteClient interface {
	Generate(ctx context.Context, prompt, credential string) (*domain.ImageResponse, error)
	Combine(ctx context.Context, prompt string, images []domain.ImageSlot, credential string) (*domain.ImageResponse, error)
}

// CredentialSource はリクエストのたびに認証情報を読み出します。
type CredentialSource interface {
	Credential() (string, bool)
}

// KeySelector はホスト側が提供するキー選択ダイアログです。
type KeySelector interface {
	OpenKeySelector(ctx context.Context) error
}

// URLFetcher は URL から画像を取得します。adapters.ReferenceFetcher が満たします。
type URLFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, string, error)
}

// Recorder はリクエスト結果を記録します（メトリクス用）。
type Recorder interface {
	Observe(mode domain.ActiveMode, outcome Outcome, elapsed time.Duration)
}
