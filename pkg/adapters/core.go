package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"google.golang.org/genai"
)

// ModelsService は genai.Models のうち本パッケージが利用するメソッドだけを抽象化したものです。
// *genai.Models はそのままこのインターフェースを満たします。
type ModelsService interface {
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientFactory は認証情報ごとに ModelsService を生成します。
// 認証情報はリクエストのたびに読み直されるため、クライアントも呼び出し単位で作ります。
type ClientFactory func(ctx context.Context, apiKey string) (ModelsService, error)

// NewGenaiClientFactory は Gemini API バックエンドの genai クライアントを生成するファクトリを返します。
func NewGenaiClientFactory() ClientFactory {
	return func(ctx context.Context, apiKey string) (ModelsService, error) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("genaiクライアントの作成に失敗しました: %w", err)
		}
		return client.Models, nil
	}
}

// GeminiImageCore はパーツ変換とレスポンス解析の共通ロジックを保持するコンポーネントです。
type GeminiImageCore struct{}

// NewGeminiImageCore は GeminiImageCore のインスタンスを生成します。
func NewGeminiImageCore() *GeminiImageCore {
	return &GeminiImageCore{}
}

// ToPart はアップロード枠の画像を genai.Part (InlineData) に変換します。
// 空の枠やデコードできない枠は nil を返します。
func (c *GeminiImageCore) ToPart(slot domain.ImageSlot) (*genai.Part, error) {
	if slot.IsEmpty() {
		return nil, nil
	}
	data, err := slot.Bytes()
	if err != nil {
		return nil, fmt.Errorf("画像データのデコードに失敗しました: %w", err)
	}
	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: slot.MimeType,
			Data:     data,
		},
	}, nil
}

// ParseToResponse は Gemini のレスポンスから最初の画像パーツを取り出します。
// 最初の候補 (Candidate) のパーツを先頭から順に走査し、最初に見つかった画像を採用します。
func (c *GeminiImageCore) ParseToResponse(resp *genai.GenerateContentResponse, emptyMsg string) (*domain.ImageResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, domain.NewEmptyResultError(emptyMsg)
	}

	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			return &domain.ImageResponse{
				Data:     part.InlineData.Data,
				MimeType: part.InlineData.MIMEType,
			}, nil
		}
	}

	// 安全フィルター等によるブロックはログにだけ残し、利用者には画像なしとして返す
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		slog.Warn("画像生成が異常終了しました", "finish_reason", candidate.FinishReason)
	}

	return nil, domain.NewEmptyResultError(emptyMsg)
}
