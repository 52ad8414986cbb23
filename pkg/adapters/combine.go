package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"google.golang.org/genai"
)

const msgNoCombinedImage = "no combined image produced"

// responseModalities は合成リクエストで要求する応答形式です。
var responseModalities = []string{"IMAGE", "TEXT"}

// GeminiCombineAdapter は複数の画像と指示文から1枚の画像を合成するアダプターです。
// GeminiImageCore（パーツ変換・解析）とクライアントファクトリ（Gemini通信）を組み合わせて動作します。
type GeminiCombineAdapter struct {
	imgCore   *GeminiImageCore
	newClient ClientFactory
	model     string
}

// NewGeminiCombineAdapter は依存関係を注入してアダプターのインスタンスを作成します。
func NewGeminiCombineAdapter(core *GeminiImageCore, newClient ClientFactory, model string) (*GeminiCombineAdapter, error) {
	if core == nil {
		return nil, fmt.Errorf("core (GeminiImageCore) is required")
	}
	if newClient == nil {
		return nil, fmt.Errorf("newClient (ClientFactory) is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &GeminiCombineAdapter{
		imgCore:   core,
		newClient: newClient,
		model:     model,
	}, nil
}

// Combine は画像の入った枠すべてをインラインパーツとして並べ、最後に指示文を付けて送信します。
func (a *GeminiCombineAdapter) Combine(ctx context.Context, prompt string, images []domain.ImageSlot, credential string) (*domain.ImageResponse, error) {
	parts := make([]*genai.Part, 0, len(images)+1)
	for i, img := range images {
		part, err := a.imgCore.ToPart(img)
		if err != nil {
			return nil, classifyError(fmt.Errorf("枠 %d: %w", i, err), "Gemini合成エラー")
		}
		if part == nil {
			continue
		}
		parts = append(parts, part)
	}
	imageCount := len(parts)
	parts = append(parts, genai.NewPartFromText(prompt))

	models, err := a.newClient(ctx, credential)
	if err != nil {
		return nil, classifyError(err, "Gemini合成エラー")
	}

	slog.InfoContext(ctx, "Geminiに画像合成をリクエストします", "model", a.model, "images", imageCount)

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := models.GenerateContent(ctx, a.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: responseModalities,
	})
	if err != nil {
		return nil, classifyError(err, "Gemini合成エラー")
	}

	return a.imgCore.ParseToResponse(resp, msgNoCombinedImage)
}
