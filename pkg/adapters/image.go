package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"google.golang.org/genai"
)

const (
	// GeneratedImageMIMEType は Imagen の生成結果に付与する固定の MIME タイプです。
	GeneratedImageMIMEType = "image/jpeg"
	msgNoImageProduced     = "no image produced"
)

// GeminiImageGenerator はテキストプロンプトから画像を生成するアダプター層です。
type GeminiImageGenerator struct {
	newClient ClientFactory
	model     string
}

// NewGeminiImageGenerator は依存関係を注入して初期化します。
func NewGeminiImageGenerator(newClient ClientFactory, model string) (*GeminiImageGenerator, error) {
	if newClient == nil {
		return nil, fmt.Errorf("newClient (ClientFactory) is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &GeminiImageGenerator{
		newClient: newClient,
		model:     model,
	}, nil
}

// Generate はプロンプトから画像を1枚生成し、最初の結果を JPEG として返します。
func (g *GeminiImageGenerator) Generate(ctx context.Context, prompt, credential string) (*domain.ImageResponse, error) {
	models, err := g.newClient(ctx, credential)
	if err != nil {
		return nil, classifyError(err, "Gemini画像生成エラー")
	}

	slog.InfoContext(ctx, "Imagenに画像生成をリクエストします", "model", g.model)

	resp, err := models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: GeneratedImageMIMEType,
	})
	if err != nil {
		return nil, classifyError(err, "Gemini画像生成エラー")
	}

	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, domain.NewEmptyResultError(msgNoImageProduced)
	}
	first := resp.GeneratedImages[0]
	if first == nil || first.Image == nil || len(first.Image.ImageBytes) == 0 {
		return nil, domain.NewEmptyResultError(msgNoImageProduced)
	}

	return &domain.ImageResponse{
		Data:     first.Image.ImageBytes,
		MimeType: GeneratedImageMIMEType,
	}, nil
}
