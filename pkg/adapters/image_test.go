package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiImageGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	modelName := "imagen-4.0-generate-001"

	t.Run("Success/ShouldReturnFirstImageAsJPEG", func(t *testing.T) {
		var gotKey string
		models := &mockModels{
			generateImagesFunc: func(model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
				assert.Equal(t, modelName, model)
				assert.Equal(t, "a castle at sunset", prompt)
				assert.Equal(t, "image/jpeg", config.OutputMIMEType)
				return &genai.GenerateImagesResponse{
					GeneratedImages: []*genai.GeneratedImage{
						{Image: &genai.Image{ImageBytes: []byte("castle")}},
						{Image: &genai.Image{ImageBytes: []byte("ignored")}},
					},
				}, nil
			},
		}

		gen, err := NewGeminiImageGenerator(factoryFor(models, &gotKey), modelName)
		require.NoError(t, err)

		resp, err := gen.Generate(ctx, "a castle at sunset", "secret")
		require.NoError(t, err)
		assert.Equal(t, "secret", gotKey)
		assert.Equal(t, []byte("castle"), resp.Data)
		assert.Equal(t, "image/jpeg", resp.MimeType)
	})

	t.Run("Failure/ShouldReturnEmptyWhenNoImages", func(t *testing.T) {
		gen, _ := NewGeminiImageGenerator(factoryFor(&mockModels{}, nil), modelName)

		_, err := gen.Generate(ctx, "nothing", "secret")

		var genErr *domain.GenerationError
		require.True(t, errors.As(err, &genErr))
		assert.Equal(t, domain.KindEmpty, genErr.Kind)
		assert.Equal(t, "no image produced", genErr.Error())
	})

	t.Run("Failure/ShouldClassifyRemoteError", func(t *testing.T) {
		cause := errors.New("API key not valid. Please pass a valid API key.")
		models := &mockModels{
			generateImagesFunc: func(model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
				return nil, cause
			},
		}
		gen, _ := NewGeminiImageGenerator(factoryFor(models, nil), modelName)

		_, err := gen.Generate(ctx, "fox", "bad")

		var genErr *domain.GenerationError
		require.True(t, errors.As(err, &genErr))
		assert.Equal(t, domain.KindInvalidCredential, genErr.Kind)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("Failure/ShouldClassifyAPIErrorValue", func(t *testing.T) {
		models := &mockModels{
			generateImagesFunc: func(model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
				return nil, genai.APIError{Code: 404, Status: "NOT_FOUND", Message: "models/imagen is not found"}
			},
		}
		gen, _ := NewGeminiImageGenerator(factoryFor(models, nil), modelName)

		_, err := gen.Generate(ctx, "fox", "key")

		var genErr *domain.GenerationError
		require.True(t, errors.As(err, &genErr))
		assert.Equal(t, domain.KindNotFound, genErr.Kind)
	})

	t.Run("Failure/ShouldPropagateClientFactoryError", func(t *testing.T) {
		cause := errors.New("no transport")
		factory := func(ctx context.Context, apiKey string) (ModelsService, error) { return nil, cause }
		gen, _ := NewGeminiImageGenerator(factory, modelName)

		_, err := gen.Generate(ctx, "fox", "key")
		assert.ErrorIs(t, err, cause)
	})
}

func TestNewGeminiImageGenerator(t *testing.T) {
	_, err := NewGeminiImageGenerator(nil, "model")
	assert.Error(t, err)

	_, err = NewGeminiImageGenerator(factoryFor(&mockModels{}, nil), "")
	assert.Error(t, err)
}
