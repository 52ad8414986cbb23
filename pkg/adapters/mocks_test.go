package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"google.golang.org/genai"
)

// mockModels は ModelsService のテスト用モックです。
type mockModels struct {
	generateImagesFunc  func(model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
	generateContentFunc func(model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *mockModels) GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	if m.generateImagesFunc != nil {
		return m.generateImagesFunc(model, prompt, config)
	}
	return &genai.GenerateImagesResponse{}, nil
}

func (m *mockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if m.generateContentFunc != nil {
		return m.generateContentFunc(model, contents, config)
	}
	return &genai.GenerateContentResponse{}, nil
}

// factoryFor は固定のモックを返すファクトリを作り、渡された認証情報を記録します。
func factoryFor(m *mockModels, gotKey *string) ClientFactory {
	return func(ctx context.Context, apiKey string) (ModelsService, error) {
		if gotKey != nil {
			*gotKey = apiKey
		}
		return m, nil
	}
}

// mockHTTPClient は HTTPClient のテスト用モックです。
type mockHTTPClient struct {
	calls     int
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.calls++
	return m.fetchFunc(ctx, url)
}

// mockReader は remoteio.InputReader のテスト用モックです。
type mockReader struct {
	objects map[string][]byte
	err     error
	opened  []string
}

func (m *mockReader) Open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	m.opened = append(m.opened, filePath)
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.objects[filePath]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", filePath)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockReader) List(ctx context.Context, path string, callback func(filePath string) error) error {
	return nil
}

// mockCache は ImageCacher のテスト用モックです。
type mockCache struct {
	data map[string][]byte
}

func (m *mockCache) Get(key string) ([]byte, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockCache) Add(key string, value []byte) bool {
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = value
	return false
}

func candidateWith(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}
