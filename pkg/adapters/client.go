package adapters

// Client は生成と合成の両方の操作を提供するリモートクライアントです。
type Client struct {
	*GeminiImageGenerator
	*GeminiCombineAdapter
}

// NewClient は生成用と合成用のモデル名を受け取り、共通のファクトリで Client を組み立てます。
func NewClient(newClient ClientFactory, generateModel, combineModel string) (*Client, error) {
	gen, err := NewGeminiImageGenerator(newClient, generateModel)
	if err != nil {
		return nil, err
	}
	comb, err := NewGeminiCombineAdapter(NewGeminiImageCore(), newClient, combineModel)
	if err != nil {
		return nil, err
	}
	return &Client{GeminiImageGenerator: gen, GeminiCombineAdapter: comb}, nil
}
