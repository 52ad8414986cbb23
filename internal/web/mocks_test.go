package web

import (
	"context"
	"errors"
	"sync"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/studio"
)

// fakeRemote は studio.RemoteClient のテスト用モックです。
type fakeRemote struct {
	mu          sync.Mutex
	generated   []string
	combined    [][]domain.ImageSlot
	credentials []string
	resp        *domain.ImageResponse
	err         error

	// started と release が設定されている場合、Generate は release が閉じられるまで待ちます。
	started chan struct{}
	release chan struct{}
}

func (f *fakeRemote) Generate(ctx context.Context, prompt, credential string) (*domain.ImageResponse, error) {
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generated = append(f.generated, prompt)
	f.credentials = append(f.credentials, credential)
	return f.resp, f.err
}

func (f *fakeRemote) Combine(ctx context.Context, prompt string, images []domain.ImageSlot, credential string) (*domain.ImageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.combined = append(f.combined, images)
	f.credentials = append(f.credentials, credential)
	return f.resp, f.err
}

// staticCreds は固定の認証情報を返します。
type staticCreds struct {
	key string
}

func (c staticCreds) Credential() (string, bool) { return c.key, c.key != "" }

// fakeFetcher は studio.URLFetcher のテスト用モックです。
type fakeFetcher struct {
	data     []byte
	mimeType string
}

func (f fakeFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if f.data == nil {
		return nil, "", errors.New("not found")
	}
	return f.data, f.mimeType, nil
}

// newStudioFactory はテスト用の StudioFactory を返します。
func newStudioFactory(remote studio.RemoteClient, fetcher studio.URLFetcher, rec studio.Recorder) StudioFactory {
	return func(creds studio.CredentialSource, keys studio.KeySelector) (*studio.Studio, error) {
		opts := []studio.Option{studio.WithURLFetcher(fetcher)}
		if keys != nil {
			opts = append(opts, studio.WithKeySelector(keys))
		}
		if rec != nil {
			opts = append(opts, studio.WithRecorder(rec))
		}
		return studio.New(remote, creds, opts...)
	}
}
