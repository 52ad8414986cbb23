package studio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// fakeRemote は RemoteClient のテスト用モックです。
type fakeRemote struct {
	mu           sync.Mutex
	generateFunc func(ctx context.Context, prompt, credential string) (*domain.ImageResponse, error)
	combineFunc  func(ctx context.Context, prompt string, images []domain.ImageSlot, credential string) (*domain.ImageResponse, error)
	calls        int
}

func (f *fakeRemote) Generate(ctx context.Context, prompt, credential string) (*domain.ImageResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.generateFunc != nil {
		return f.generateFunc(ctx, prompt, credential)
	}
	return nil, errors.New("generate not expected")
}

func (f *fakeRemote) Combine(ctx context.Context, prompt string, images []domain.ImageSlot, credential string) (*domain.ImageResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.combineFunc != nil {
		return f.combineFunc(ctx, prompt, images, credential)
	}
	return nil, errors.New("combine not expected")
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// staticCreds は固定の認証情報を返します。
type staticCreds struct {
	key string
	ok  bool
}

func (c staticCreds) Credential() (string, bool) { return c.key, c.ok }

var validCreds = staticCreds{key: "test-key", ok: true}

// fakeKeys はキー選択ダイアログの呼び出し回数を記録します。
type fakeKeys struct {
	opened int
	err    error
}

func (k *fakeKeys) OpenKeySelector(ctx context.Context) error {
	k.opened++
	return k.err
}

// fakeFetcher は URLFetcher のテスト用モックです。
type fakeFetcher struct {
	data     []byte
	mimeType string
	err      error
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	return f.data, f.mimeType, f.err
}

// fakeRecorder は記録された結果を保持します。
type fakeRecorder struct {
	outcomes []Outcome
}

func (r *fakeRecorder) Observe(mode domain.ActiveMode, outcome Outcome, elapsed time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}
