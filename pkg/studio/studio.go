package studio

import (
	"fmt"
	"sync"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"golang.org/x/sync/semaphore"
)

// DefaultSlotCount は初期表示するアップロード枠の数です。
const DefaultSlotCount = 2

// Studio は1利用者分のアプリケーション状態と、それを操作するオーケストレーターです。
// 画面（HTML）は Snapshot から描画されるだけで、状態の持ち主にはなりません。
type Studio struct {
	mu               sync.Mutex
	mode             domain.ActiveMode
	generatePrompt   string
	combinePrompt    string
	slots            []slotState
	status           Status
	output           Output
	controlsDisabled bool

	// guard は同時に1件だけリモート呼び出しを許可するためのものです。
	// controlsDisabled とは独立して判定します。
	guard *semaphore.Weighted

	remote   RemoteClient
	creds    CredentialSource
	keys     KeySelector
	fetcher  URLFetcher
	recorder Recorder
}

// Option は Studio の任意の依存関係を設定します。
type Option func(*Studio)

// WithKeySelector はキー選択ダイアログを設定します。未設定の場合は環境変数の案内を表示します。
func WithKeySelector(k KeySelector) Option {
	return func(s *Studio) { s.keys = k }
}

// WithURLFetcher は URL からの画像読み込みを有効にします。
func WithURLFetcher(f URLFetcher) Option {
	return func(s *Studio) { s.fetcher = f }
}

// WithRecorder はリクエスト結果の記録先を設定します。
func WithRecorder(r Recorder) Option {
	return func(s *Studio) { s.recorder = r }
}

// WithSlotCount は初期のアップロード枠数を変更します。
func WithSlotCount(n int) Option {
	return func(s *Studio) {
		if n >= 0 {
			s.slots = make([]slotState, n)
		}
	}
}

// New は依存関係を注入して Studio を初期化します。
func New(remote RemoteClient, creds CredentialSource, opts ...Option) (*Studio, error) {
	if remote == nil {
		return nil, fmt.Errorf("remote (RemoteClient) is required")
	}
	if creds == nil {
		return nil, fmt.Errorf("creds (CredentialSource) is required")
	}

	s := &Studio{
		mode:   domain.ModeGenerate,
		slots:  make([]slotState, DefaultSlotCount),
		guard:  semaphore.NewWeighted(1),
		remote: remote,
		creds:  creds,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Snapshot は現在の状態のコピーを返します。
func (s *Studio) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots := make([]SlotView, len(s.slots))
	for i, st := range s.slots {
		slots[i] = SlotView{
			Index:       i,
			Preview:     st.image.DataURL(),
			HasPreview:  !st.image.IsEmpty(),
			DragHover:   st.dragHover,
			Interactive: !s.controlsDisabled,
		}
	}

	return Snapshot{
		Mode:                 s.mode,
		Tabs:                 s.tabsLocked(),
		GeneratePanelVisible: s.mode == domain.ModeGenerate,
		CombinePanelVisible:  s.mode == domain.ModeCombine,
		ActionLabel:          s.mode.ActionLabel(),
		GeneratePrompt:       s.generatePrompt,
		CombinePrompt:        s.combinePrompt,
		Slots:                slots,
		Status:               s.status,
		Output:               s.output,
		ControlsDisabled:     s.controlsDisabled,
	}
}

// SetGeneratePrompt は生成用プロンプトを保存します。
func (s *Studio) SetGeneratePrompt(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.controlsDisabled {
		return ErrControlsDisabled
	}
	s.generatePrompt = text
	return nil
}

// SetCombinePrompt は合成用の指示文を保存します。
func (s *Studio) SetCombinePrompt(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.controlsDisabled {
		return ErrControlsDisabled
	}
	s.combinePrompt = text
	return nil
}

// Output は現在の出力画像を返します。表示されていない場合は nil です。
func (s *Studio) Output() *domain.ImageResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.output.DownloadVisible {
		return nil
	}
	return s.output.Image
}

func (s *Studio) setStatus(msg string, kind StatusKind) {
	s.mu.Lock()
	s.status = Status{Message: msg, Kind: kind}
	s.mu.Unlock()
}
