package studio

import "github.com/shouni/gemini-image-studio/pkg/domain"

var modes = []domain.ActiveMode{domain.ModeGenerate, domain.ModeCombine}

// SwitchMode はタブを切り替えます。
// 入力済みのプロンプトやアップロード済みの画像は消去しません。
func (s *Studio) SwitchMode(mode domain.ActiveMode) {
	if mode != domain.ModeGenerate && mode != domain.ModeCombine {
		return
	}
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
}

// Mode は現在のモードを返します。
func (s *Studio) Mode() domain.ActiveMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Studio) tabsLocked() []Tab {
	tabs := make([]Tab, len(modes))
	for i, m := range modes {
		tabs[i] = Tab{Mode: m, Label: m.ActionLabel(), Active: m == s.mode}
	}
	return tabs
}
