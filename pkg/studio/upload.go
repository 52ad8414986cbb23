package studio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/encoder"
)

// File はクリックまたはドロップで渡された1ファイルです。
type File struct {
	Reader      io.Reader
	ContentType string
}

// UploadArea は1つのアップロード枠を操作するコントローラーです。
// 書き込み先は生成時に決まった index だけなので、枠ごとの読み込みが前後しても競合しません。
type UploadArea struct {
	studio *Studio
	index  int
}

// Area は指定した枠のコントローラーを返します。
func (s *Studio) Area(index int) (*UploadArea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.slots) {
		return nil, fmt.Errorf("%w: %d", ErrSlotOutOfRange, index)
	}
	return &UploadArea{studio: s, index: index}, nil
}

// AddSlot は空の枠を末尾に追加します（画像追加ボタン）。
func (s *Studio) AddSlot() (*UploadArea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.controlsDisabled {
		return nil, ErrControlsDisabled
	}
	s.slots = append(s.slots, slotState{})
	return &UploadArea{studio: s, index: len(s.slots) - 1}, nil
}

// Slots は画像の入った枠だけを順番どおりに返します。
func (s *Studio) Slots() []domain.ImageSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.populatedLocked()
}

func (s *Studio) populatedLocked() []domain.ImageSlot {
	var out []domain.ImageSlot
	for _, st := range s.slots {
		if !st.image.IsEmpty() {
			out = append(out, st.image)
		}
	}
	return out
}

// Index は枠の位置を返します。
func (a *UploadArea) Index() int {
	return a.index
}

// Select はクリックで選択されたファイルを枠に読み込みます。
func (a *UploadArea) Select(f File) error {
	if err := a.checkInteractive(); err != nil {
		return err
	}
	slot, err := encoder.Encode(f.Reader, f.ContentType)
	if err != nil {
		return err
	}
	return a.store(slot)
}

// Drop はドロップされたファイルのうち先頭の1件だけを読み込みます。
// ホバー表示はファイルの有無にかかわらず解除します。
func (a *UploadArea) Drop(files ...File) error {
	if err := a.setHover(false); err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}
	return a.Select(files[0])
}

// DragOver はドラッグ中のホバー表示を有効にします。処理中は ErrControlsDisabled を返します。
func (a *UploadArea) DragOver() error {
	return a.setHover(true)
}

// DragLeave はホバー表示を解除します。
func (a *UploadArea) DragLeave() error {
	return a.setHover(false)
}

// LoadURL は URL の画像を取得して枠に読み込みます。
func (a *UploadArea) LoadURL(ctx context.Context, rawURL string) error {
	if a.studio.fetcher == nil {
		return errors.New("studio: loading images from URL is not enabled")
	}
	if err := a.checkInteractive(); err != nil {
		return err
	}
	data, mimeType, err := a.studio.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	return a.store(encoder.EncodeBytes(data, mimeType))
}

func (a *UploadArea) checkInteractive() error {
	a.studio.mu.Lock()
	defer a.studio.mu.Unlock()
	if a.studio.controlsDisabled {
		return ErrControlsDisabled
	}
	return nil
}

func (a *UploadArea) store(slot domain.ImageSlot) error {
	s := a.studio
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.controlsDisabled {
		return ErrControlsDisabled
	}
	// 空のファイルで既存の画像を消さない
	if slot.IsEmpty() {
		s.status = Status{Message: MsgEmptyFile, Kind: StatusError}
		return ErrEmptyFile
	}
	s.slots[a.index].image = slot
	return nil
}

func (a *UploadArea) setHover(on bool) error {
	s := a.studio
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.controlsDisabled {
		return ErrControlsDisabled
	}
	s.slots[a.index].dragHover = on
	return nil
}
