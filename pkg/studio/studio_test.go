package studio

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStudio(t *testing.T, remote RemoteClient, opts ...Option) *Studio {
	t.Helper()
	s, err := New(remote, validCreds, opts...)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	t.Run("必須の依存関係がない場合はエラー", func(t *testing.T) {
		_, err := New(nil, validCreds)
		assert.Error(t, err)
		_, err = New(&fakeRemote{}, nil)
		assert.Error(t, err)
	})

	t.Run("初期状態", func(t *testing.T) {
		s := newTestStudio(t, &fakeRemote{})
		snap := s.Snapshot()

		assert.Equal(t, domain.ModeGenerate, snap.Mode)
		assert.Len(t, snap.Slots, DefaultSlotCount)
		assert.Equal(t, "Generate", snap.ActionLabel)
		assert.True(t, snap.GeneratePanelVisible)
		assert.False(t, snap.CombinePanelVisible)
		assert.False(t, snap.Output.Visible)
		assert.False(t, snap.ControlsDisabled)
	})

	t.Run("枠数を変更できる", func(t *testing.T) {
		s := newTestStudio(t, &fakeRemote{}, WithSlotCount(4))
		assert.Len(t, s.Snapshot().Slots, 4)
	})
}

func TestStudio_SwitchMode(t *testing.T) {
	s := newTestStudio(t, &fakeRemote{})
	require.NoError(t, s.SetGeneratePrompt("a red fox"))
	require.NoError(t, s.SetCombinePrompt("merge these"))
	area, err := s.Area(0)
	require.NoError(t, err)
	require.NoError(t, area.Select(File{Reader: bytes.NewReader([]byte("img")), ContentType: "image/png"}))

	t.Run("Combineに切り替えるとパネルとラベルが変わる", func(t *testing.T) {
		s.SwitchMode(domain.ModeCombine)
		snap := s.Snapshot()

		assert.Equal(t, "Combine", snap.ActionLabel)
		assert.True(t, snap.CombinePanelVisible)
		assert.False(t, snap.GeneratePanelVisible)

		active := 0
		for _, tab := range snap.Tabs {
			if tab.Active {
				active++
				assert.Equal(t, domain.ModeCombine, tab.Mode)
			}
		}
		assert.Equal(t, 1, active)
	})

	t.Run("同じモードへの切り替えは入力を消さない", func(t *testing.T) {
		before := s.Snapshot()
		s.SwitchMode(domain.ModeCombine)
		s.SwitchMode(domain.ModeGenerate)
		s.SwitchMode(domain.ModeCombine)
		after := s.Snapshot()

		assert.Equal(t, before.GeneratePrompt, after.GeneratePrompt)
		assert.Equal(t, before.CombinePrompt, after.CombinePrompt)
		assert.Equal(t, before.Slots, after.Slots)
		assert.Equal(t, "a red fox", after.GeneratePrompt)
		assert.True(t, after.Slots[0].HasPreview)
	})

	t.Run("未知のモードは無視する", func(t *testing.T) {
		s.SwitchMode(domain.ActiveMode(42))
		assert.Equal(t, domain.ModeCombine, s.Mode())
	})
}

func TestStudio_Upload(t *testing.T) {
	t.Run("クリック選択で枠にプレビューが表示される", func(t *testing.T) {
		s := newTestStudio(t, &fakeRemote{})
		area, err := s.Area(1)
		require.NoError(t, err)

		require.NoError(t, area.Select(File{Reader: bytes.NewReader([]byte("hello")), ContentType: "image/png"}))

		snap := s.Snapshot()
		assert.False(t, snap.Slots[0].HasPreview)
		assert.True(t, snap.Slots[1].HasPreview)
		assert.Equal(t, "data:image/png;base64,aGVsbG8=", snap.Slots[1].Preview)
	})

	t.Run("同じ枠への再選択は上書きする", func(t *testing.T) {
		s := newTestStudio(t, &fakeRemote{})
		area, _ := s.Area(0)
		require.NoError(t, area.Select(File{Reader: bytes.NewReader([]byte("one")), ContentType: "image/png"}))
		require.NoError(t, area.Select(File{Reader: bytes.NewReader([]byte("two")), ContentType: "image/jpeg"}))

		slots := s.Slots()
		require.Len(t, slots, 1)
		assert.Equal(t, "image/jpeg", slots[0].MimeType)
		assert.Equal(t, "dHdv", slots[0].Base64)
	})

	t.Run("ドロップは先頭のファイルだけを使いホバーを解除する", func(t *testing.T) {
		s := newTestStudio(t, &fakeRemote{})
		area, _ := s.Area(0)

		require.NoError(t, area.DragOver())
		assert.True(t, s.Snapshot().Slots[0].DragHover)

		err := area.Drop(
			File{Reader: bytes.NewReader([]byte("first")), ContentType: "image/png"},
			File{Reader: bytes.NewReader([]byte("second")), ContentType: "image/png"},
		)
		require.NoError(t, err)

		snap := s.Snapshot()
		assert.False(t, snap.Slots[0].DragHover)
		assert.Equal(t, "data:image/png;base64,Zmlyc3Q=", snap.Slots[0].Preview)
		assert.False(t, snap.Slots[1].HasPreview)
	})

	t.Run("DragLeaveでホバーが解除される", func(t *testing.T) {
		s := newTestStudio(t, &fakeRemote{})
		area, _ := s.Area(1)
		require.NoError(t, area.DragOver())
		require.NoError(t, area.DragLeave())
		assert.False(t, s.Snapshot().Slots[1].DragHover)
	})

	t.Run("空のファイルでは既存の画像を消さない", func(t *testing.T) {
		s := newTestStudio(t, &fakeRemote{})
		area, _ := s.Area(0)
		require.NoError(t, area.Select(File{Reader: bytes.NewReader([]byte("one")), ContentType: "image/png"}))

		err := area.Select(File{Reader: bytes.NewReader(nil), ContentType: "image/png"})
		assert.ErrorIs(t, err, ErrEmptyFile)

		snap := s.Snapshot()
		assert.True(t, snap.Slots[0].HasPreview)
		assert.Equal(t, "data:image/png;base64,b25l", snap.Slots[0].Preview)
		assert.Equal(t, Status{Message: MsgEmptyFile, Kind: StatusError}, snap.Status)
		assert.Len(t, s.Slots(), 1)
	})

	t.Run("読み込み失敗時は枠を変更しない", func(t *testing.T) {
		s := newTestStudio(t, &fakeRemote{})
		area, _ := s.Area(0)
		cause := errors.New("read failed")

		err := area.Select(File{Reader: errReader{cause}, ContentType: "image/png"})
		assert.ErrorIs(t, err, cause)
		assert.Empty(t, s.Slots())
	})

	t.Run("存在しない枠はエラー", func(t *testing.T) {
		s := newTestStudio(t, &fakeRemote{})
		_, err := s.Area(5)
		assert.ErrorIs(t, err, ErrSlotOutOfRange)
		_, err = s.Area(-1)
		assert.ErrorIs(t, err, ErrSlotOutOfRange)
	})

	t.Run("枠を追加すると末尾に増える", func(t *testing.T) {
		s := newTestStudio(t, &fakeRemote{})
		area, err := s.AddSlot()
		require.NoError(t, err)
		assert.Equal(t, DefaultSlotCount, area.Index())
		assert.Len(t, s.Snapshot().Slots, DefaultSlotCount+1)
	})

	t.Run("URLから読み込める", func(t *testing.T) {
		s := newTestStudio(t, &fakeRemote{}, WithURLFetcher(&fakeFetcher{data: []byte("hello"), mimeType: "image/gif"}))
		area, _ := s.Area(0)

		require.NoError(t, area.LoadURL(t.Context(), "https://example.com/a.gif"))
		assert.Equal(t, "data:image/gif;base64,aGVsbG8=", s.Snapshot().Slots[0].Preview)
	})

	t.Run("URL取得の失敗はそのまま返す", func(t *testing.T) {
		cause := errors.New("blocked")
		s := newTestStudio(t, &fakeRemote{}, WithURLFetcher(&fakeFetcher{err: cause}))
		area, _ := s.Area(0)

		assert.ErrorIs(t, area.LoadURL(t.Context(), "http://127.0.0.1/"), cause)
		assert.Empty(t, s.Slots())
	})

	t.Run("Fetcher未設定ではURL読み込みは無効", func(t *testing.T) {
		s := newTestStudio(t, &fakeRemote{})
		area, _ := s.Area(0)
		assert.Error(t, area.LoadURL(t.Context(), "https://example.com/a.png"))
	})
}

type errReader struct{ err error }

func (e errReader) Read(p []byte) (int, error) { return 0, e.err }
