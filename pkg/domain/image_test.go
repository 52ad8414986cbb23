package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageSlot(t *testing.T) {
	t.Run("空の枠はDataURLを持たない", func(t *testing.T) {
		var s ImageSlot
		assert.True(t, s.IsEmpty())
		assert.Equal(t, "", s.DataURL())
	})

	t.Run("画像入りの枠はdata URLとバイト列を返す", func(t *testing.T) {
		s := ImageSlot{Base64: "aGVsbG8=", MimeType: "image/png"}
		assert.False(t, s.IsEmpty())
		assert.Equal(t, "data:image/png;base64,aGVsbG8=", s.DataURL())

		b, err := s.Bytes()
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), b)
	})
}

func TestImageResponse_DataURL(t *testing.T) {
	resp := &ImageResponse{Data: []byte("hello"), MimeType: "image/jpeg"}
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", resp.DataURL())

	var nilResp *ImageResponse
	assert.Equal(t, "", nilResp.DataURL())
}

func TestActiveMode(t *testing.T) {
	m, ok := ParseMode("combine")
	require.True(t, ok)
	assert.Equal(t, ModeCombine, m)
	assert.Equal(t, "Combine", m.ActionLabel())
	assert.Equal(t, "Generate", ModeGenerate.ActionLabel())

	_, ok = ParseMode("edit")
	assert.False(t, ok)
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("boom")
	err := &GenerationError{Kind: KindOther, Message: "Gemini合成エラー", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Gemini合成エラー: boom", err.Error())
	assert.Equal(t, "boom", err.Detail())

	empty := NewEmptyResultError("no image produced")
	assert.Equal(t, KindEmpty, empty.Kind)
	assert.Equal(t, "no image produced", empty.Error())
}
