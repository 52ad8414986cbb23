package studio

import (
	"errors"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

var (
	// ErrBusy は別のリクエストが処理中のときに返されます。
	ErrBusy = errors.New("studio: request already in flight")
	// ErrControlsDisabled はリクエスト処理中に入力操作が行われたときに返されます。
	ErrControlsDisabled = errors.New("studio: controls are disabled")
	// ErrSlotOutOfRange は存在しない枠を指定したときに返されます。
	ErrSlotOutOfRange = errors.New("studio: slot index out of range")
	// ErrEmptyFile は中身が空のファイルを枠に読み込もうとしたときに返されます。
	ErrEmptyFile = errors.New("studio: file is empty")
)

// StatusKind はステータス行の表示種別です。
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusInfo
	StatusSuccess
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusInfo:
		return "info"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return ""
	}
}

// Status はステータス行の内容です。
type Status struct {
	Message string
	Kind    StatusKind
}

// Output は出力画像とダウンロードボタンの表示状態です。
type Output struct {
	Image           *domain.ImageResponse
	Visible         bool
	DownloadVisible bool
}

// Src は出力画像の src 属性値です。
func (o Output) Src() string {
	return o.Image.DataURL()
}

// SlotView はアップロード枠1つ分の表示用モデルです。
type SlotView struct {
	Index       int
	Preview     string
	HasPreview  bool
	DragHover   bool
	Interactive bool
}

// Tab はタブ1つ分の表示用モデルです。
type Tab struct {
	Mode   domain.ActiveMode
	Label  string
	Active bool
}

// Snapshot は画面描画に必要な状態のコピーです。描画側はこれだけを参照します。
type Snapshot struct {
	Mode                 domain.ActiveMode
	Tabs                 []Tab
	GeneratePanelVisible bool
	CombinePanelVisible  bool
	ActionLabel          string
	GeneratePrompt       string
	CombinePrompt        string
	Slots                []SlotView
	Status               Status
	Output               Output
	ControlsDisabled     bool
}

// slotState はアップロード枠の内部状態です。
type slotState struct {
	image     domain.ImageSlot
	dragHover bool
}
