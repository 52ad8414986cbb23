package domain

// ActiveMode はユーザーが選択中のワークフロー（生成 or 合成）です。
type ActiveMode int

const (
	ModeGenerate ActiveMode = iota
	ModeCombine
)

// ParseMode はフォーム値からモードを解決します。
func ParseMode(s string) (ActiveMode, bool) {
	switch s {
	case "generate":
		return ModeGenerate, true
	case "combine":
		return ModeCombine, true
	}
	return ModeGenerate, false
}

func (m ActiveMode) String() string {
	if m == ModeCombine {
		return "combine"
	}
	return "generate"
}

// ActionLabel は主ボタンに表示するラベルです。
func (m ActiveMode) ActionLabel() string {
	if m == ModeCombine {
		return "Combine"
	}
	return "Generate"
}
