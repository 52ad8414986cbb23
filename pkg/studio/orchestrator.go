package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// Outcome は1回の Run の結果分類です。
type Outcome string

const (
	OutcomeMissingCredential Outcome = "missing_credential"
	OutcomeValidation        Outcome = "validation"
	OutcomeSuccess           Outcome = "success"
	OutcomeEmpty             Outcome = "empty"
	OutcomeNotFound          Outcome = "not_found"
	OutcomeInvalidCredential Outcome = "invalid_credential"
	OutcomeFailed            Outcome = "failed"
)

// CredentialEnvVar は認証情報を読み出す環境変数名です。
const CredentialEnvVar = "GEMINI_API_KEY"

// 利用者に表示するステータスメッセージです。
const (
	MsgMissingCredential    = "API key is not configured. Please select an API key to continue."
	MsgSetEnvironment       = "API key is not configured. Please set the " + CredentialEnvVar + " environment variable and try again."
	MsgEmptyGeneratePrompt  = "Please enter a prompt to generate an image."
	MsgNotEnoughImages      = "Please upload at least two images to combine."
	MsgEmptyCombinePrompt   = "Please enter instructions for combining the images."
	MsgGenerating           = "Generating image..."
	MsgCombining            = "Combining images..."
	MsgGenerated            = "Image generated successfully!"
	MsgCombined             = "Images combined successfully!"
	MsgModelNotFound        = "The requested model was not found for this API key. Please select a different API key."
	MsgInvalidCredential    = "Your API key is invalid or lacks permission. Please select a valid API key."
	MsgEmptyFile            = "The selected file is empty. Please choose another image."
	errorPrefix             = "Error: "
	minImagesForCombination = 2
)

// request は検証済みの1リクエスト分の入力です。
type request struct {
	mode   domain.ActiveMode
	prompt string
	images []domain.ImageSlot
}

// Run は主ボタン押下時の処理です。結果はすべてステータスと出力に反映され、
// 呼び出し元に返るエラーは ErrBusy だけです。
func (s *Studio) Run(ctx context.Context) (Outcome, error) {
	if !s.guard.TryAcquire(1) {
		return "", ErrBusy
	}
	defer s.guard.Release(1)

	start := time.Now()
	mode := s.Mode()
	outcome := s.run(ctx)
	if s.recorder != nil {
		s.recorder.Observe(mode, outcome, time.Since(start))
	}
	slog.InfoContext(ctx, "リクエストが完了しました", "mode", mode.String(), "outcome", string(outcome), "elapsed", time.Since(start))
	return outcome, nil
}

func (s *Studio) run(ctx context.Context) Outcome {
	credential, ok := s.creds.Credential()
	if !ok || strings.TrimSpace(credential) == "" {
		s.handleMissingCredential(ctx)
		return OutcomeMissingCredential
	}

	req, ok := s.prepare()
	if !ok {
		return OutcomeValidation
	}

	s.begin(req.mode)
	defer s.setControlsDisabled(false)

	resp, err := s.call(ctx, req, credential)
	if err != nil {
		return s.fail(ctx, err)
	}

	s.succeed(req.mode, resp)
	return OutcomeSuccess
}

func (s *Studio) handleMissingCredential(ctx context.Context) {
	s.setStatus(MsgMissingCredential, StatusError)
	if s.keys == nil {
		s.setStatus(MsgSetEnvironment, StatusError)
		return
	}
	if err := s.keys.OpenKeySelector(ctx); err != nil {
		slog.WarnContext(ctx, "キー選択ダイアログを開けませんでした", "error", err)
		s.setStatus(MsgSetEnvironment, StatusError)
	}
}

// prepare はモードごとの入力条件を検証し、満たさない場合はステータスを設定して false を返します。
func (s *Studio) prepare() (request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case domain.ModeCombine:
		images := s.populatedLocked()
		if len(images) < minImagesForCombination {
			s.status = Status{Message: MsgNotEnoughImages, Kind: StatusError}
			return request{}, false
		}
		prompt := strings.TrimSpace(s.combinePrompt)
		if prompt == "" {
			s.status = Status{Message: MsgEmptyCombinePrompt, Kind: StatusError}
			return request{}, false
		}
		return request{mode: domain.ModeCombine, prompt: prompt, images: images}, true
	default:
		prompt := strings.TrimSpace(s.generatePrompt)
		if prompt == "" {
			s.status = Status{Message: MsgEmptyGeneratePrompt, Kind: StatusError}
			return request{}, false
		}
		return request{mode: domain.ModeGenerate, prompt: prompt}, true
	}
}

// begin は前回の出力を消し、すべての入力を無効化します。
func (s *Studio) begin(mode domain.ActiveMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = Output{}
	s.controlsDisabled = true
	for i := range s.slots {
		s.slots[i].dragHover = false
	}
	msg := MsgGenerating
	if mode == domain.ModeCombine {
		msg = MsgCombining
	}
	s.status = Status{Message: msg, Kind: StatusInfo}
}

func (s *Studio) setControlsDisabled(disabled bool) {
	s.mu.Lock()
	s.controlsDisabled = disabled
	s.mu.Unlock()
}

// call はモードに応じたリモート操作を呼び出します。パニックもエラーとして扱います。
func (s *Studio) call(ctx context.Context, req request, credential string) (resp *domain.ImageResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()

	if req.mode == domain.ModeCombine {
		resp, err = s.remote.Combine(ctx, req.prompt, req.images, credential)
	} else {
		resp, err = s.remote.Generate(ctx, req.prompt, credential)
	}
	if err == nil && (resp == nil || len(resp.Data) == 0) {
		err = domain.NewEmptyResultError("no image produced")
	}
	return resp, err
}

func (s *Studio) succeed(mode domain.ActiveMode, resp *domain.ImageResponse) {
	msg := MsgGenerated
	if mode == domain.ModeCombine {
		msg = MsgCombined
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = Output{Image: resp, Visible: true, DownloadVisible: true}
	s.status = Status{Message: msg, Kind: StatusSuccess}
}

// fail はエラーを利用者向けメッセージに変換します。
// 認証情報に関する失敗ではキー選択ダイアログも開きます。
func (s *Studio) fail(ctx context.Context, err error) Outcome {
	slog.WarnContext(ctx, "画像リクエストに失敗しました", "error", err)

	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		s.setStatus(errorPrefix+err.Error(), StatusError)
		return OutcomeFailed
	}

	switch genErr.Kind {
	case domain.KindNotFound:
		s.setStatus(MsgModelNotFound, StatusError)
		s.openKeySelector(ctx)
		return OutcomeNotFound
	case domain.KindInvalidCredential:
		s.setStatus(MsgInvalidCredential, StatusError)
		s.openKeySelector(ctx)
		return OutcomeInvalidCredential
	case domain.KindEmpty:
		s.setStatus(errorPrefix+genErr.Detail(), StatusError)
		return OutcomeEmpty
	default:
		s.setStatus(errorPrefix+genErr.Detail(), StatusError)
		return OutcomeFailed
	}
}

func (s *Studio) openKeySelector(ctx context.Context) {
	if s.keys == nil {
		return
	}
	if err := s.keys.OpenKeySelector(ctx); err != nil {
		slog.WarnContext(ctx, "キー選択ダイアログを開けませんでした", "error", err)
	}
}
