package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/studio"
)

// DownloadFilename はダウンロード時の既定のファイル名です。
const DownloadFilename = "generated-image.png"

//go:embed templates/*.html
var templateFS embed.FS

// Server は Studio の状態を HTML に描画し、フォーム操作を Studio に橋渡しする薄いアダプターです。
type Server struct {
	sessions       *SessionStore
	page           *template.Template
	maxUploadBytes int64
}

// pageData はテンプレートに渡す表示用データです。
type pageData struct {
	studio.Snapshot
	KeyFormOpen      bool
	HasSessionKey    bool
	DownloadFilename string
}

// NewServer は Server を生成します。
func NewServer(sessions *SessionStore, maxUploadBytes int64) (*Server, error) {
	if sessions == nil {
		return nil, errors.New("sessions is required")
	}
	page, err := template.New("index.html").Funcs(template.FuncMap{
		"dataURL": func(s string) template.URL { return template.URL(s) },
	}).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("テンプレートの読み込みに失敗しました: %w", err)
	}
	return &Server{sessions: sessions, page: page, maxUploadBytes: maxUploadBytes}, nil
}

// Health は死活監視用のエンドポイントです。
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Index は現在の状態からページを描画します。
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	data := pageData{
		Snapshot:         sess.Studio.Snapshot(),
		KeyFormOpen:      sess.KeyFormOpen(),
		HasSessionKey:    sess.HasAPIKey(),
		DownloadFilename: DownloadFilename,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		slog.ErrorContext(r.Context(), "ページの描画に失敗しました", "error", err)
	}
}

// SwitchMode はタブを切り替えます。入力中のプロンプトは切り替え前に保存します。
func (s *Server) SwitchMode(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context()).Studio
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	mode, ok := domain.ParseMode(r.PostForm.Get("mode"))
	if !ok {
		http.Error(w, "unknown mode", http.StatusBadRequest)
		return
	}
	// 処理中はプロンプト欄が無効なので保存できなくてもタブ切り替えは続行する
	if err := savePrompts(r, st); err != nil && !errors.Is(err, studio.ErrControlsDisabled) {
		s.respondError(w, r, err)
		return
	}
	st.SwitchMode(mode)
	redirectHome(w, r)
}

// SavePrompt はプロンプト欄の内容を保存します。
func (s *Server) SavePrompt(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context()).Studio
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if err := savePrompts(r, st); err != nil {
		s.respondError(w, r, err)
		return
	}
	redirectHome(w, r)
}

// AddSlot は空のアップロード枠を追加します。
func (s *Server) AddSlot(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context()).Studio
	if err := r.ParseForm(); err == nil {
		if err := savePrompts(r, st); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	if _, err := st.AddSlot(); err != nil {
		s.respondError(w, r, err)
		return
	}
	redirectHome(w, r)
}

// Upload は枠にファイル（multipart の file）または URL（url フィールド）の画像を読み込みます。
// drop=1 の場合はドラッグ＆ドロップとして扱い、複数ファイルのうち先頭だけを使います。
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context()).Studio
	area, err := s.area(r, st)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}

	var files []studio.File
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["file"] {
			f, err := fh.Open()
			if err != nil {
				http.Error(w, "invalid upload", http.StatusBadRequest)
				return
			}
			defer f.Close()
			files = append(files, studio.File{Reader: f, ContentType: fh.Header.Get("Content-Type")})
		}
	}

	switch {
	case r.FormValue("drop") == "1":
		err = area.Drop(files...)
	case len(files) > 0:
		err = area.Select(files[0])
	case strings.TrimSpace(r.FormValue("url")) != "":
		err = area.LoadURL(r.Context(), strings.TrimSpace(r.FormValue("url")))
	default:
		http.Error(w, "file or url is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	redirectHome(w, r)
}

// Drag はドラッグ中のホバー表示を切り替えます。
func (s *Server) Drag(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context()).Studio
	area, err := s.area(r, st)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	switch r.FormValue("state") {
	case "over":
		err = area.DragOver()
	case "leave":
		err = area.DragLeave()
	default:
		http.Error(w, "state must be over or leave", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Generate はプロンプトを保存してから主ボタンの処理を実行します。
// 結果はステータスと出力に反映されるため、処理中の重複実行以外は常にページへ戻ります。
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context()).Studio
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if err := savePrompts(r, st); err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, err := st.Run(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	redirectHome(w, r)
}

// SetKey はキー入力フォームからのキーをセッションに保存します。
func (s *Server) SetKey(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !s.sessions.allowKeyEntry {
		http.Error(w, "key entry is disabled", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess.SetAPIKey(r.PostForm.Get("api_key"))
	redirectHome(w, r)
}

// Download は出力画像を既定のファイル名で返します。
func (s *Server) Download(w http.ResponseWriter, r *http.Request) {
	img := sessionFrom(r.Context()).Studio.Output()
	if img == nil {
		http.Error(w, "no image to download", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", DownloadFilename))
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	_, _ = w.Write(img.Data)
}

func (s *Server) area(r *http.Request, st *studio.Studio) (*studio.UploadArea, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", studio.ErrSlotOutOfRange, chi.URLParam(r, "index"))
	}
	return st.Area(index)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, studio.ErrBusy), errors.Is(err, studio.ErrControlsDisabled):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, studio.ErrSlotOutOfRange):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		slog.WarnContext(r.Context(), "リクエストの処理に失敗しました", "path", r.URL.Path, "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	}
}

// savePrompts はフォームに含まれるプロンプト欄だけを保存します。
func savePrompts(r *http.Request, st *studio.Studio) error {
	if v, ok := r.PostForm["generate_prompt"]; ok && len(v) > 0 {
		if err := st.SetGeneratePrompt(v[0]); err != nil {
			return err
		}
	}
	if v, ok := r.PostForm["combine_prompt"]; ok && len(v) > 0 {
		if err := st.SetCombinePrompt(v[0]); err != nil {
			return err
		}
	}
	return nil
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
