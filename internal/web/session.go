package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shouni/gemini-image-studio/pkg/studio"
)

const sessionCookieName = "studio_session"

// StudioFactory はセッションごとの Studio を組み立てます。
// keys が nil の場合、キー入力フォームは使わずに環境変数の案内を表示します。
type StudioFactory func(creds studio.CredentialSource, keys studio.KeySelector) (*studio.Studio, error)

// Session はブラウザ1つ分の状態です。
type Session struct {
	ID     string
	Studio *studio.Studio

	mu          sync.Mutex
	apiKey      string
	keyFormOpen bool
}

// SetAPIKey はキー入力フォームから渡されたキーを保存し、フォームを閉じます。
func (s *Session) SetAPIKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKey = strings.TrimSpace(key)
	s.keyFormOpen = false
}

// HasAPIKey はセッションにキーが保存されているかを返します。
func (s *Session) HasAPIKey() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey != ""
}

// KeyFormOpen はキー入力フォームを表示するかを返します。
func (s *Session) KeyFormOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyFormOpen
}

// sessionCredentials はセッションのキーを優先し、なければ環境変数を参照します。
type sessionCredentials struct {
	session  *Session
	fallback studio.CredentialSource
}

func (c sessionCredentials) Credential() (string, bool) {
	c.session.mu.Lock()
	key := c.session.apiKey
	c.session.mu.Unlock()
	if key != "" {
		return key, true
	}
	return c.fallback.Credential()
}

// sessionKeySelector はキー選択ダイアログの代わりにキー入力フォームを開きます。
type sessionKeySelector struct {
	session *Session
}

func (k sessionKeySelector) OpenKeySelector(ctx context.Context) error {
	k.session.mu.Lock()
	k.session.keyFormOpen = true
	k.session.mu.Unlock()
	return nil
}

// SessionStore はセッションを有効期限付きの LRU で保持します。
type SessionStore struct {
	cache         *expirable.LRU[string, *Session]
	newStudio     StudioFactory
	credentials   studio.CredentialSource
	allowKeyEntry bool
	ttl           time.Duration
}

// NewSessionStore は SessionStore を生成します。
func NewSessionStore(newStudio StudioFactory, creds studio.CredentialSource, size int, ttl time.Duration, allowKeyEntry bool) (*SessionStore, error) {
	if newStudio == nil {
		return nil, errors.New("newStudio (StudioFactory) is required")
	}
	if creds == nil {
		return nil, errors.New("creds (CredentialSource) is required")
	}
	return &SessionStore{
		cache:         expirable.NewLRU[string, *Session](size, nil, ttl),
		newStudio:     newStudio,
		credentials:   creds,
		allowKeyEntry: allowKeyEntry,
		ttl:           ttl,
	}, nil
}

// Len は保持中のセッション数です。
func (s *SessionStore) Len() int {
	return s.cache.Len()
}

// Get はクッキーに対応するセッションを返します。なければ新しく作成します。
// セッションの有効期限はアクセスのたびに延長されるため、クッキーも毎回発行し直します。
func (s *SessionStore) Get(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if sess, ok := s.cache.Get(c.Value); ok {
			s.cache.Add(sess.ID, sess)
			s.setCookie(w, r, sess)
			return sess, nil
		}
	}

	sess, err := s.create()
	if err != nil {
		return nil, err
	}
	s.setCookie(w, r, sess)
	return sess, nil
}

func (s *SessionStore) setCookie(w http.ResponseWriter, r *http.Request, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
}

func (s *SessionStore) create() (*Session, error) {
	sess := &Session{ID: uuid.NewString()}

	var keys studio.KeySelector
	if s.allowKeyEntry {
		keys = sessionKeySelector{session: sess}
	}
	st, err := s.newStudio(sessionCredentials{session: sess, fallback: s.credentials}, keys)
	if err != nil {
		return nil, err
	}
	sess.Studio = st
	s.cache.Add(sess.ID, sess)
	return sess, nil
}

type sessionKey struct{}

// withSession はリクエストにセッションを紐付けるミドルウェアです。
func (s *SessionStore) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.Get(w, r)
		if err != nil {
			http.Error(w, "failed to start session", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey{}).(*Session)
	return sess
}
