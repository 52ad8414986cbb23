package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config はサーバーの設定値です。認証情報は含みません（リクエストごとに環境から読み直すため）。
type Config struct {
	Addr             string
	GenerateModel    string
	CombineModel     string
	SessionTTL       time.Duration
	MaxSessions      int
	AllowKeyEntry    bool
	FetchTimeout     time.Duration
	FetchCacheTTL    time.Duration
	FetchCacheSize   int
	RemoteStorage    string
	MaxUploadBytes   int64
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	LogLevel         string
	LogFormat        string
}

// 設定キーと既定値です。環境変数は STUDIO_ 接頭辞付きの大文字名で上書きできます。
const (
	KeyAddr             = "addr"
	KeyGenerateModel    = "generate-model"
	KeyCombineModel     = "combine-model"
	KeySessionTTL       = "session-ttl"
	KeyMaxSessions      = "max-sessions"
	KeyAllowKeyEntry    = "allow-key-entry"
	KeyFetchTimeout     = "fetch-timeout"
	KeyFetchCacheTTL    = "fetch-cache-ttl"
	KeyFetchCacheSize   = "fetch-cache-size"
	KeyRemoteStorage    = "remote-storage"
	KeyMaxUploadBytes   = "max-upload-bytes"
	KeyHTTPReadTimeout  = "http-read-timeout"
	KeyHTTPWriteTimeout = "http-write-timeout"
	KeyLogLevel         = "log-level"
	KeyLogFormat        = "log-format"

	envPrefix = "STUDIO"
)

// RemoteStorage に指定できる値です。
const (
	RemoteStorageGCS = "gcs"
	RemoteStorageS3  = "s3"
)

// RegisterFlags はサーバー用のフラグを登録します。
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyAddr, ":8080", "listen address")
	fs.String(KeyGenerateModel, "imagen-4.0-generate-001", "model used for text-to-image generation")
	fs.String(KeyCombineModel, "gemini-2.5-flash-image", "multimodal model used to combine images")
	fs.Duration(KeySessionTTL, 2*time.Hour, "idle lifetime of a browser session")
	fs.Int(KeyMaxSessions, 256, "maximum number of concurrent browser sessions")
	fs.Bool(KeyAllowKeyEntry, true, "show an API key form when the key is missing or rejected")
	fs.Duration(KeyFetchTimeout, 20*time.Second, "timeout for downloading slot images from URLs")
	fs.Duration(KeyFetchCacheTTL, 10*time.Minute, "lifetime of cached URL downloads")
	fs.Int(KeyFetchCacheSize, 64, "number of cached URL downloads")
	fs.String(KeyRemoteStorage, "", "cloud storage for gs:// or s3:// slot URLs (gcs, s3); empty disables it")
	fs.Int64(KeyMaxUploadBytes, 32<<20, "maximum multipart form size kept in memory")
	fs.Duration(KeyHTTPReadTimeout, 30*time.Second, "HTTP server read timeout")
	fs.Duration(KeyHTTPWriteTimeout, 3*time.Minute, "HTTP server write timeout")
	fs.String(KeyLogLevel, "info", "log level (debug, info, warn, error)")
	fs.String(KeyLogFormat, "text", "log format (text, json)")
}

// Load は .env を読み込み、フラグ・環境変数・既定値の順で設定を解決します。
func Load(fs *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn(".env の読み込みに失敗しました", "error", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("フラグのバインドに失敗しました: %w", err)
	}

	cfg := &Config{
		Addr:             v.GetString(KeyAddr),
		GenerateModel:    v.GetString(KeyGenerateModel),
		CombineModel:     v.GetString(KeyCombineModel),
		SessionTTL:       v.GetDuration(KeySessionTTL),
		MaxSessions:      v.GetInt(KeyMaxSessions),
		AllowKeyEntry:    v.GetBool(KeyAllowKeyEntry),
		FetchTimeout:     v.GetDuration(KeyFetchTimeout),
		FetchCacheTTL:    v.GetDuration(KeyFetchCacheTTL),
		FetchCacheSize:   v.GetInt(KeyFetchCacheSize),
		RemoteStorage:    strings.ToLower(strings.TrimSpace(v.GetString(KeyRemoteStorage))),
		MaxUploadBytes:   v.GetInt64(KeyMaxUploadBytes),
		HTTPReadTimeout:  v.GetDuration(KeyHTTPReadTimeout),
		HTTPWriteTimeout: v.GetDuration(KeyHTTPWriteTimeout),
		LogLevel:         v.GetString(KeyLogLevel),
		LogFormat:        v.GetString(KeyLogFormat),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の整合性を確認します。
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.GenerateModel == "" || c.CombineModel == "" {
		return fmt.Errorf("generate-model and combine-model are required")
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("max-sessions must be positive: %d", c.MaxSessions)
	}
	if c.FetchCacheSize <= 0 {
		return fmt.Errorf("fetch-cache-size must be positive: %d", c.FetchCacheSize)
	}
	switch c.RemoteStorage {
	case "", RemoteStorageGCS, RemoteStorageS3:
	default:
		return fmt.Errorf("remote-storage must be gcs or s3: %q", c.RemoteStorage)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max-upload-bytes must be positive: %d", c.MaxUploadBytes)
	}
	return nil
}

// Level は LogLevel を slog.Level に変換します。不明な値は Info として扱います。
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
