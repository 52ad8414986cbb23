package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shouni/gemini-image-studio/internal/config"
	"github.com/shouni/gemini-image-studio/internal/web"
	"github.com/shouni/gemini-image-studio/pkg/adapters"
	"github.com/shouni/gemini-image-studio/pkg/studio"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-remote-io/pkg/s3factory"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "studio",
		Short:         "Gemini Image Studio: generate or combine images in the browser",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			setupLogger(cfg)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// buildHandler は設定から依存関係を組み立て、HTTP ハンドラーを返します。
func buildHandler(cfg *config.Config, factory adapters.ClientFactory, fetcher studio.URLFetcher) (http.Handler, error) {
	client, err := adapters.NewClient(factory, cfg.GenerateModel, cfg.CombineModel)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := web.NewMetrics(reg)

	newStudio := func(creds studio.CredentialSource, keys studio.KeySelector) (*studio.Studio, error) {
		opts := []studio.Option{studio.WithRecorder(metrics)}
		if keys != nil {
			opts = append(opts, studio.WithKeySelector(keys))
		}
		if fetcher != nil {
			opts = append(opts, studio.WithURLFetcher(fetcher))
		}
		return studio.New(client, creds, opts...)
	}

	sessions, err := web.NewSessionStore(newStudio, config.DefaultCredentialSource(), cfg.MaxSessions, cfg.SessionTTL, cfg.AllowKeyEntry)
	if err != nil {
		return nil, err
	}
	web.RegisterSessionGauge(reg, sessions)

	srv, err := web.NewServer(sessions, cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	return web.NewRouter(srv, reg), nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	reader, closeReader, err := newRemoteReader(ctx, cfg.RemoteStorage)
	if err != nil {
		return err
	}
	defer closeReader()

	cache := expirable.NewLRU[string, []byte](cfg.FetchCacheSize, nil, cfg.FetchCacheTTL)
	fetcher, err := adapters.NewReferenceFetcher(httpkit.New(cfg.FetchTimeout), reader, cache)
	if err != nil {
		return err
	}

	handler, err := buildHandler(cfg, adapters.NewGenaiClientFactory(), fetcher)
	if err != nil {
		return err
	}

	if _, ok := config.DefaultCredentialSource().Credential(); !ok {
		slog.Warn("API key is not set; requests will ask for one", "env", studio.CredentialEnvVar)
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("サーバーを起動します", "addr", cfg.Addr, "generate_model", cfg.GenerateModel, "combine_model", cfg.CombineModel)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("サーバーの起動に失敗しました: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("サーバーを停止します")
	return server.Shutdown(shutdownCtx)
}

// newRemoteReader は gs:// や s3:// の画像を読むためのリーダーを生成します。
// kind が空の場合は nil を返し、リモートストレージの URI は拒否されます。
func newRemoteReader(ctx context.Context, kind string) (remoteio.InputReader, func(), error) {
	var (
		factory remoteio.IOFactory
		err     error
	)
	switch kind {
	case "":
		return nil, func() {}, nil
	case config.RemoteStorageGCS:
		factory, err = gcsfactory.New(ctx)
	case config.RemoteStorageS3:
		factory, err = s3factory.New(ctx)
	default:
		return nil, nil, fmt.Errorf("未対応のリモートストレージです: %s", kind)
	}
	if err != nil {
		return nil, nil, err
	}

	reader, err := factory.InputReader()
	if err != nil {
		_ = factory.Close()
		return nil, nil, err
	}
	slog.Info("リモートストレージからの読み込みを有効にしました", "storage", kind)
	return reader, func() {
		if err := factory.Close(); err != nil {
			slog.Warn("リモートストレージのクライアントを閉じられませんでした", "error", err)
		}
	}, nil
}
