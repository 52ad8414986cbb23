package adapters

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// HTTPClient は URL から画像データを取得するためのインターフェースです。
// httpkit.ClientInterface はこのインターフェースを満たします。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// ImageCacher は取得済み画像のキャッシュ操作を抽象化するインターフェースです。
// 有効期限はキャッシュ側で管理します。
type ImageCacher interface {
	Get(key string) ([]byte, bool)
	Add(key string, value []byte) bool
}

// ReferenceFetcher は URL で指定された画像をダウンロードしてアップロード枠に渡します。
// gs:// や s3:// の URI はリモートストレージから読み込みます。
type ReferenceFetcher struct {
	httpClient HTTPClient
	reader     remoteio.InputReader
	imageCache ImageCacher
	isSafe     func(rawURL string) (bool, error)
}

// NewReferenceFetcher は依存関係を注入して ReferenceFetcher を生成します。
// reader と cache は nil を許容します。reader が nil の場合、リモートストレージの URI は拒否します。
func NewReferenceFetcher(httpClient HTTPClient, reader remoteio.InputReader, cache ImageCacher) (*ReferenceFetcher, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &ReferenceFetcher{
		httpClient: httpClient,
		reader:     reader,
		imageCache: cache,
		isSafe:     isSafeURL,
	}, nil
}

// Fetch は URL の画像を取得し、データと推定した MIME タイプを返します。
func (f *ReferenceFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if f.imageCache != nil {
		if data, found := f.imageCache.Get(rawURL); found {
			return data, http.DetectContentType(data), nil
		}
	}

	data, err := f.download(ctx, rawURL)
	if err != nil {
		return nil, "", err
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("MIMEタイプが画像ではありません: %s", mimeType)
	}

	if f.imageCache != nil {
		f.imageCache.Add(rawURL, data)
	}
	return data, mimeType, nil
}

func (f *ReferenceFetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	if remoteio.IsRemoteURI(rawURL) {
		if f.reader == nil {
			return nil, fmt.Errorf("リモートストレージは有効になっていません: %s", rawURL)
		}
		rc, err := f.reader.Open(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("リモートストレージからの読み込みに失敗しました: %w", err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("リモートストレージからの読み込みに失敗しました: %w", err)
		}
		return data, nil
	}

	// SSRF対策のバリデーション
	if safe, err := f.isSafe(rawURL); !safe || err != nil {
		slog.WarnContext(ctx, "SSRFの可能性がある、または不正なURLをブロックしました", "url", rawURL, "error", err)
		return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}

	data, err := f.httpClient.FetchBytes(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("画像のダウンロードに失敗しました: %w", err)
	}
	return data, nil
}

// isSafeURL は SSRF 対策として URL を検証します。
// 名前解決されたすべての IP アドレスに対してプライベート IP チェックを行います。
func isSafeURL(rawURL string) (bool, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false, fmt.Errorf("URLパース失敗: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false, fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}

	host := parsedURL.Hostname()
	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		resolvedIPs, err := net.LookupIP(host)
		if err != nil {
			return false, fmt.Errorf("名前解決失敗: %w", err)
		}
		ips = resolvedIPs
	}

	if len(ips) == 0 {
		return false, fmt.Errorf("IPが見つかりません")
	}

	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return false, fmt.Errorf("制限されたネットワークへのアクセスを検知: %s", ip.String())
		}
	}

	return true, nil
}
