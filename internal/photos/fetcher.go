package photos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/anoixa/gphotos-grid/internal/metrics"
	"github.com/anoixa/gphotos-grid/utils"
	"github.com/anoixa/gphotos-grid/utils/format"
)

// Fetcher 获取相册页面正文
// 失败时返回 ok=false，不返回错误
type Fetcher interface {
	Fetch(ctx context.Context, albumURL string) (body string, ok bool)
}

// FetcherConfig HTTP 抓取配置
type FetcherConfig struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// maxRedirects 短链跳转到相册页通常只需一两次
const maxRedirects = 5

// ErrInsecureRedirect 跳转目标不是 https
var ErrInsecureRedirect = errors.New("redirect to non-https url refused")

// checkRedirect 只跟随 https 跳转
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", ErrInsecureRedirect, utils.SanitizeLogURL(req.URL.String()))
	}
	return nil
}

// HTTPFetcher 基于 net/http 的抓取实现，单次 GET，不重试
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	latency   *metrics.LatencyTracker
}

// NewHTTPFetcher 创建 HTTP 抓取器，latency 可为 nil
func NewHTTPFetcher(cfg FetcherConfig, latency *metrics.LatencyTracker) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: cfg.Timeout, CheckRedirect: checkRedirect},
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodyBytes,
		latency:   latency,
	}
}

// Fetch 执行 GET 请求，非 2xx 状态视为失败
// 正文超过上限时截断
func (f *HTTPFetcher) Fetch(ctx context.Context, albumURL string) (string, bool) {
	start := time.Now()
	defer f.latency.Since("fetch", start)

	body, err := f.fetch(ctx, albumURL)
	if err != nil {
		f.logFailure(albumURL, err, time.Since(start))
		return "", false
	}
	return body, true
}

func (f *HTTPFetcher) fetch(ctx context.Context, albumURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, albumURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 读掉剩余正文以便复用连接
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) == f.maxBody {
		log.Printf("[Fetcher] Body of %s truncated at %s", utils.SanitizeLogURL(albumURL), format.HumanReadableSize(f.maxBody))
	}
	return string(data), nil
}

func (f *HTTPFetcher) logFailure(albumURL string, err error, elapsed time.Duration) {
	target := utils.SanitizeLogURL(albumURL)
	switch {
	case utils.IsContextCanceled(err):
		log.Printf("[Fetcher] Fetch of %s canceled after %v", target, elapsed.Round(time.Millisecond))
	case utils.IsTimeout(err):
		log.Printf("[Fetcher] Fetch of %s timed out after %v", target, elapsed.Round(time.Millisecond))
	default:
		log.Printf("[Fetcher] Fetch of %s failed: %s", target, utils.SanitizeLogMessage(err.Error()))
	}
}
