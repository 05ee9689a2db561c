package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultUserAgent     = "anybot/1.0"
	defaultFetchTimeout  = 20 * time.Second
	defaultMaxPhotoBytes = 10 << 20
	defaultPhotoName     = "photo.jpg"
)

var ErrPhotoTooLarge = errors.New("photo exceeds size limit")

type Photo struct {
	Name string
	Data []byte
}

// PhotoFetcher loads the bytes behind a photo reference: http(s) URLs are
// downloaded, anything else is read as a local file path.
type PhotoFetcher struct {
	logger   *slog.Logger
	maxBytes int
	client   *resty.Client
}

func NewPhotoFetcher(logger *slog.Logger, timeout time.Duration, maxBytes int) *PhotoFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxPhotoBytes
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetHeader("User-Agent", defaultUserAgent)

	return &PhotoFetcher{
		logger:   logger,
		maxBytes: maxBytes,
		client:   client,
	}
}

func (f *PhotoFetcher) Fetch(ctx context.Context, ref string) (Photo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Photo{}, errors.New("photo reference is required")
	}
	if IsRemote(ref) {
		return f.download(ctx, ref)
	}
	return f.readFile(ref)
}

func (f *PhotoFetcher) download(ctx context.Context, rawURL string) (Photo, error) {
	target, err := normalizeWebURL(rawURL)
	if err != nil {
		return Photo{}, err
	}

	resp, err := f.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(target)
	if err != nil {
		return Photo{}, fmt.Errorf("fetch %s: %w", target, err)
	}
	raw := resp.RawBody()
	defer raw.Close()

	if !resp.IsSuccess() {
		return Photo{}, fmt.Errorf("fetch %s: status %d", target, resp.StatusCode())
	}
	if size := resp.RawResponse.ContentLength; size > int64(f.maxBytes) {
		return Photo{}, fmt.Errorf("fetch %s: %w (%d > %d bytes)", target, ErrPhotoTooLarge, size, f.maxBytes)
	}

	// One byte past the cap is enough to tell an oversized body apart.
	body, err := io.ReadAll(io.LimitReader(raw, int64(f.maxBytes)+1))
	if err != nil {
		return Photo{}, fmt.Errorf("fetch %s: %w", target, err)
	}
	if len(body) > f.maxBytes {
		return Photo{}, fmt.Errorf("fetch %s: %w (over %d bytes)", target, ErrPhotoTooLarge, f.maxBytes)
	}
	if len(body) == 0 {
		return Photo{}, fmt.Errorf("fetch %s: empty body", target)
	}

	f.logger.Debug("photo downloaded", "url", target, "bytes", len(body))
	return Photo{Name: remoteName(target), Data: body}, nil
}

func (f *PhotoFetcher) readFile(name string) (Photo, error) {
	info, err := os.Stat(name)
	if err != nil {
		return Photo{}, fmt.Errorf("open photo: %w", err)
	}
	if info.IsDir() {
		return Photo{}, fmt.Errorf("open photo: %s is a directory", name)
	}
	if info.Size() > int64(f.maxBytes) {
		return Photo{}, fmt.Errorf("open photo %s: %w (%d > %d bytes)", name, ErrPhotoTooLarge, info.Size(), f.maxBytes)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return Photo{}, fmt.Errorf("read photo: %w", err)
	}
	return Photo{Name: filepath.Base(name), Data: data}, nil
}

func IsRemote(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func normalizeWebURL(rawURL string) (string, error) {
	value := strings.TrimSpace(rawURL)
	if value == "" {
		return "", errors.New("url is required")
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("only http/https urls are supported")
	}
	if parsed.Host == "" {
		return "", errors.New("url host is required")
	}

	return parsed.String(), nil
}

func remoteName(target string) string {
	parsed, err := url.Parse(target)
	if err != nil {
		return defaultPhotoName
	}
	base := path.Base(parsed.Path)
	if base == "" || base == "." || base == "/" || path.Ext(base) == "" {
		return defaultPhotoName
	}
	return base
}
