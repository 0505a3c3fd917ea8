package services

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"

	"document-intel-platform/internal/config"
)

// WebPageExtractor fetches a URL and normalizes its visible text. Any
// network or parse failure means "could not fetch"; callers decide how to
// surface that.
type WebPageExtractor struct {
	client    *http.Client
	userAgent string
}

func NewWebPageExtractor(cfg *config.Config) *WebPageExtractor {
	return &WebPageExtractor{
		client: &http.Client{
			Timeout: time.Duration(cfg.FetchTimeout) * time.Second,
		},
		userAgent: cfg.UserAgent,
	}
}

// Extract fetches the page and returns its normalized visible text.
func (w *WebPageExtractor) Extract(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	// Servers routinely reject requests with empty or default client
	// identifiers.
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch failed with status %d", resp.StatusCode)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return "", err
	}

	// Normalize to UTF-8 before parsing; pages still ship legacy charsets.
	utf8Body, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		utf8Body = body
	}

	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		return "", fmt.Errorf("parse failed: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	return NormalizeText(doc.Find("body").Text()), nil
}

// decodeBody handles content encodings the standard transport does not.
// Setting Accept-Encoding explicitly disables Go's automatic gzip handling,
// so both gzip and brotli are decoded here.
func decodeBody(resp *http.Response) (io.Reader, error) {
	switch {
	case strings.Contains(resp.Header.Get("Content-Encoding"), "br"):
		return brotli.NewReader(resp.Body), nil
	case strings.Contains(resp.Header.Get("Content-Encoding"), "gzip"):
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode gzip body: %w", err)
		}
		return gz, nil
	default:
		return resp.Body, nil
	}
}

// NormalizeText flattens extracted page text: lines are trimmed, overlong
// lines are split on runs of double spaces (pseudo-column layouts), empty
// fragments are dropped and the rest rejoined with single newlines. Lossy
// but deterministic.
func NormalizeText(text string) string {
	var fragments []string
	for _, line := range strings.Split(text, "\n") {
		for _, chunk := range strings.Split(strings.TrimSpace(line), "  ") {
			chunk = strings.TrimSpace(chunk)
			if chunk != "" {
				fragments = append(fragments, chunk)
			}
		}
	}
	return strings.Join(fragments, "\n")
}
