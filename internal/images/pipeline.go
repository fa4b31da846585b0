package images

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"math/rand"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Result is the pipeline output; both URLs are publicly fetchable on the
// file host. On partial failure CompressedURL falls back to OriginalURL.
type Result struct {
	OriginalURL   string `json:"original_url"`
	CompressedURL string `json:"compressed_url"`
}

// Pipeline downloads a cover image, publishes the original to the file host,
// then publishes a size-reduced variant. Steps run strictly sequentially;
// one invocation handles one image.
type Pipeline struct {
	client         *resty.Client
	catboxEndpoint string
	corsProxy      string // prefix the target URL is percent-encoded onto; empty disables the fallback
	randInt        func(n int) int
}

func NewPipeline(catboxEndpoint, corsProxy string) *Pipeline {
	client := resty.New().
		SetTimeout(60 * time.Second).
		SetHeader("User-Agent", "mangashelf/1.0")

	return &Pipeline{
		client:         client,
		catboxEndpoint: catboxEndpoint,
		corsProxy:      corsProxy,
		randInt:        rand.Intn,
	}
}

// Process runs the full chain. Only two failures abort with an error: the
// source image not downloading at all, and the first upload not landing.
// Everything after that degrades by reusing the original's hosted URL.
func (p *Pipeline) Process(ctx context.Context, imageURL, title string) (*Result, error) {
	if strings.TrimSpace(imageURL) == "" || strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("image url and title required")
	}

	data, mimeType, err := p.download(ctx, imageURL, true)
	if err != nil {
		return nil, fmt.Errorf("download source: %w", err)
	}

	stem := filenameStem(title)
	suffix := fmt.Sprintf("%04d", 1000+p.randInt(9000))
	ext := extensionFor(mimeType)

	originalURL, err := p.upload(ctx, stem+"_original_"+suffix+ext, data)
	if err != nil {
		return nil, fmt.Errorf("upload original: %w", err)
	}

	out := &Result{OriginalURL: originalURL, CompressedURL: originalURL}

	// Re-fetch from the host rather than compressing the source bytes
	// directly; the hosted copy is what the compressed variant must match.
	hosted, _, err := p.download(ctx, originalURL, false)
	if err != nil {
		log.Printf("[images] re-download of hosted original failed, keeping original for both: %v", err)
		return out, nil
	}

	compressed, compressedMime, err := Compress(hosted)
	if err != nil {
		log.Printf("[images] compression failed, keeping original for both: %v", err)
		return out, nil
	}

	compressedURL, err := p.upload(ctx, stem+"_compressed_"+suffix+extensionFor(compressedMime), compressed)
	if err != nil {
		log.Printf("[images] compressed upload failed, keeping original for both: %v", err)
		return out, nil
	}

	out.CompressedURL = compressedURL
	return out, nil
}

// download fetches raw image bytes. A failed direct fetch retries once
// through the CORS relay when allowed. Bodies that are not images (by header,
// or by sniffing when the header is absent) are rejected.
func (p *Pipeline) download(ctx context.Context, imageURL string, allowProxy bool) ([]byte, string, error) {
	resp, err := p.client.R().SetContext(ctx).Get(imageURL)
	if err != nil || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		if !allowProxy || p.corsProxy == "" {
			if err != nil {
				return nil, "", fmt.Errorf("fetch: %w", err)
			}
			return nil, "", fmt.Errorf("fetch: status %d", resp.StatusCode())
		}

		proxied := p.corsProxy + url.QueryEscape(imageURL)
		resp, err = p.client.R().SetContext(ctx).Get(proxied)
		if err != nil {
			return nil, "", fmt.Errorf("proxy fetch: %w", err)
		}
		if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
			return nil, "", fmt.Errorf("proxy fetch: status %d", resp.StatusCode())
		}
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, "", fmt.Errorf("fetch: empty body")
	}

	mimeType := resp.Header().Get("Content-Type")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(body)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("fetch: content type %q is not an image", mimeType)
	}

	return body, mimeType, nil
}

// upload posts the blob to the anonymous file host as a multipart form. The
// host answers with the bare URL in the response body.
func (p *Pipeline) upload(ctx context.Context, filename string, data []byte) (string, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"reqtype": "fileupload"}).
		SetFileReader("fileToUpload", filename, bytes.NewReader(data)).
		Post(p.catboxEndpoint)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", fmt.Errorf("upload: status %d", resp.StatusCode())
	}

	hosted := strings.TrimSpace(string(resp.Body()))
	if hosted == "" {
		return "", fmt.Errorf("upload: empty response body")
	}
	return hosted, nil
}

// filenameStem groups the original/compressed pair under a recognizable
// name: title lowercased, non-alphanumeric runs collapsed to dashes,
// truncated to 30 chars.
func filenameStem(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	b.Grow(len(title))
	prevDash := false
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash && b.Len() > 0 {
			b.WriteByte('-')
			prevDash = true
		}
	}

	stem := strings.TrimRight(b.String(), "-")
	if len(stem) > 30 {
		stem = strings.TrimRight(stem[:30], "-")
	}
	if stem == "" {
		stem = "cover"
	}
	return stem
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}
