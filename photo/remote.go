/*
remote.go - Optional third-party image host

The host's correctness is entirely delegated; the only contract here is
that an unconfigured or failing upload degrades to "no URL" and is never
fatal to report creation.
*/
package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// HostClient forwards image bytes to a configured hosting service.
// The zero value (or an empty URL) means "not configured".
type HostClient struct {
	// URL is the upload endpoint. Empty disables the remote path.
	URL    string
	APIKey string

	// HTTPClient defaults to a 15s-timeout client when nil.
	HTTPClient *http.Client
}

// Configured reports whether the remote path can be attempted at all.
func (c *HostClient) Configured() bool {
	return c != nil && c.URL != ""
}

// Upload forwards the image to the host and returns the hosted URL.
// Returns "" with an error when the host is unreachable or rejects the
// upload; callers treat that as "no URL" and fall back to local storage.
func (c *HostClient) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if !c.Configured() {
		return "", nil
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if c.APIKey != "" {
		if err := mw.WriteField("key", c.APIKey); err != nil {
			return "", err
		}
	}
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("image host unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image host returned status %d", resp.StatusCode)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("image host response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("image host returned no url")
	}
	return out.URL, nil
}

// UploadBase64 accepts a base64 data URL (camera/canvas capture), decodes
// the payload, and uploads it like Upload.
func (c *HostClient) UploadBase64(ctx context.Context, dataURL string) (string, error) {
	payload := dataURL
	if i := strings.IndexByte(dataURL, ','); i >= 0 {
		payload = dataURL[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("invalid base64 image data: %w", err)
	}
	return c.Upload(ctx, "capture.jpg", data)
}

func (c *HostClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}
