// Package media talks to the image hosting service. Objects are addressed by
// an owner-scoped path and served from a public base URL.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image too large")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type Client struct {
	http      *resty.Client
	publicURL string
	maxBytes  int
}

type uploadResponse struct {
	URL string `json:"url"`
}

type apiError struct {
	Message string `json:"message"`
}

func NewClient(baseURL, apiKey, publicURL string, maxUploadMB int) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30 * time.Second).
		SetRetryCount(2)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &Client{
		http:      c,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxBytes:  maxUploadMB << 20,
	}
}

// ObjectPath builds a unique path under the owner's prefix for an image of
// the given content type.
func ObjectPath(ownerID uint, scope, contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return path.Join("users", fmt.Sprint(ownerID), scope, uuid.NewString()+ext), nil
}

// DetectImageType sniffs data and returns its content type if it is an
// accepted image format.
func DetectImageType(data []byte) (string, error) {
	ct := http.DetectContentType(data)
	if _, ok := extensions[ct]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}
	return ct, nil
}

// Upload stores data at objectPath and returns its public URL.
func (c *Client) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	if c.maxBytes > 0 && len(data) > c.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}

	var out uploadResponse
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		SetResult(&out).
		SetError(&apiErr).
		Put("/objects/" + escapePath(objectPath))
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("upload %s: status %d: %s", objectPath, resp.StatusCode(), apiErr.Message)
	}

	if out.URL != "" {
		return out.URL, nil
	}
	return c.publicURL + "/" + escapePath(objectPath), nil
}

// Delete removes the object at objectPath. Deleting a missing object is not
// an error.
func (c *Client) Delete(ctx context.Context, objectPath string) error {
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&apiErr).
		Delete("/objects/" + escapePath(objectPath))
	if err != nil {
		return fmt.Errorf("delete %s: %w", objectPath, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	if resp.IsError() {
		return fmt.Errorf("delete %s: status %d: %s", objectPath, resp.StatusCode(), apiErr.Message)
	}
	return nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
