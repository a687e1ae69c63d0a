// Package storageservice загружает документы резервирований в объектное хранилище
// с HTTP API вида /storage/v1/object/{bucket}/{path}.
package storageservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент объектного хранилища
type Client struct {
	baseURL    string
	bucket     string
	serviceKey string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента хранилища
func NewClient(baseURL, bucket, serviceKey string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Upload загружает объект по пути path и возвращает его публичный URL
func (c *Client) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}

	path = strings.TrimLeft(path, "/")
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, url.PathEscape(c.bucket), escapePath(path))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	c.log.Info("Uploading object bucket=%s path=%s size=%d", c.bucket, path, len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Продолжаем обработку
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", ErrUnauthorized
	default:
		body, _ := io.ReadAll(resp.Body)
		var errResp ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
			c.log.Error("Storage upload failed: status=%d message=%s", resp.StatusCode, errResp.Message)
			return "", fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, errResp.Message)
		}
		return "", fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	// Тело ответа (Key) не нужно: публичный адрес однозначно задается путем
	_, _ = io.Copy(io.Discard, resp.Body)

	return c.PublicURL(path), nil
}

// PublicURL публичный адрес объекта в бакете
func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, url.PathEscape(c.bucket), escapePath(strings.TrimLeft(path, "/")))
}

// escapePath экранирует каждый сегмент пути, сохраняя разделители
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
