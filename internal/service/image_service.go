package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"plume/internal/models"
	"plume/internal/observability"
)

const maxImageBytes = 10 << 20 // 10 MiB

// ImageUploadResult is what the host hands back after a successful upload.
type ImageUploadResult struct {
	URL       string `json:"url"`
	StorageID string `json:"storage_id"`
}

// ImageHost abstracts the external image hosting provider so tests can run
// against a fake and the provider can be swapped without touching callers.
type ImageHost interface {
	Upload(ctx context.Context, data []byte, name string) (*ImageUploadResult, error)
	Delete(ctx context.Context, storageID string) error
}

// ImageService validates uploads and delegates storage to the host.
type ImageService struct {
	host   ImageHost
	logger *slog.Logger
}

// NewImageService creates a new image service. A nil host disables uploads.
func NewImageService(host ImageHost, logger *slog.Logger) *ImageService {
	return &ImageService{host: host, logger: logger}
}

// Upload reads the multipart file, checks its size and type, and pushes it
// to the image host.
func (s *ImageService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*ImageUploadResult, error) {
	if s.host == nil {
		return nil, models.NewValidationError("Image uploads are not configured")
	}
	if header.Size > maxImageBytes {
		return nil, models.NewValidationError("Image exceeds the 10MB limit")
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(data) > maxImageBytes {
		return nil, models.NewValidationError("Image exceeds the 10MB limit")
	}

	contentType := http.DetectContentType(data)
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
	default:
		return nil, models.NewValidationError("Unsupported image type: " + contentType)
	}

	result, err := s.host.Upload(ctx, data, header.Filename)
	if err != nil {
		return nil, models.NewExternalServiceError("image host", err)
	}
	return result, nil
}

// DeleteAsync removes an upload from the host without blocking the caller.
// Failures are logged; an orphaned remote image is not worth failing a
// post deletion over.
func (s *ImageService) DeleteAsync(ctx context.Context, storageID string) {
	if s.host == nil || storageID == "" {
		return
	}
	go func() {
		dctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.host.Delete(dctx, storageID); err != nil {
			observability.LogAsyncOperationError(ctx, "image_delete", err, map[string]interface{}{
				"storage_id": storageID,
			})
		}
	}()
}

// imgHostResponse mirrors the provider's JSON envelope.
type imgHostResponse struct {
	Data struct {
		ID         string `json:"id"`
		Link       string `json:"link"`
		DeleteHash string `json:"deletehash"`
		Type       string `json:"type"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// HTTPImageHost uploads to an Imgur-compatible HTTP API.
type HTTPImageHost struct {
	clientID string
	baseURL  string
	client   *http.Client
}

// NewHTTPImageHost creates a client for the hosted image API. Returns nil
// when no client ID is configured so callers can treat uploads as disabled.
func NewHTTPImageHost(clientID string) *HTTPImageHost {
	if clientID == "" {
		return nil
	}
	return &HTTPImageHost{
		clientID: clientID,
		baseURL:  "https://api.imgur.com/3",
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SetBaseURL overrides the API endpoint. Intended for tests.
func (h *HTTPImageHost) SetBaseURL(u string) { h.baseURL = u }

func (h *HTTPImageHost) Upload(ctx context.Context, data []byte, name string) (*ImageUploadResult, error) {
	base64Image := base64.StdEncoding.EncodeToString(data)

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	if err := writer.WriteField("image", base64Image); err != nil {
		return nil, fmt.Errorf("build request body: %w", err)
	}
	if err := writer.WriteField("type", "base64"); err != nil {
		return nil, fmt.Errorf("build request body: %w", err)
	}
	if name != "" {
		if err := writer.WriteField("name", name); err != nil {
			return nil, fmt.Errorf("build request body: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/image", &requestBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+h.clientID)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var hostResp imgHostResponse
	if err := json.Unmarshal(body, &hostResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !hostResp.Success {
		return nil, fmt.Errorf("image host rejected upload: status %d", hostResp.Status)
	}

	return &ImageUploadResult{
		URL:       hostResp.Data.Link,
		StorageID: hostResp.Data.DeleteHash,
	}, nil
}

func (h *HTTPImageHost) Delete(ctx context.Context, storageID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, h.baseURL+"/image/"+storageID, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+h.clientID)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("image host delete failed: status %d", resp.StatusCode)
	}
	return nil
}
