package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
	"research-fi.backend/pkg/logger"
)

// Client pins study metadata JSON to IPFS via Pinata and reads it back
// through public gateways. The store is content-addressed: uploads never
// overwrite, readers try each gateway in order and the first parseable
// response wins.
type Client struct {
	jwt        string
	pinURL     string
	gateways   []string
	httpClient *http.Client
}

// NewClient creates a new Pinata-backed metadata client. An empty jwt leaves
// the client unconfigured; uploads then fail with ErrNotConfigured and
// callers degrade (studies are created without a CID, overlays are skipped).
func NewClient(jwt, pinURL string, gateways []string) *Client {
	return &Client{
		jwt:      jwt,
		pinURL:   pinURL,
		gateways: gateways,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Configured reports whether an API token is present.
func (c *Client) Configured() bool {
	return c.jwt != ""
}

type pinRequest struct {
	PinataContent *entities.StudyMetadata `json:"pinataContent"`
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// Upload pins the metadata blob and returns its CID.
func (c *Client) Upload(ctx context.Context, metadata *entities.StudyMetadata) (string, error) {
	if !c.Configured() {
		return "", domainerrors.ErrNotConfigured
	}

	body, err := json.Marshal(pinRequest{PinataContent: metadata})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pinURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.jwt)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		logger.Warn(ctx, "Pinata upload failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw),
		)
		return "", fmt.Errorf("pinata upload failed: status %d", resp.StatusCode)
	}

	var pinned pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pinned); err != nil {
		return "", err
	}
	if pinned.IpfsHash == "" {
		return "", fmt.Errorf("pinata upload returned no hash")
	}
	return pinned.IpfsHash, nil
}

// Get fetches metadata by CID, trying each gateway in order. A blob without
// a title is treated as malformed. Returns ErrNotFound when every gateway
// fails; listing callers treat that as a skipped overlay, not a failure.
func (c *Client) Get(ctx context.Context, cid string) (*entities.StudyMetadata, error) {
	normalized := strings.TrimSpace(strings.TrimPrefix(cid, "ipfs://"))
	if normalized == "" {
		return nil, domainerrors.ErrInvalidInput
	}

	for _, gateway := range c.gateways {
		meta, err := c.fetchFrom(ctx, gateway, normalized)
		if err != nil {
			logger.Debug(ctx, "metadata gateway fetch failed",
				zap.String("gateway", gateway),
				zap.String("cid", normalized),
				zap.Error(err),
			)
			continue
		}
		return meta, nil
	}
	return nil, domainerrors.ErrNotFound
}

func (c *Client) fetchFrom(ctx context.Context, gateway, cid string) (*entities.StudyMetadata, error) {
	url := strings.TrimSuffix(gateway, "/") + "/" + cid
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway status %d", resp.StatusCode)
	}

	var meta entities.StudyMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, err
	}
	if meta.Title == "" {
		return nil, fmt.Errorf("metadata blob missing title")
	}
	return &meta, nil
}
