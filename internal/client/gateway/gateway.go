// Package gateway is the HTTP client for the remote sync API. It stores and
// retrieves domain payloads namespaced by (user id, device id, data type).
//
// The gateway never throws past its boundary: network failures, non-2xx
// responses and a missing access token all degrade to false/nil, which
// callers must treat as "try later" — never as confirmed absence of data
// for destructive decisions.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tripsync/internal/client/models"
	"github.com/dmitrijs2005/tripsync/internal/common"
	"github.com/dmitrijs2005/tripsync/internal/logging"
)

// TokenProvider supplies the bearer credential issued by the auth backend.
// An empty string means "not authenticated".
type TokenProvider interface {
	AccessToken() string
}

// Gateway talks to the remote sync API over HTTP.
type Gateway struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenProvider
	log        logging.Logger
}

// New returns a Gateway for the API server at baseURL.
func New(baseURL string, tokens TokenProvider, log logging.Logger) *Gateway {
	return &Gateway{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		tokens:     tokens,
		log:        log,
	}
}

// savePayload is the POST body: the domain payload wrapped in a data field.
type savePayload struct {
	Data any `json:"data"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type getResponse struct {
	Success bool                     `json:"success"`
	Devices []models.RawDeviceRecord `json:"devices,omitempty"`
	Legacy  json.RawMessage          `json:"legacy,omitempty"`
}

type bulkResponse struct {
	Success bool                               `json:"success"`
	Data    map[models.Domain]*models.Envelope `json:"data"`
}

// Save uploads this device's payload for one domain. Returns false on any
// failure, including a missing token.
func (g *Gateway) Save(ctx context.Context, userID, deviceID string, domain models.Domain, payload any) bool {
	body, err := json.Marshal(savePayload{Data: payload})
	if err != nil {
		g.log.Error(ctx, "failed to encode sync payload", "domain", domain, "error", err)
		return false
	}

	var out successResponse
	if err := g.do(ctx, http.MethodPost, g.syncURL(userID, deviceID, domain), body, &out); err != nil {
		g.log.Warn(ctx, "sync upload failed", "domain", domain, "error", err)
		return false
	}
	return out.Success
}

// Get downloads all device records for one domain, or nil on failure.
// A successful response with no data yields an empty non-nil envelope.
func (g *Gateway) Get(ctx context.Context, userID, deviceID string, domain models.Domain) *models.Envelope {
	var out getResponse
	if err := g.do(ctx, http.MethodGet, g.syncURL(userID, deviceID, domain), nil, &out); err != nil {
		g.log.Warn(ctx, "sync download failed", "domain", domain, "error", err)
		return nil
	}
	if !out.Success {
		return nil
	}
	return &models.Envelope{Devices: out.Devices, Legacy: out.Legacy}
}

// Delete removes this device's record for one domain.
func (g *Gateway) Delete(ctx context.Context, userID, deviceID string, domain models.Domain) bool {
	var out successResponse
	if err := g.do(ctx, http.MethodDelete, g.syncURL(userID, deviceID, domain), nil, &out); err != nil {
		g.log.Warn(ctx, "sync delete failed", "domain", domain, "error", err)
		return false
	}
	return out.Success
}

// GetAll downloads every domain's envelope in one call, or nil on failure.
func (g *Gateway) GetAll(ctx context.Context, userID string) map[models.Domain]*models.Envelope {
	var out bulkResponse
	url := fmt.Sprintf("%s/api/sync/%s/bulk/all", g.baseURL, userID)
	if err := g.do(ctx, http.MethodGet, url, nil, &out); err != nil {
		g.log.Warn(ctx, "bulk download failed", "error", err)
		return nil
	}
	if !out.Success {
		return nil
	}
	return out.Data
}

// DeleteAll removes every record for the user across all domains and
// devices. Part of the explicit delete-all operation only.
func (g *Gateway) DeleteAll(ctx context.Context, userID string) bool {
	var out successResponse
	url := fmt.Sprintf("%s/api/sync/%s/bulk/all", g.baseURL, userID)
	if err := g.do(ctx, http.MethodDelete, url, nil, &out); err != nil {
		g.log.Warn(ctx, "bulk delete failed", "error", err)
		return false
	}
	return out.Success
}

// IsAvailable probes the health endpoint. No token is required.
func (g *Gateway) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (g *Gateway) syncURL(userID, deviceID string, domain models.Domain) string {
	return fmt.Sprintf("%s/api/sync/%s/%s/%s", g.baseURL, userID, deviceID, domain)
}

// do issues one authenticated request and decodes the JSON response into
// out. A missing token short-circuits locally: no request is sent.
func (g *Gateway) do(ctx context.Context, method, url string, body []byte, out any) error {
	token := g.tokens.AccessToken()
	if token == "" {
		return common.ErrNoToken
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return common.ErrorUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
