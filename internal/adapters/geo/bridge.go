package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/wefixte/Foreach-Wildwatch/internal/core/domain"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/services"
)

var _ services.LocationProvider = (*BridgeProvider)(nil)

// BridgeProvider talks to a device location bridge over HTTP:
//
//	GET  /permission  -> {"status": "granted" | "denied" | "undetermined"}
//	POST /permission  -> same shape; triggers the on-device prompt
//	GET  /position    -> {"latitude", "longitude", "accuracy"?, ...}
//
// The bridge owns timeouts and device-level filtering; this adapter only
// forwards the acquisition hints as query parameters.
type BridgeProvider struct {
	baseURL string
	client  *http.Client
}

func NewBridgeProvider(baseURL string) *BridgeProvider {
	return &BridgeProvider{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type permissionResponse struct {
	Status string `json:"status"`
}

func (p *BridgeProvider) permission(ctx context.Context, method string) (domain.PermissionStatus, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+"/permission", nil)
	if err != nil {
		return "", fmt.Errorf("bridge request failed: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("bridge unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}

	var body permissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("bridge sent malformed permission response: %w", err)
	}

	switch status := domain.PermissionStatus(body.Status); status {
	case domain.PermissionGranted, domain.PermissionDenied, domain.PermissionUndetermined:
		return status, nil
	default:
		return "", fmt.Errorf("bridge sent unknown permission status %q", body.Status)
	}
}

func (p *BridgeProvider) PermissionStatus(ctx context.Context) (domain.PermissionStatus, error) {
	return p.permission(ctx, http.MethodGet)
}

func (p *BridgeProvider) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	return p.permission(ctx, http.MethodPost)
}

func (p *BridgeProvider) CurrentPosition(ctx context.Context, opts domain.AcquireOptions) (*domain.LocationSample, error) {
	query := url.Values{}
	query.Set("accuracy", string(opts.Accuracy))
	query.Set("minIntervalMs", strconv.FormatInt(opts.MinInterval.Milliseconds(), 10))
	query.Set("minDisplacement", strconv.FormatFloat(opts.MinDisplacement, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/position?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("bridge request failed: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bridge unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}

	var sample domain.LocationSample
	if err := json.NewDecoder(resp.Body).Decode(&sample); err != nil {
		return nil, fmt.Errorf("bridge sent malformed position: %w", err)
	}
	return &sample, nil
}
