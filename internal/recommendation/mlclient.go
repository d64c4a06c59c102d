package recommendation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MLClient proxies to an external ML-based recommender.
type MLClient struct {
	baseURL string
	client  *http.Client
}

func NewMLClient(baseURL string, timeout time.Duration) *MLClient {
	return &MLClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether an external recommender is configured.
func (m *MLClient) Enabled() bool {
	return m != nil && m.baseURL != ""
}

// Recommend forwards the user ID to the external recommender and
// returns its raw JSON payload untouched.
func (m *MLClient) Recommend(ctx context.Context, userID string) (json.RawMessage, error) {
	if !m.Enabled() {
		return nil, fmt.Errorf("ML recommender is not configured")
	}

	body, err := json.Marshal(map[string]string{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("marshal ML request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/recommend", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ML request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ML request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ML recommender returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ML response failed: %w", err)
	}
	return json.RawMessage(raw), nil
}
