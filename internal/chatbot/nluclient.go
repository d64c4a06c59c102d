package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// NLUClient forwards raw user messages to the external intent engine.
// The engine detects the intent and calls our webhook back; the reply
// text travels back through this client to the frontend.
type NLUClient struct {
	baseURL string
	client  *http.Client
}

func NewNLUClient(baseURL string, timeout time.Duration) *NLUClient {
	return &NLUClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether an agent endpoint is configured.
func (n *NLUClient) Enabled() bool {
	return n != nil && n.baseURL != ""
}

type nluRequest struct {
	Session string `json:"session"`
	Message string `json:"message"`
}

type nluResponse struct {
	FulfillmentText string `json:"fulfillmentText"`
	Reply           string `json:"reply"`
}

// Detect sends one user utterance and returns the agent's reply text.
func (n *NLUClient) Detect(ctx context.Context, session, message string) (string, error) {
	if !n.Enabled() {
		return "", fmt.Errorf("NLU agent is not configured")
	}

	body, err := json.Marshal(nluRequest{Session: session, Message: message})
	if err != nil {
		return "", fmt.Errorf("marshal NLU request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/detect", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build NLU request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("NLU agent call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("NLU agent returned status %d", resp.StatusCode)
	}

	var out nluResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode NLU response failed: %w", err)
	}
	if out.FulfillmentText != "" {
		return out.FulfillmentText, nil
	}
	return out.Reply, nil
}
