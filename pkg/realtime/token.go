package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Credential is a short-lived bearer credential scoped to one realtime
// session. Callers treat Value as opaque and do not interpret ExpiresAt
// beyond relaying it.
type Credential struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"`
}

// mintResponse is the session-creation response from the API.
type mintResponse struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	ClientSecret struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
}

// MintCredential creates a realtime session server-side and returns its
// ephemeral client secret. The result is handed to browser-style clients
// so the long-lived API key never leaves the server.
func (c *Client) MintCredential(ctx context.Context, model, voice string) (*Credential, error) {
	if model == "" {
		model = ModelGPT4oRealtimePreview
	}
	if voice == "" {
		voice = DefaultVoice
	}

	body, err := json.Marshal(map[string]any{
		"model": model,
		"voice": voice,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.baseURL+"/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.config.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mint credential: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &Error{
			Code:       "session_creation_failed",
			Message:    fmt.Sprintf("failed to create session: %s", string(respBody)),
			HTTPStatus: resp.StatusCode,
		}
	}

	var mint mintResponse
	if err := json.NewDecoder(resp.Body).Decode(&mint); err != nil {
		return nil, fmt.Errorf("decode mint response: %w", err)
	}

	return &Credential{
		Value:     mint.ClientSecret.Value,
		ExpiresAt: mint.ClientSecret.ExpiresAt,
	}, nil
}
