package realtime

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Exchange performs the one-shot SDP offer/answer handshake: a single POST
// of the raw local description, authorized with the ephemeral credential.
// On success the response body is the remote description, returned as raw
// SDP text.
//
// There are no retries here. A rejected exchange is terminal for this
// connection attempt and surfaces immediately as *SignalingError; whether
// to try again is the caller's decision, starting from a fresh offer.
func (c *Client) Exchange(ctx context.Context, localSDP, credential, model string) (string, error) {
	url := fmt.Sprintf("%s?model=%s", c.config.baseURL, model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(localSDP))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", "application/sdp")

	resp, err := c.config.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("signaling exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read signaling response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", &SignalingError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return string(body), nil
}
