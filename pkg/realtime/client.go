package realtime

import (
	"net/http"

	"github.com/pion/webrtc/v3"
)

const (
	// DefaultBaseURL is the HTTP endpoint for signaling and token minting.
	DefaultBaseURL = "https://api.openai.com/v1/realtime"

	// DefaultWebSocketURL is the WebSocket endpoint for headless sessions.
	DefaultWebSocketURL = "wss://api.openai.com/v1/realtime"
)

// Client holds the credentials and endpoints for establishing realtime
// sessions. It is safe for concurrent use; each Dial produces an
// independent session.
type Client struct {
	config *clientConfig
}

type clientConfig struct {
	apiKey     string
	baseURL    string
	wsURL      string
	httpClient *http.Client
	iceServers []webrtc.ICEServer
}

// Option configures the Client.
type Option func(*clientConfig)

// NewClient creates a realtime API client. The apiKey is used for minting
// ephemeral credentials and for WebSocket sessions; WebRTC signaling itself
// uses a previously minted ephemeral credential.
func NewClient(apiKey string, opts ...Option) *Client {
	cfg := &clientConfig{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		wsURL:      DefaultWebSocketURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Client{config: cfg}
}

// WithBaseURL overrides the HTTP endpoint used for signaling and minting.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithWebSocketURL overrides the WebSocket endpoint.
func WithWebSocketURL(url string) Option {
	return func(c *clientConfig) { c.wsURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithICEServers sets the ICE servers for WebRTC peer connections.
// The default is no ICE servers, matching the direct-to-endpoint setup
// the realtime API expects.
func WithICEServers(servers []webrtc.ICEServer) Option {
	return func(c *clientConfig) { c.iceServers = servers }
}
