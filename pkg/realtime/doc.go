// Package realtime implements the client side of the OpenAI Realtime API
// over WebRTC, plus a WebSocket transport for headless use.
//
// A WebRTC session is established in one shot: local audio tracks are
// attached, a data channel named "oai-events" is created, and the SDP offer
// is posted to the realtime endpoint with an ephemeral bearer credential.
// Once the data channel opens, JSON control events flow in both directions:
//
//	client := realtime.NewClient(apiKey)
//	cred, err := client.MintCredential(ctx, model, voice)
//	...
//	peer, err := client.DialWebRTC(ctx, &realtime.DialOptions{
//	    Model:      model,
//	    Credential: cred.Value,
//	    Stream:     stream,
//	    OnChannelOpen: func() { ... },
//	    OnEvent:       func(ev *realtime.ServerEvent) { ... },
//	})
//
// Sending on a channel that is not open is a deliberate no-op: callers that
// care must check Channel().Open() themselves. This matches the UI contract
// where "send raced with disconnect" is expected, not a bug.
package realtime
