// Package bridge implements the realtime session and turn-taking state
// machine: it owns the peer connection lifecycle, the microphone gating
// policy, and the commit/response protocol sequencing that produces
// well-formed turns against the remote realtime endpoint.
//
// All state transitions happen one at a time in response to discrete
// events (UI intents, channel messages, channel lifecycle). The
// correctness burden is event ordering, not parallelism: the only
// suspension points are media acquisition, the signaling exchange, and
// the deliberate settling delays of the manual release sequence, and each
// runs sequentially within its own operation.
//
// Two turn-taking policies are supported. In auto mode the remote
// endpoint's voice activity detection segments turns and the microphone
// stays open for the whole session. In manual (push-to-talk) mode the
// microphone opens strictly between a talk press and its release, and the
// release drives an explicit buffer-commit followed, after a settling
// delay, by a response request.
package bridge
