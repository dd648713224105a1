package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/voxbridge/voxbridge/pkg/realtime"
)

// DefaultSettleDelay is the pause before the buffer commit and again
// before the response request in the manual release sequence. The remote
// endpoint needs the commit durably applied before it can act on a
// response request; committing and requesting in the same instant is
// observed to sometimes drop the request. This is an empirical value, not
// a protocol contract — tune it per endpoint latency characteristics.
const DefaultSettleDelay = 200 * time.Millisecond

// Link is the controller's view of an established connection: the event
// channel plus teardown. Send on a link whose channel is not open is a
// no-op per the channel contract.
type Link interface {
	Send(event map[string]any) error
	Open() bool
	Close() error
}

// Gate controls the microphone: true means captured audio reaches the
// remote endpoint. Only the controller mutates it.
type Gate interface {
	SetEnabled(bool)
}

// DialRequest carries the connection parameters a dialer needs.
type DialRequest struct {
	Model      string
	Voice      string
	Credential string
}

// DialHandlers are the controller's callbacks, wired into the transport
// before negotiation so no event is missed.
type DialHandlers struct {
	OnChannelOpen   func()
	OnEvent         func(*realtime.ServerEvent)
	OnChannelClosed func()
}

// Dialer establishes media acquisition, the peer session, and the event
// channel for one connection attempt. On error it must release anything
// it partially acquired.
type Dialer interface {
	Dial(ctx context.Context, req DialRequest, h DialHandlers) (Link, Gate, error)
}

// TranscriptSink receives completed input transcriptions, e.g. the expert
// text-chat collaborator. Forwarding is one-way; the controller never
// blocks on it.
type TranscriptSink interface {
	ForwardTranscript(ctx context.Context, text string) error
}

// Events are the controller's UI-facing notifications. All fields are
// optional.
type Events struct {
	StateChanged   func(State)
	Transcript     func(role, text string)
	Warning        func(msg string)
	ResponseFailed func(detail string)
	Speech         func(active bool)
}

// Options configure a Controller.
type Options struct {
	Dialer   Dialer
	Events   Events
	Forward  TranscriptSink
	Personas PersonaSet

	// SettleDelay overrides DefaultSettleDelay when positive.
	SettleDelay time.Duration

	// Sleep substitutes the settle-delay sleeps, for tests.
	Sleep func(time.Duration)
}

// session holds everything scoped to one connection attempt. A fresh
// value is created per connect and never reused across reconnects.
type session struct {
	link        Link
	gate        Gate
	startedAt   time.Time
	micOn       bool
	pendingOpen bool
	committing  bool
	cancelDial  context.CancelFunc
}

// Controller is the turn-taking state machine. All methods are safe for
// concurrent use; transitions are serialized on an internal lock.
type Controller struct {
	dialer   Dialer
	events   Events
	forward  TranscriptSink
	personas PersonaSet
	settle   time.Duration
	sleep    func(time.Duration)

	mu         sync.Mutex
	state      State
	sel        Selections
	sess       *session
	connecting bool
}

// NewController creates a controller in the idle state.
func NewController(opts Options) *Controller {
	settle := opts.SettleDelay
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Controller{
		dialer:   opts.Dialer,
		events:   opts.Events,
		forward:  opts.Forward,
		personas: opts.Personas,
		settle:   settle,
		sleep:    sleep,
		state:    StateIdle,
		sel:      Selections{Mode: ModeAuto},
	}
}

// Status is a snapshot of the controller's observable state.
type Status struct {
	State      State     `json:"state"`
	Mode       Mode      `json:"mode"`
	Language   string    `json:"language,omitzero"`
	PersonaID  string    `json:"persona_id,omitzero"`
	Model      string    `json:"model,omitzero"`
	MicEnabled bool      `json:"mic_enabled"`
	StartedAt  time.Time `json:"started_at,omitzero"`
}

// Status returns a snapshot of the current state and selections.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{
		State:     c.state,
		Mode:      c.sel.Mode,
		Language:  c.sel.Language,
		PersonaID: c.sel.PersonaID,
		Model:     c.sel.Model,
	}
	if c.sess != nil {
		st.MicEnabled = c.sess.micOn
		st.StartedAt = c.sess.startedAt
	}
	return st
}

// Connect establishes a new session with the given selections. Only one
// attempt may be in flight, and only from the idle or failed state. The
// session is not fully connected when Connect returns: the channel-open
// event drives the final transition.
func (c *Controller) Connect(ctx context.Context, sel Selections) error {
	c.mu.Lock()
	if c.connecting {
		c.mu.Unlock()
		return ErrConnectInProgress
	}
	switch c.state {
	case StateIdle, StateFailed:
	default:
		c.mu.Unlock()
		return ErrAlreadyConnected
	}

	// A failed session may still hold a dead link; clear it out first.
	if old := c.sess; old != nil && old.link != nil {
		_ = old.link.Close()
	}

	if !sel.Mode.Valid() {
		sel.Mode = ModeAuto
	}
	c.sel = sel

	dialCtx, cancel := context.WithCancel(ctx)
	sess := &session{cancelDial: cancel}
	c.sess = sess
	c.connecting = true
	c.setStateLocked(StateConnecting)
	req := DialRequest{Model: sel.Model, Voice: sel.Voice}
	c.mu.Unlock()

	link, gate, err := c.dialer.Dial(dialCtx, req, DialHandlers{
		OnChannelOpen:   func() { c.handleChannelOpen(sess) },
		OnEvent:         func(ev *realtime.ServerEvent) { c.handleServerEvent(sess, ev) },
		OnChannelClosed: func() { c.handleChannelClosed(sess) },
	})
	cancel()

	c.mu.Lock()
	if c.sess != sess {
		// Disconnected (or superseded) while dialing.
		c.mu.Unlock()
		if err == nil {
			_ = link.Close()
		}
		return ErrConnectAborted
	}
	c.connecting = false
	sess.cancelDial = nil

	if err != nil {
		// A failed attempt lands back in idle, never in failed: that
		// state is reserved for sessions that died after establishing.
		c.sess = nil
		c.setStateLocked(StateIdle)
		c.mu.Unlock()
		return fmt.Errorf("connect: %w", err)
	}

	sess.link = link
	sess.gate = gate
	if sess.pendingOpen {
		sess.pendingOpen = false
		c.enterConnectedLocked(sess)
	}
	c.mu.Unlock()
	return nil
}

// Disconnect tears the session down from any state and lands in idle.
// Idempotent: double-disconnect is a common UI race and must not fail.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	if c.state == StateIdle || c.state == StateDisconnecting {
		c.mu.Unlock()
		return
	}

	sess := c.sess
	c.sess = nil
	c.connecting = false
	c.setStateLocked(StateDisconnecting)
	c.mu.Unlock()

	if sess != nil {
		if sess.cancelDial != nil {
			sess.cancelDial()
		}
		if sess.link != nil {
			_ = sess.link.Close()
		}
	}

	c.mu.Lock()
	if c.state == StateDisconnecting {
		c.setStateLocked(StateIdle)
	}
	c.mu.Unlock()
}

// SetMode switches the turn-taking policy. While disconnected the new
// mode is only remembered. While connected the gate and the session
// descriptor are updated; a switch requested mid-recording first performs
// an implicit release so no input buffer is left orphaned.
func (c *Controller) SetMode(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidTurnAction, mode)
	}

	c.mu.Lock()
	if !c.state.Connected() {
		c.sel.Mode = mode
		c.mu.Unlock()
		return nil
	}
	if c.sel.Mode == mode {
		c.mu.Unlock()
		return nil
	}
	sess := c.sess
	if sess.committing {
		c.mu.Unlock()
		return fmt.Errorf("%w: commit sequence in flight", ErrInvalidTurnAction)
	}

	if c.state == StateConnectedRecording {
		c.releaseLocked(sess)
		c.mu.Unlock()
		c.runCommitSequence(sess)
		c.mu.Lock()
		if c.sess != sess || !c.state.Connected() {
			c.sel.Mode = mode
			c.mu.Unlock()
			return nil
		}
	}

	c.sel.Mode = mode
	c.applyModeLocked(sess)
	c.mu.Unlock()
	return nil
}

// TalkPress opens the microphone for a push-to-talk turn. Valid only in
// manual mode, muted, with the session connected; anything else is
// rejected with no state change.
func (c *Controller) TalkPress() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateConnectedMuted {
		return fmt.Errorf("%w: press in state %s", ErrInvalidTurnAction, c.state)
	}
	if c.sess.committing {
		return fmt.Errorf("%w: commit sequence in flight", ErrInvalidTurnAction)
	}

	c.sess.micOn = true
	c.sess.gate.SetEnabled(true)
	c.setStateLocked(StateConnectedRecording)
	return nil
}

// TalkRelease closes the microphone and runs the commit/response
// sequence: after a settling delay the input buffer is committed, and
// after another delay a response is requested. "Pointer left the control
// while held" is handled identically by callers — an abandoned press must
// never leave the gate stuck open.
func (c *Controller) TalkRelease() error {
	c.mu.Lock()
	if c.state != StateConnectedRecording {
		c.mu.Unlock()
		return fmt.Errorf("%w: release in state %s", ErrInvalidTurnAction, c.state)
	}
	sess := c.sess
	c.releaseLocked(sess)
	c.mu.Unlock()

	c.runCommitSequence(sess)
	return nil
}

// SendText sends a user text message and immediately requests a response.
// Works in either mode whenever connected; no settling delay is needed
// because no audio buffer is involved. Empty input is ignored.
func (c *Controller) SendText(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	if !c.state.Connected() {
		c.mu.Unlock()
		return ErrNotConnected
	}
	link := c.sess.link
	c.mu.Unlock()

	if err := link.Send(realtime.UserTextEvent(text)); err != nil {
		return fmt.Errorf("send text: %w", err)
	}
	if err := link.Send(realtime.ResponseCreateEvent()); err != nil {
		return fmt.Errorf("request response: %w", err)
	}
	c.events.emitTranscript("user", text)
	return nil
}

// SetLanguage changes the transcription/instruction language. While
// connected, any in-flight response is cancelled before the updated
// descriptor is sent, so output generated under the old language cannot
// finish and contaminate the transcript.
func (c *Controller) SetLanguage(code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Language = code
	if c.state.Connected() {
		c.reconfigureLocked()
	}
	return nil
}

// SetPersona changes the active persona, with the same cancel-then-update
// sequence as a language change when connected.
func (c *Controller) SetPersona(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.personas[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPersona, id)
	}
	c.sel.PersonaID = id
	if c.state.Connected() {
		c.reconfigureLocked()
	}
	return nil
}

// SetModel changes the model selection. The remote negotiation is
// per-model, so a live session cannot absorb the change: the caller gets
// ErrReconnectRequired and must disconnect and connect again.
func (c *Controller) SetModel(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Connected() || c.state == StateConnecting {
		return ErrReconnectRequired
	}
	c.sel.Model = id
	return nil
}

// === channel-driven transitions ===

func (c *Controller) handleChannelOpen(sess *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != sess {
		return
	}
	if sess.link == nil {
		// The channel opened before Dial returned; finish the
		// transition once the link is stored.
		sess.pendingOpen = true
		return
	}
	c.enterConnectedLocked(sess)
}

// enterConnectedLocked performs the channel-open transition: pick the
// connected sub-state from the selected mode, set the gate accordingly,
// and send the first session descriptor. The descriptor must go out only
// now — a send before the channel is open would be silently dropped and
// leave the session running with stale default instructions.
func (c *Controller) enterConnectedLocked(sess *session) {
	if c.state != StateConnecting {
		return
	}
	sess.startedAt = time.Now()
	c.applyModeLocked(sess)
}

func (c *Controller) handleChannelClosed(sess *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != sess {
		return
	}
	if c.state == StateDisconnecting || c.state == StateIdle {
		return
	}
	// Unexpected closure. No automatic reconnect: silent reconnection
	// storms against a metered third-party API are worse than making the
	// user click connect again.
	sess.micOn = false
	if sess.gate != nil {
		sess.gate.SetEnabled(false)
	}
	c.setStateLocked(StateFailed)
}

func (c *Controller) handleServerEvent(sess *session, ev *realtime.ServerEvent) {
	c.mu.Lock()
	current := c.sess == sess
	c.mu.Unlock()
	if !current {
		return
	}

	switch ev.Type {
	case realtime.EventTypeInputAudioTranscriptionCompleted:
		c.events.emitTranscript("user", ev.Transcript)
		if c.forward != nil && ev.Transcript != "" {
			go func(text string) {
				if err := c.forward.ForwardTranscript(context.Background(), text); err != nil {
					slog.Warn("transcript forwarding failed", "error", err)
				}
			}(ev.Transcript)
		}

	case realtime.EventTypeResponseAudioTranscriptDone:
		c.events.emitTranscript("assistant", ev.Transcript)

	case realtime.EventTypeResponseTextDone:
		c.events.emitTranscript("assistant", ev.Text)

	case realtime.EventTypeResponseDone:
		if ev.Response == nil {
			return
		}
		if detail := ev.Response.FailureDetail(); detail != "" {
			c.events.emitResponseFailed(detail)
		}

	case realtime.EventTypeError:
		// An error event is not necessarily fatal to the channel: log
		// and surface, keep the session up.
		msg := "remote error"
		if ev.Err != nil {
			msg = ev.Err.ToError().Error()
		}
		slog.Warn("remote error event", "message", msg)
		c.events.emitWarning(msg)

	case realtime.EventTypeInputAudioBufferSpeechStarted:
		c.events.emitSpeech(true)

	case realtime.EventTypeInputAudioBufferSpeechStopped:
		c.events.emitSpeech(false)

	default:
		// Unknown types are ignored, not rejected.
	}
}

// === internals ===

// applyModeLocked sets the gate and connected sub-state for the selected
// mode and sends the session descriptor.
func (c *Controller) applyModeLocked(sess *session) {
	if c.sel.Mode == ModeAuto {
		sess.micOn = true
		sess.gate.SetEnabled(true)
		c.setStateLocked(StateConnectedAuto)
	} else {
		sess.micOn = false
		sess.gate.SetEnabled(false)
		c.setStateLocked(StateConnectedMuted)
	}
	_ = sess.link.Send(realtime.SessionUpdateEvent(BuildSessionConfig(c.sel, c.personas)))
}

// releaseLocked applies the state effects of a talk release: gate closed,
// back to muted, commit sequence marked in flight. The sequence itself
// runs outside the lock.
func (c *Controller) releaseLocked(sess *session) {
	sess.micOn = false
	sess.gate.SetEnabled(false)
	sess.committing = true
	c.setStateLocked(StateConnectedMuted)
}

// runCommitSequence commits the input buffer and requests a response,
// pausing for the settle delay before each step. Sends are no-ops if the
// channel closed meanwhile, so a disconnect during the delays is safe.
func (c *Controller) runCommitSequence(sess *session) {
	c.sleep(c.settle)
	_ = sess.link.Send(realtime.CommitEvent())
	c.sleep(c.settle)
	_ = sess.link.Send(realtime.ResponseCreateEvent())

	c.mu.Lock()
	sess.committing = false
	c.mu.Unlock()
}

// reconfigureLocked cancels any in-flight response and sends the updated
// descriptor, in that order: output generated under the old instructions
// must not complete after the user switched context.
func (c *Controller) reconfigureLocked() {
	link := c.sess.link
	_ = link.Send(realtime.ResponseCancelEvent())
	_ = link.Send(realtime.SessionUpdateEvent(BuildSessionConfig(c.sel, c.personas)))
}

func (c *Controller) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	c.events.emitState(s)
}

// nil-safe event emitters

func (e Events) emitState(s State) {
	if e.StateChanged != nil {
		e.StateChanged(s)
	}
}

func (e Events) emitTranscript(role, text string) {
	if e.Transcript != nil && text != "" {
		e.Transcript(role, text)
	}
}

func (e Events) emitWarning(msg string) {
	if e.Warning != nil {
		e.Warning(msg)
	}
}

func (e Events) emitResponseFailed(detail string) {
	if e.ResponseFailed != nil {
		e.ResponseFailed(detail)
	}
}

func (e Events) emitSpeech(active bool) {
	if e.Speech != nil {
		e.Speech(active)
	}
}
