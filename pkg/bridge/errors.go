package bridge

import "errors"

var (
	// ErrInvalidTurnAction is returned when a press, release, or mode
	// switch is requested outside its valid state. The action is
	// rejected locally with no network effect and no state change.
	ErrInvalidTurnAction = errors.New("bridge: invalid turn action")

	// ErrNotConnected is returned for actions that require an
	// established session.
	ErrNotConnected = errors.New("bridge: not connected")

	// ErrReconnectRequired is returned when a model change is requested
	// on a live connection. The remote negotiation is per-model, so the
	// change cannot be applied in place.
	ErrReconnectRequired = errors.New("bridge: model change requires reconnect")

	// ErrConnectInProgress is returned when Connect is called while a
	// previous attempt is still in flight.
	ErrConnectInProgress = errors.New("bridge: connect already in progress")

	// ErrAlreadyConnected is returned when Connect is called on a live
	// session.
	ErrAlreadyConnected = errors.New("bridge: already connected")

	// ErrConnectAborted is returned from Connect when Disconnect was
	// called while the attempt was in flight.
	ErrConnectAborted = errors.New("bridge: connect aborted")

	// ErrUnknownPersona is returned when a persona ID has no registered
	// instructions.
	ErrUnknownPersona = errors.New("bridge: unknown persona")
)
