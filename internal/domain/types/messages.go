package types

// EventKind tells the presentation what happened on the receive path.
type EventKind int

const (
	// EventMessage carries one decrypted inbound message.
	EventMessage EventKind = iota
	// EventPeerClosed reports an orderly disconnect by the peer.
	EventPeerClosed
	// EventFailed reports a fatal receive error; Err is set.
	EventFailed
)

// String returns a short name for the kind.
func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventPeerClosed:
		return "peer-closed"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is handed from the receive loop to the presentation context.
type Event struct {
	Kind EventKind
	Text string
	Err  error
}
