package interfaces

// Presenter renders transcript text. It is only called from the context that
// owns the presentation, never from the receive loop directly.
type Presenter interface {
	// OnMessageReceived is called once per decrypted inbound message. The
	// text already ends with a line terminator.
	OnMessageReceived(text string)
	// OnStatus reports session events such as a peer disconnect.
	OnStatus(text string)
}

// Outbox is the presentation's pending outgoing text.
type Outbox interface {
	TakeOutgoingText() string
	ClearOutgoingText()
}
