// Package session runs the key exchange on a freshly connected stream.
//
// The Establisher is a small state machine:
//
//	START -> SENT_EPHEMERAL -> RECEIVED_PEER_EPHEMERAL -> KEYED
//
// with FAILED reachable from every step. The listener writes its ephemeral
// public value first and then reads the connector's; the connector does the
// reverse, so it passes the two exchange states in the opposite order. Once
// both ephemeral values are known, both long-term identities and both
// ephemeral values are mixed by the group's triple-DH combiner into the
// 128-byte session secret.
//
// The exchange honours the caller's context and the configured handshake
// timeout when the stream supports deadlines (net.Conn does).
package session
