// Package domain defines the key, session and event types and the contracts
// between the chat components. It holds plain types and interfaces only.
package domain
