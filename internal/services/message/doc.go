// Package message moves chat text over an established session.
//
// A Pump owns the session once keyed. Send encrypts and writes one message
// per call under a send lock, so keystream order always matches wire order.
// Run is the receive loop: it reads whatever the stream delivers (up to the
// frame limit), decrypts it and publishes it on the Events channel. The
// presentation drains that channel in its own context, either with Deliver
// or with its own loop; the receive loop never calls into the presentation.
//
// Close tears the session down: it half-closes the outbound direction where
// the stream allows it, lets the receive loop drain until the peer closes or
// the drain timeout passes, closes the stream and zeroes the session secret.
package message
