// Package memzero clears key material held in byte slices.
package memzero

import "runtime"

// Zero overwrites b with zeros. The KeepAlive keeps the stores from being
// dropped as dead writes.
func Zero(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}

