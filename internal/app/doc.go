// Package app wires application dependencies for the CLI.
//
// It loads Config through viper (flags, SECURECHAT_* environment, the config
// file, defaults), builds the DH group, the key store and the services from
// it, and exposes them via the Wire struct. App adds the raw transport
// (accept one TCP connection or dial one) and Chat, which keys a session and
// runs the receive loop next to a front end.
package app
