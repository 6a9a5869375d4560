// Package commands defines the securechat CLI.
//
// Commands
//
//   - init         Create the identity of a role if it does not exist
//   - fingerprint  Print the identity fingerprint of a role
//   - export       Print the public key file to hand to the peer
//   - listen       Wait for one peer, key the session and chat
//   - connect      Dial a listening peer, key the session and chat
//
// # Implementation
//
// The root command loads the configuration, sets up logging and builds the
// dependency graph (group, key store, services) before any subcommand runs.
// Every flag is bound to the viper key of the same name, so flags, the
// environment and the config file share one set of names.
package commands
