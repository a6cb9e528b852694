// Package integrity hashes and signs the action log so a stored game can be
// checked for tampering before it is replayed.
//
// Every stored action carries a content hash of its line and a chain hash
// that folds in the chain hash of the action before it. With a keyring
// configured, chain hashes are also signed with a per-game HMAC key.
package integrity
