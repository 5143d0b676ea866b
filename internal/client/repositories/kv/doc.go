// Package kv is the raw key-value storage underneath the secure store.
//
// Values are opaque strings. The SQLite implementation persists them in the
// local database file; the memory implementation backs tests and the
// ephemeral mode of the client.
package kv
