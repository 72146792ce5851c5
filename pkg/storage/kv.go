// Package storage defines the local key/value table the broker persists
// its subscription list to (spec.md §1, §6: "abstracted as a get/put
// string table"), plus two implementations: an in-memory table for tests
// and default use, and a durable go.etcd.io/bbolt-backed table
// for production deployments.
package storage

// KV is the get/put string table the SubscriptionStore persists through.
// Implementations must be safe for concurrent use — spec.md §5 treats the
// local-storage handle as "shared and assumed internally thread-safe".
type KV interface {
	// Get returns the value stored under (table, key). ok is false if no
	// such entry exists; err is non-nil only for a storage-layer fault.
	Get(table, key string) (value string, ok bool, err error)

	// Put stores value under (table, key), creating table if needed.
	Put(table, key, value string) error
}
