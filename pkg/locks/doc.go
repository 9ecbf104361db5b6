// Package locks provides Redis-backed named locks with a global key prefix,
// including multi-key acquisition in sorted order and a key template for
// non-overlapping background tasks.
package locks
