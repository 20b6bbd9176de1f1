// Package storage defines the persistence interfaces for the party
// rules engine.
//
// It provides a high-level abstraction for storing per-player game
// state, the game session document, winrate statistics, and finished
// game records. Implementations of these interfaces (sqlite, memory)
// can be found in subpackages.
//
// # Error Types
//
// The package defines common error types used across storage implementations:
//   - ErrNotFound: Indicates a requested record is missing.
package storage
