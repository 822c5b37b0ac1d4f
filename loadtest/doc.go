// Package loadtest provides a backend-agnostic contract suite for
// loadcore.Store implementations. Driver packages and integration tests run
// the same checks so every backend behaves identically at the store boundary.
package loadtest
